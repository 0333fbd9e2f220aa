package pipelines

import (
	"fmt"

	"github.com/angelini/logtags/internal/engine"
	"github.com/angelini/logtags/internal/ids"
)

// Runner executes a Pipeline's steps against an Engine, resolving each
// step's textual Name/Target bindings to the ids.ID the engine returned
// when the artifact was registered.
type Runner struct {
	eng      *engine.Engine
	bindings map[string]ids.ID
	anon     int // counter for unnamed bindings, so later steps can't collide with them
}

// NewRunner wraps eng for a single pipeline execution. Bindings do not
// persist across Runner instances.
func NewRunner(eng *engine.Engine) *Runner {
	return &Runner{eng: eng, bindings: make(map[string]ids.ID)}
}

// Run executes every step in order, returning the Result of every Take
// step encountered, in order.
func (r *Runner) Run(p Pipeline) ([]*engine.Result, error) {
	var results []*engine.Result
	for i, step := range p.Steps {
		result, err := r.runStep(step)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q step %d (%s): %w", p.Name, i, step.Kind, err)
		}
		if result != nil {
			results = append(results, result)
		}
	}
	return results, nil
}

func (r *Runner) runStep(step Step) (*engine.Result, error) {
	switch step.Kind {
	case Load:
		id, err := r.eng.Load(step.Path)
		if err != nil {
			return nil, err
		}
		r.bind(step.Name, id)
		return nil, nil

	case Tag:
		parent, err := r.resolve(step.Target)
		if err != nil {
			return nil, err
		}
		id, err := r.eng.Tag(parent, step.Name)
		if err != nil {
			return nil, err
		}
		if step.Pattern != "" {
			if err := r.eng.Regex(id, step.Pattern); err != nil {
				return nil, err
			}
		}
		if step.Source != "" {
			if err := r.eng.Transform(id, step.Source); err != nil {
				return nil, err
			}
		}
		r.bind(step.Name, id)
		return nil, nil

	case Filter:
		parent, err := r.resolve(step.Target)
		if err != nil {
			return nil, err
		}
		cmp, err := comparatorOf(step.Comparator)
		if err != nil {
			return nil, err
		}
		id, err := r.eng.DirectFilter(parent, cmp, step.Literal)
		if err != nil {
			return nil, err
		}
		r.bind(r.nameOrAnon(step.Name), id)
		return nil, nil

	case ScriptedFilter:
		parent, err := r.resolve(step.Target)
		if err != nil {
			return nil, err
		}
		id, err := r.eng.ScriptedFilter(parent, step.Source)
		if err != nil {
			return nil, err
		}
		r.bind(r.nameOrAnon(step.Name), id)
		return nil, nil

	case Distinct:
		parent, err := r.resolve(step.Target)
		if err != nil {
			return nil, err
		}
		id, err := r.eng.Distinct(parent)
		if err != nil {
			return nil, err
		}
		r.bind(r.nameOrAnon(step.Name), id)
		return nil, nil

	case Script:
		return nil, r.eng.Script(step.Source)

	case Take:
		leaf, err := r.resolve(step.Target)
		if err != nil {
			return nil, err
		}
		return r.eng.Take(leaf, step.Count)

	default:
		return nil, fmt.Errorf("unhandled step kind %s", step.Kind)
	}
}

func (r *Runner) bind(name string, id ids.ID) {
	if name == "" {
		return
	}
	r.bindings[name] = id
}

// nameOrAnon assigns a synthetic name to an unnamed Filter/Distinct step
// so later steps in the same pipeline could still reference it by
// position if the document author chose to; most pipelines leave
// intermediate filters unnamed and only reference the final one.
func (r *Runner) nameOrAnon(name string) string {
	if name != "" {
		return name
	}
	r.anon++
	return fmt.Sprintf("$anon%d", r.anon)
}

// Resolve exposes a binding by name, for callers that need to re-invoke
// Engine.Take directly (e.g. a watch loop re-taking after a pipeline's
// initial run without rebuilding it).
func (r *Runner) Resolve(name string) (ids.ID, error) {
	return r.resolve(name)
}

func (r *Runner) resolve(name string) (ids.ID, error) {
	id, ok := r.bindings[name]
	if !ok {
		return ids.ID{}, fmt.Errorf("undefined binding %q", name)
	}
	return id, nil
}
