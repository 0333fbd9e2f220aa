// Package pipelines parses and runs saved logtags pipeline definitions:
// named sequences of engine operations stored in a KDL document, so a
// `watch` invocation can be told "re-run the errors-only pipeline"
// instead of re-typing every Load/Tag/Filter/Take call.
package pipelines

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/angelini/logtags/internal/engine"
)

// Kind identifies which engine operation a Step performs.
type Kind int

const (
	Load Kind = iota
	Tag
	Regex
	Transform
	Filter
	ScriptedFilter
	Distinct
	Script
	Take
)

func (k Kind) String() string {
	switch k {
	case Load:
		return "load"
	case Tag:
		return "tag"
	case Regex:
		return "regex"
	case Transform:
		return "transform"
	case Filter:
		return "filter"
	case ScriptedFilter:
		return "scripted_filter"
	case Distinct:
		return "distinct"
	case Script:
		return "script"
	case Take:
		return "take"
	default:
		return "unknown"
	}
}

// Step is one operation in a pipeline. Fields are populated according
// to Kind; see the comment on each for which apply.
type Step struct {
	Kind Kind

	Name   string // binds the result of Load/Tag/Filter/Distinct for later reference
	Target string // the name a Tag/Filter/ScriptedFilter/Distinct/Take step operates on

	Path    string // Load
	Pattern string // Regex
	Source  string // Transform, ScriptedFilter predicate, Script

	Comparator string // Filter: one of == != < <= > >=
	Literal    string // Filter

	Count int // Take
}

// Pipeline is a named, ordered list of steps. The zero-value Name ""
// is the document's single unnamed pipeline, when the file has no
// `pipeline` blocks of its own.
type Pipeline struct {
	Name  string
	Steps []Step
}

// ParseFile reads path as a KDL document and returns every pipeline it
// defines. A document with no top-level `pipeline` nodes is treated as
// one pipeline named "" whose steps are the document's own top-level
// nodes.
func ParseFile(path string) ([]Pipeline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var pipelines []Pipeline
	var bare []document.Node
	for _, n := range doc.Nodes {
		if nodeName(n) == "pipeline" {
			name, _ := firstStringArg(n)
			steps, err := parseSteps(n.Children)
			if err != nil {
				return nil, fmt.Errorf("pipeline %q: %w", name, err)
			}
			pipelines = append(pipelines, Pipeline{Name: name, Steps: steps})
			continue
		}
		bare = append(bare, *n)
	}

	if len(bare) > 0 {
		ptrs := make([]*document.Node, len(bare))
		for i := range bare {
			ptrs[i] = &bare[i]
		}
		steps, err := parseSteps(ptrs)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, Pipeline{Steps: steps})
	}

	return pipelines, nil
}

// LastTake returns the final Take step in the pipeline, which a watch
// loop re-invokes on every file-growth notification instead of
// rebuilding the whole pipeline.
func (p Pipeline) LastTake() (Step, bool) {
	for i := len(p.Steps) - 1; i >= 0; i-- {
		if p.Steps[i].Kind == Take {
			return p.Steps[i], true
		}
	}
	return Step{}, false
}

// LoadPaths returns every path a pipeline's Load steps reference, in
// order, for a watch loop to resolve into filesystem watches.
func (p Pipeline) LoadPaths() []string {
	var paths []string
	for _, s := range p.Steps {
		if s.Kind == Load {
			paths = append(paths, s.Path)
		}
	}
	return paths
}

// Find returns the pipeline with the given name, or, when name is "" and
// the document defines exactly one pipeline, that pipeline whatever its
// name.
func Find(pipelines []Pipeline, name string) (Pipeline, bool) {
	for _, p := range pipelines {
		if p.Name == name {
			return p, true
		}
	}
	if name == "" && len(pipelines) == 1 {
		return pipelines[0], true
	}
	return Pipeline{}, false
}

func parseSteps(nodes []*document.Node) ([]Step, error) {
	var steps []Step
	for _, n := range nodes {
		step, err := parseStep(n)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(n *document.Node) (Step, error) {
	name := nodeName(n)
	switch name {
	case "load":
		path, ok := firstStringArg(n)
		if !ok {
			return Step{}, fmt.Errorf("load requires a path argument")
		}
		binding, _ := childString(n, "as")
		return Step{Kind: Load, Path: path, Name: binding}, nil

	case "tag":
		target, ok := firstStringArg(n)
		if !ok {
			return Step{}, fmt.Errorf("tag requires a file binding argument")
		}
		tagName, ok := childString(n, "name")
		if !ok {
			return Step{}, fmt.Errorf("tag %q requires a name child", target)
		}
		step := Step{Kind: Tag, Target: target, Name: tagName}
		if pattern, ok := childString(n, "regex"); ok {
			step.Pattern = pattern
		}
		if source, ok := childString(n, "transform"); ok {
			step.Source = source
		}
		return step, nil

	case "filter":
		target, ok := firstStringArg(n)
		if !ok {
			return Step{}, fmt.Errorf("filter requires a target argument")
		}
		if source, ok := childString(n, "script"); ok {
			binding, _ := childString(n, "as")
			return Step{Kind: ScriptedFilter, Target: target, Source: source, Name: binding}, nil
		}
		cmp, ok := childString(n, "op")
		if !ok {
			return Step{}, fmt.Errorf("filter %q requires an op child", target)
		}
		literal, _ := childString(n, "value")
		binding, _ := childString(n, "as")
		return Step{Kind: Filter, Target: target, Comparator: cmp, Literal: literal, Name: binding}, nil

	case "distinct":
		target, ok := firstStringArg(n)
		if !ok {
			return Step{}, fmt.Errorf("distinct requires a target argument")
		}
		binding, _ := childString(n, "as")
		return Step{Kind: Distinct, Target: target, Name: binding}, nil

	case "script":
		source, ok := firstStringArg(n)
		if !ok {
			return Step{}, fmt.Errorf("script requires a source argument")
		}
		return Step{Kind: Script, Source: source}, nil

	case "take":
		target, ok := firstStringArg(n)
		if !ok {
			return Step{}, fmt.Errorf("take requires a target argument")
		}
		count, ok := childInt(n, "count")
		if !ok {
			count = 20
		}
		return Step{Kind: Take, Target: target, Count: count}, nil

	default:
		return Step{}, fmt.Errorf("unknown pipeline step %q", name)
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if n == nil || len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func childString(n *document.Node, name string) (string, bool) {
	for _, c := range n.Children {
		if nodeName(c) == name {
			return firstStringArg(c)
		}
	}
	return "", false
}

func childInt(n *document.Node, name string) (int, bool) {
	for _, c := range n.Children {
		if nodeName(c) != name {
			continue
		}
		if len(c.Arguments) == 0 {
			return 0, false
		}
		switch v := c.Arguments[0].Value.(type) {
		case int64:
			return int(v), true
		case float64:
			return int(v), true
		case string:
			if i, err := strconv.Atoi(v); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}

// comparatorOf maps a pipeline's textual operator to engine.Comparator.
func comparatorOf(op string) (engine.Comparator, error) {
	switch op {
	case "==", "equal":
		return engine.Equal, nil
	case "!=", "not_equal":
		return engine.NotEqual, nil
	case "<", "less_than":
		return engine.LessThan, nil
	case "<=", "less_than_equal":
		return engine.LessThanEqual, nil
	case ">", "greater_than":
		return engine.GreaterThan, nil
	case ">=", "greater_than_equal":
		return engine.GreaterThanEqual, nil
	default:
		return 0, fmt.Errorf("unknown comparator %q", op)
	}
}
