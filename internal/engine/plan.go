package engine

import (
	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/ids"
)

// plan is the root-to-leaf ancestor chain for a queried identifier, plus
// the Filter and Distinct ids that appear anywhere along it — the set
// Take intersects at the end. Steps[0] is always a File.
type plan struct {
	steps       []ids.ID
	filterIDs   []ids.ID
	distinctIDs []ids.ID
}

func (p *plan) leaf() ids.ID {
	return p.steps[len(p.steps)-1]
}

func (p *plan) root() ids.ID {
	return p.steps[0]
}

// buildPlan walks parentOf from leaf back to its root File, then reverses
// the chain into root-first order.
func (e *Engine) buildPlan(leaf ids.ID) (*plan, error) {
	var reversed []ids.ID
	cur := leaf
	for {
		reversed = append(reversed, cur)
		if cur.Kind == ids.File {
			break
		}
		parent, err := e.parentOf(cur)
		if err != nil {
			return nil, err
		}
		cur = parent
	}

	p := &plan{steps: make([]ids.ID, len(reversed))}
	for i, id := range reversed {
		p.steps[len(reversed)-1-i] = id
	}

	if p.steps[0].Kind != ids.File {
		return nil, errPlanRoot
	}

	for _, id := range p.steps {
		switch id.Kind {
		case ids.Filter:
			p.filterIDs = append(p.filterIDs, id)
		case ids.Distinct:
			p.distinctIDs = append(p.distinctIDs, id)
		}
	}

	debug.PlanBuilt(leaf, p.steps)
	return p, nil
}

// parentOf returns the declared parent of a Tag, Filter, or Distinct id.
// A File has no parent; callers must check for that case themselves
// (buildPlan stops at the first File it sees).
func (e *Engine) parentOf(id ids.ID) (ids.ID, error) {
	switch id.Kind {
	case ids.Tag:
		t, ok := e.tags[id]
		if !ok {
			return ids.ID{}, errUnknownID
		}
		return t.fileID, nil
	case ids.Filter:
		f, ok := e.filters[id]
		if !ok {
			return ids.ID{}, errUnknownID
		}
		return f.parent, nil
	case ids.Distinct:
		d, ok := e.distincts[id]
		if !ok {
			return ids.ID{}, errUnknownID
		}
		return d.parent, nil
	default:
		return ids.ID{}, errUnknownID
	}
}

// governingTag walks up id's parent chain until it finds a Tag. Filter
// and Distinct both require one to exist.
func (e *Engine) governingTag(id ids.ID) (ids.ID, error) {
	cur := id
	for {
		if cur.Kind == ids.Tag {
			if _, ok := e.tags[cur]; !ok {
				return ids.ID{}, errUnknownID
			}
			return cur, nil
		}
		if cur.Kind == ids.File {
			return ids.ID{}, errNoGoverningTag
		}
		parent, err := e.parentOf(cur)
		if err != nil {
			return ids.ID{}, err
		}
		cur = parent
	}
}
