package engine

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	engerrors "github.com/angelini/logtags/internal/errors"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
)

// Result is what a Take produces: the rendered lines plus, in debug mode,
// a formatted stats report.
type Result struct {
	Lines []string
	Stats string
}

// Take drives plan's pipeline in expanding batches until the leaf
// accumulates at least count survivors or the root File is exhausted,
// then renders the survivors. See spec §4.7.
func (e *Engine) Take(leafID ids.ID, count int) (*Result, error) {
	p, err := e.buildPlan(leafID)
	if err != nil {
		return nil, engerrors.StructuralErr("take", leafID, err)
	}

	rootID := p.root()
	root, ok := e.files[rootID]
	if !ok {
		return nil, engerrors.StructuralErr("take", rootID, errUnknownID)
	}

	covered := interval.Empty(0)
	batchLo := 0
	batchLen := minInt(count, e.maxBatch)
	if batchLen < 0 {
		batchLen = 0
	}

	for {
		batch := interval.Interval{Lo: batchLo, Hi: batchLo + batchLen}

		got, err := root.ensureFile(batch)
		if err != nil {
			if err == errBackwardExtension {
				return nil, engerrors.StructuralErr("ensure_file", rootID, err)
			}
			return nil, engerrors.RuntimeErr("ensure_file", rootID, err)
		}
		e.stats.record(rootID, interval.Interval{Lo: covered.Hi, Hi: covered.Hi + got})
		if got == 0 {
			break
		}
		covered.Hi += got

		if err := e.extendPlan(p, covered); err != nil {
			return nil, err
		}

		if e.usefulCount(p.leaf(), covered) >= count {
			break
		}

		batchLo = batch.Hi
		batchLen *= 2
		if batchLen > e.maxBatch {
			batchLen = e.maxBatch
		}
		if batchLen == 0 {
			batchLen = 1
		}
	}

	if err := e.ensureAllTags(rootID, covered); err != nil {
		return nil, err
	}

	survivors := e.survivorSet(p, covered)
	lines := e.render(rootID, covered, survivors, count)

	return &Result{
		Lines: lines,
		Stats: e.stats.Report(e.compiled.Stats()),
	}, nil
}

// extendPlan grows every non-File step on the plan to cover the
// interval, in plan order (so a Filter/Distinct's governing Tag is
// always already extended by the time it is needed).
func (e *Engine) extendPlan(p *plan, covered interval.Interval) error {
	for _, id := range p.steps[1:] {
		switch id.Kind {
		case ids.Tag:
			t := e.tags[id]
			before := t.bound()
			if err := t.ensureTag(covered, e.runtime, e.linesReader(t.fileID)); err != nil {
				return engerrors.RuntimeErr("ensure_tag", id, err)
			}
			e.recordExtension(id, before, t.bound())

		case ids.Filter:
			f := e.filters[id]
			governing, err := e.governingTag(id)
			if err != nil {
				return engerrors.StructuralErr("ensure_filter", id, err)
			}
			before := f.bound()
			f.ensureFilter(covered, e.runtime, e.tagValuesReader(governing))
			e.recordExtension(id, before, f.bound())

		case ids.Distinct:
			d := e.distincts[id]
			governing, err := e.governingTag(id)
			if err != nil {
				return engerrors.StructuralErr("ensure_distinct", id, err)
			}
			before := d.bound()
			if err := d.ensureDistinct(covered, e.tagValuesReader(governing)); err != nil {
				return engerrors.StructuralErr("ensure_distinct", id, err)
			}
			e.recordExtension(id, before, d.bound())
		}
	}
	return nil
}

func (e *Engine) recordExtension(id ids.ID, before, after interval.Interval) {
	if after.Hi > before.Hi {
		e.stats.record(id, interval.Interval{Lo: before.Hi, Hi: after.Hi})
	}
	if after.Lo < before.Lo {
		e.stats.record(id, interval.Interval{Lo: after.Lo, Hi: before.Lo})
	}
}

// ensureAllTags materializes every tag bound to fileID over covered, not
// only the tags on the queried plan, since rendering always shows all of
// a file's tags. See spec §4.7 step 4 and §9 "Rendering scope".
func (e *Engine) ensureAllTags(fileID ids.ID, covered interval.Interval) error {
	for _, tagID := range e.tagsByFile[fileID] {
		t := e.tags[tagID]
		before := t.bound()
		if err := t.ensureTag(covered, e.runtime, e.linesReader(fileID)); err != nil {
			return engerrors.RuntimeErr("ensure_all_tags", tagID, err)
		}
		e.recordExtension(tagID, before, t.bound())
	}
	return nil
}

// usefulCount is the leaf's "how many survivors so far" count: bits set
// for a Filter/Distinct leaf, or the covered line count for a Tag/File
// leaf.
func (e *Engine) usefulCount(leaf ids.ID, covered interval.Interval) int {
	switch leaf.Kind {
	case ids.Filter:
		return int(e.filters[leaf].count())
	case ids.Distinct:
		return int(e.distincts[leaf].count())
	default:
		return covered.Len()
	}
}

// survivorSet intersects every Filter and Distinct bitset on the plan. If
// the plan has neither, every covered index survives.
func (e *Engine) survivorSet(p *plan, covered interval.Interval) func(idx int) bool {
	if len(p.filterIDs) == 0 && len(p.distinctIDs) == 0 {
		return func(idx int) bool { return true }
	}

	var combined *roaring.Bitmap
	for _, id := range p.filterIDs {
		if combined == nil {
			combined = e.filters[id].bits.Clone()
			continue
		}
		combined.And(e.filters[id].bits)
	}
	for _, id := range p.distinctIDs {
		if combined == nil {
			combined = e.distincts[id].bits.Clone()
			continue
		}
		combined.And(e.distincts[id].bits)
	}

	return func(idx int) bool { return combined.Contains(uint32(idx)) }
}

// render walks covered in order, emitting each surviving line followed by
// every tag bound to fileID, stopping once count survivors are rendered.
func (e *Engine) render(fileID ids.ID, covered interval.Interval, survives func(int) bool, count int) []string {
	root := e.files[fileID]
	tagIDs := e.tagsByFile[fileID]

	var out []string
	rendered := 0
	for idx := covered.Lo; idx < covered.Hi && rendered < count; idx++ {
		if !survives(idx) {
			continue
		}
		out = append(out, root.linesIn(idx, idx+1)[0])
		for _, tagID := range tagIDs {
			t := e.tags[tagID]
			val := "N/A"
			if v := t.valuesIn(idx, idx+1)[0]; v != nil {
				val = fmt.Sprintf("%q", *v)
			}
			out = append(out, fmt.Sprintf("    %-15s %s", "["+t.name+"]", val))
		}
		out = append(out, "")
		rendered++
	}
	return out
}

func (e *Engine) linesReader(fileID ids.ID) func(lo, hi int) []string {
	f := e.files[fileID]
	return func(lo, hi int) []string { return f.linesIn(lo, hi) }
}

func (e *Engine) tagValuesReader(tagID ids.ID) func(lo, hi int) []*string {
	t := e.tags[tagID]
	return func(lo, hi int) []*string { return t.valuesIn(lo, hi) }
}
