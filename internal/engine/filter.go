package engine

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
	"github.com/angelini/logtags/internal/script"
)

// filterEntry is the Filter artifact: a predicate bound to a parent
// artifact that must transitively resolve to a Tag, plus a bitset cache
// of absolute line indices that satisfy the predicate.
type filterEntry struct {
	id     ids.ID
	parent ids.ID

	// Exactly one of these is set, chosen at registration time.
	direct      bool
	comparator  Comparator
	literal     string
	scriptSrc   string // scripted predicate source, when !direct

	start, end int
	bits       *roaring.Bitmap
}

func newFilterEntry(parent ids.ID) *filterEntry {
	return &filterEntry{parent: parent, bits: roaring.New()}
}

func (f *filterEntry) bound() interval.Interval {
	return interval.Interval{Lo: f.start, Hi: f.end}
}

func (f *filterEntry) count() uint64 {
	return f.bits.GetCardinality()
}

// satisfies evaluates the predicate for one tag value (nil meaning a
// missing/null value, which never satisfies any predicate).
func (f *filterEntry) satisfies(rt *script.Runtime, value *string) bool {
	if value == nil {
		return false
	}
	if f.direct {
		return f.comparator.satisfies(*value, f.literal)
	}
	ok, err := rt.EvaluateToBool(f.scriptSrc, *value)
	if err != nil {
		// Script failure is value-local: skipped, not fatal. See spec §7.
		debug.ScriptFailure("filter", f.id, f.scriptSrc, err)
		return false
	}
	return ok
}

// ensureFilter extends the filter's bitset cache to cover req. tagValues
// must return the governing tag's values for the requested absolute
// range, already materialized by the driver.
func (f *filterEntry) ensureFilter(req interval.Interval, rt *script.Runtime, tagValues func(lo, hi int) []*string) {
	cur := f.bound()
	if cur.Contains(req) {
		return
	}

	before := cur.MissingBefore(req)
	after := cur.MissingAfter(req)

	if !before.IsEmpty() {
		f.markRange(rt, before, tagValues)
		f.start = before.Lo
	}
	if !after.IsEmpty() {
		f.markRange(rt, after, tagValues)
		f.end = after.Hi
	}
	if !before.IsEmpty() || !after.IsEmpty() {
		debug.CacheExtend("filter", f.id, cur, f.bound())
	}
}

func (f *filterEntry) markRange(rt *script.Runtime, iv interval.Interval, tagValues func(lo, hi int) []*string) {
	values := tagValues(iv.Lo, iv.Hi)
	for i, v := range values {
		if f.satisfies(rt, v) {
			f.bits.Add(uint32(iv.Lo + i))
		}
	}
}
