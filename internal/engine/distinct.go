package engine

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/willf/bloom"

	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
)

// distinctEntry is the Distinct artifact: deduplication by tag value,
// bound to a parent that resolves to a Tag. State lives entirely in the
// membership bitset and the bloom filter of values already seen. Per
// §5's resource policy the bloom filter never grows once sized:
// oversized inputs simply see a higher false-positive rate, not a
// resize.
type distinctEntry struct {
	id     ids.ID
	parent ids.ID

	start, end int
	bits       *roaring.Bitmap
	seen       *bloom.BloomFilter
}

func newDistinctEntry(parent ids.ID, expectedElements uint, falsePositiveRate float64) *distinctEntry {
	return &distinctEntry{
		parent: parent,
		bits:   roaring.New(),
		seen:   bloom.NewWithEstimates(expectedElements, falsePositiveRate),
	}
}

func (d *distinctEntry) bound() interval.Interval {
	return interval.Interval{Lo: d.start, Hi: d.end}
}

func (d *distinctEntry) count() uint64 {
	return d.bits.GetCardinality()
}

// ensureDistinct extends the membership bitset to cover req. Only forward
// extension is supported: first-occurrence semantics are meaningful only
// when scanning strictly outward from index 0, since the bloom filter
// would otherwise already encode later values by the time an earlier
// block is processed. See spec §4.6 and §9.
func (d *distinctEntry) ensureDistinct(req interval.Interval, tagValues func(lo, hi int) []*string) error {
	cur := d.bound()
	if cur.Contains(req) {
		return nil
	}

	before := cur.MissingBefore(req)
	if !before.IsEmpty() {
		return errBackwardExtension
	}

	after := cur.MissingAfter(req)
	if after.IsEmpty() {
		return nil
	}

	values := tagValues(after.Lo, after.Hi)
	for i, v := range values {
		if v == nil {
			continue
		}
		raw := []byte(*v)
		if d.seen.Test(raw) {
			continue
		}
		d.seen.Add(raw)
		d.bits.Add(uint32(after.Lo + i))
	}
	d.end = after.Hi
	debug.CacheExtend("distinct", d.id, cur, d.bound())
	return nil
}
