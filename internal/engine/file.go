package engine

import (
	"os"

	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
)

// fileEntry is the File artifact: a handle to an on-disk stream plus its
// line cache. The reader is strictly sequential — there is no line-index
// to byte-offset mapping, so the cache can only ever be extended forward.
type fileEntry struct {
	id     ids.ID
	path   string
	handle *os.File
	reader *lineReader

	start  int // always 0 in this implementation; see ensureFile.
	loaded []string
}

func (f *fileEntry) bound() interval.Interval {
	return interval.Interval{Lo: f.start, Hi: f.start + len(f.loaded)}
}

func (f *fileEntry) close() error {
	return f.handle.Close()
}

// ensureFile extends a File's line cache to cover req as far as the
// underlying stream allows, returning the portion of req actually
// covered after extension. A return of 0 means end-of-file: no further
// read will ever produce more lines for this File.
//
// Only forward growth is supported, per the design's recommendation (a):
// a non-empty missing-before request is a Structural error, since
// satisfying it would require re-decoding from an earlier byte offset
// while the reader has already moved past it.
func (f *fileEntry) ensureFile(req interval.Interval) (int, error) {
	cur := f.bound()
	if cur.Contains(req) {
		return minInt(cur.Hi-req.Lo, req.Len()), nil
	}

	before := cur.MissingBefore(req)
	if !before.IsEmpty() {
		return 0, errBackwardExtension
	}

	after := cur.MissingAfter(req)
	if !after.IsEmpty() {
		lines, err := f.reader.readLines(after.Len())
		if err != nil {
			return 0, err
		}
		f.loaded = append(f.loaded, lines...)
		debug.CacheExtend("file", f.id, cur, f.bound())
	}

	cur = f.bound()
	return minInt(cur.Hi-minInt(cur.Hi, req.Lo), req.Len()), nil
}

// linesIn returns the decoded lines in [lo, hi), which must already be
// covered by the cache.
func (f *fileEntry) linesIn(lo, hi int) []string {
	return f.loaded[lo-f.start : hi-f.start]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
