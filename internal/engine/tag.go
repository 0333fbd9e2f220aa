package engine

import (
	"regexp"

	"github.com/angelini/logtags/internal/debug"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
	"github.com/angelini/logtags/internal/script"
)

// tagEntry is the Tag artifact: a named field extractor bound to one
// File, plus its value cache. regex and transform are both optional; see
// extractValue for how they combine.
type tagEntry struct {
	id        ids.ID
	fileID    ids.ID
	name      string
	regex     *regexp.Regexp // nil: no extraction narrowing
	transform string         // "": no post-extraction script

	start  int
	loaded []*string // nil entry == None
}

func (t *tagEntry) bound() interval.Interval {
	return interval.Interval{Lo: t.start, Hi: t.start + len(t.loaded)}
}

func (t *tagEntry) valuesIn(lo, hi int) []*string {
	return t.loaded[lo-t.start : hi-t.start]
}

// extractValue implements spec §4.4's four cases:
//  1. regex set, no match -> None
//  2. regex set, match, transform set -> transform(capture group 1)
//  3. no regex, no transform -> the whole line
//  4. no regex, transform set -> transform(whole line)
func (t *tagEntry) extractValue(rt *script.Runtime, line string) *string {
	candidate := line
	if t.regex != nil {
		m := t.regex.FindStringSubmatch(line)
		if m == nil || len(m) < 2 {
			return nil
		}
		candidate = m[1]
	}

	if t.transform == "" {
		return &candidate
	}

	value, err := rt.EvaluateToString(t.transform, candidate)
	if err != nil {
		debug.ScriptFailure("transform", t.id, t.transform, err)
		return nil
	}
	return &value
}

// ensureTag extends the tag's value cache to cover req, computing new
// values from the File's already-cached lines via readLines. Only forward
// growth is exercised by the driver; a backward request is served by
// prepending the missing prefix block.
func (t *tagEntry) ensureTag(req interval.Interval, rt *script.Runtime, readLines func(lo, hi int) []string) error {
	cur := t.bound()
	if cur.Contains(req) {
		return nil
	}

	before := cur.MissingBefore(req)
	after := cur.MissingAfter(req)

	var prefix, suffix []*string
	if !before.IsEmpty() {
		prefix = t.parseRange(rt, before, readLines)
	}
	if !after.IsEmpty() {
		suffix = t.parseRange(rt, after, readLines)
	}

	if prefix != nil {
		t.loaded = append(prefix, t.loaded...)
		t.start = before.Lo
	}
	if suffix != nil {
		t.loaded = append(t.loaded, suffix...)
	}
	if prefix != nil || suffix != nil {
		debug.CacheExtend("tag", t.id, cur, t.bound())
	}
	return nil
}

func (t *tagEntry) parseRange(rt *script.Runtime, iv interval.Interval, readLines func(lo, hi int) []string) []*string {
	lines := readLines(iv.Lo, iv.Hi)
	values := make([]*string, len(lines))
	for i, line := range lines {
		values[i] = t.extractValue(rt, line)
	}
	return values
}
