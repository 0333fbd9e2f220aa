package engine

import (
	"regexp"
	"testing"

	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
	"github.com/angelini/logtags/internal/script"
)

func TestExtractValueNoRegexNoTransform(t *testing.T) {
	tag := &tagEntry{}
	got := tag.extractValue(nil, "hello\n")
	if got == nil || *got != "hello\n" {
		t.Errorf("got %v, want the whole line", got)
	}
}

func TestExtractValueRegexNoMatch(t *testing.T) {
	tag := &tagEntry{regex: regexp.MustCompile(`status=(\d+)`)}
	got := tag.extractValue(nil, "no match here\n")
	if got != nil {
		t.Errorf("got %v, want nil for a non-matching line", got)
	}
}

func TestExtractValueRegexMatchNoTransform(t *testing.T) {
	tag := &tagEntry{regex: regexp.MustCompile(`status=(\d+)`)}
	got := tag.extractValue(nil, "status=200 ok\n")
	if got == nil || *got != "200" {
		t.Errorf("got %v, want \"200\"", got)
	}
}

func TestExtractValueRegexMatchWithTransform(t *testing.T) {
	tag := &tagEntry{
		regex:     regexp.MustCompile(`status=(\d+)`),
		transform: "chunk + '!'",
	}
	got := tag.extractValue(script.New(), "status=200 ok\n")
	if got == nil || *got != "200!" {
		t.Errorf("got %v, want \"200!\"", got)
	}
}

func TestExtractValueNoRegexWithTransform(t *testing.T) {
	tag := &tagEntry{transform: "chunk.toUpperCase()"}
	got := tag.extractValue(script.New(), "hello\n")
	if got == nil || *got != "HELLO\n" {
		t.Errorf("got %v, want \"HELLO\\n\"", got)
	}
}

func TestEnsureTagGrowsForwardFromLines(t *testing.T) {
	tag := &tagEntry{fileID: ids.ID{Kind: ids.File, Value: 1}}
	lines := []string{"a\n", "b\n", "c\n"}
	reader := func(lo, hi int) []string { return lines[lo:hi] }

	if err := tag.ensureTag(interval.Interval{Lo: 0, Hi: 2}, nil, reader); err != nil {
		t.Fatalf("ensureTag: %v", err)
	}
	if tag.bound() != (interval.Interval{Lo: 0, Hi: 2}) {
		t.Errorf("bound() = %v", tag.bound())
	}
	if *tag.valuesIn(0, 1)[0] != "a\n" {
		t.Errorf("valuesIn(0,1) = %v", tag.valuesIn(0, 1))
	}
}

func TestEnsureTagGrowsSuffixThenPrefix(t *testing.T) {
	tag := &tagEntry{fileID: ids.ID{Kind: ids.File, Value: 1}, start: 2, loaded: []*string{strp("c\n")}}
	lines := []string{"a\n", "b\n", "c\n", "d\n"}
	reader := func(lo, hi int) []string { return lines[lo:hi] }

	if err := tag.ensureTag(interval.Interval{Lo: 2, Hi: 4}, nil, reader); err != nil {
		t.Fatalf("ensureTag (suffix): %v", err)
	}
	if tag.bound() != (interval.Interval{Lo: 2, Hi: 4}) {
		t.Fatalf("bound() after suffix growth = %v", tag.bound())
	}

	if err := tag.ensureTag(interval.Interval{Lo: 0, Hi: 4}, nil, reader); err != nil {
		t.Fatalf("ensureTag (prefix): %v", err)
	}
	if tag.bound() != (interval.Interval{Lo: 0, Hi: 4}) {
		t.Fatalf("bound() after prefix growth = %v", tag.bound())
	}
	if *tag.valuesIn(0, 1)[0] != "a\n" || *tag.valuesIn(3, 4)[0] != "d\n" {
		t.Errorf("values after growth: %v / %v", tag.valuesIn(0, 1), tag.valuesIn(3, 4))
	}
}

func strp(s string) *string { return &s }
