// Package interval implements the closed-open interval arithmetic that
// every cache in the engine uses to describe what it has already
// materialized and what a new request still needs.
package interval

import "fmt"

// Interval is the half-open range [Lo, Hi) over non-negative line indices.
type Interval struct {
	Lo, Hi int
}

// Empty returns the degenerate interval [at, at).
func Empty(at int) Interval {
	return Interval{Lo: at, Hi: at}
}

func (iv Interval) IsEmpty() bool {
	return iv.Lo == iv.Hi
}

func (iv Interval) Len() int {
	return iv.Hi - iv.Lo
}

// Contains reports whether iv fully covers other.
func (iv Interval) Contains(other Interval) bool {
	if other.IsEmpty() {
		return true
	}
	return iv.MissingBefore(other).IsEmpty() && iv.MissingAfter(other).IsEmpty()
}

// MissingBefore returns the portion of other that lies before iv's
// lower bound: [other.Lo, iv.Lo) when other.Lo < iv.Lo, else empty.
//
// An empty iv has no meaningful "before" — treating it as pulling in a
// prefix would double-count against MissingAfter for a cache that has
// never been filled. Callers extending an empty cache forward rely on
// MissingAfter to claim the whole request.
func (iv Interval) MissingBefore(other Interval) Interval {
	if iv.IsEmpty() {
		return Empty(iv.Lo)
	}
	if other.Lo < iv.Lo {
		return Interval{Lo: other.Lo, Hi: iv.Lo}
	}
	return Empty(iv.Lo)
}

// MissingAfter returns the portion of other that lies after iv's upper
// bound: [iv.Hi, other.Hi) when other.Hi > iv.Hi, else empty.
func (iv Interval) MissingAfter(other Interval) Interval {
	if other.Hi > iv.Hi {
		return Interval{Lo: iv.Hi, Hi: other.Hi}
	}
	return Empty(iv.Hi)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Lo, iv.Hi)
}
