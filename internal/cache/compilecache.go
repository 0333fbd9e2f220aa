// Package cache provides a lock-free cache of compiled regular
// expressions keyed by the xxhash of their source text (scripts are not
// cached here), so re-registering the same Tag regex source (common when
// a REPL user redefines a pipeline) skips a redundant compile. It is
// adapted from the teacher's sync.Map + atomic-counter metrics cache,
// narrowed to the one concern the engine actually needs: amortizing
// repeated compilation, reported through Stats in debug mode.
package cache

import (
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// CompileCache memoizes regexp.Compile results by source text.
type CompileCache struct {
	entries sync.Map // map[uint64]*regexp.Regexp

	hits   atomic.Int64
	misses atomic.Int64
}

func NewCompileCache() *CompileCache {
	return &CompileCache{}
}

func keyOf(source string) uint64 {
	return xxhash.Sum64String(source)
}

// CompileRegexp returns a compiled regexp for pattern, reusing a prior
// compilation when the exact same source was compiled before.
func (c *CompileCache) CompileRegexp(pattern string) (*regexp.Regexp, error) {
	key := keyOf(pattern)
	if cached, ok := c.entries.Load(key); ok {
		c.hits.Add(1)
		return cached.(*regexp.Regexp), nil
	}

	c.misses.Add(1)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	// Another goroutine may have raced us; LoadOrStore keeps one winner.
	// The engine itself is single-threaded, but the cache type makes no
	// assumption about that, matching the teacher's lock-free style.
	actual, _ := c.entries.LoadOrStore(key, re)
	return actual.(*regexp.Regexp), nil
}

// Stats reports hit/miss counters for inclusion in the engine's debug
// output.
type Stats struct {
	Hits   int64
	Misses int64
}

func (c *CompileCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
