package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/angelini/logtags/internal/cache"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
)

// stats is the optional debug bag described in spec §4.8: per-id, the
// list of intervals that actually required computation (non-empty
// prefixes/suffixes fed into an ensure_*), emitted only in debug mode.
type stats struct {
	enabled bool

	mu       sync.Mutex
	computed map[ids.ID][]interval.Interval
	names    map[ids.ID]string
}

func newStats(enabled bool) *stats {
	return &stats{
		enabled:  enabled,
		computed: make(map[ids.ID][]interval.Interval),
		names:    make(map[ids.ID]string),
	}
}

func (s *stats) record(id ids.ID, iv interval.Interval) {
	if !s.enabled || iv.IsEmpty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.computed[id] = append(s.computed[id], iv)
}

func (s *stats) label(id ids.ID, name string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[id] = name
}

// Report formats the bag grouped by kind (files, tags, filters,
// distincts) in ascending identifier order, plus the compiled-artifact
// cache hit/miss ratio.
func (s *stats) Report(compiled cache.Stats) string {
	if !s.enabled {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids_ []ids.ID
	for id := range s.computed {
		ids_ = append(ids_, id)
	}
	sort.Slice(ids_, func(i, j int) bool {
		if ids_[i].Kind != ids_[j].Kind {
			return ids_[i].Kind < ids_[j].Kind
		}
		return ids_[i].Value < ids_[j].Value
	})

	var b strings.Builder
	fmt.Fprintln(&b, "stats:")
	lastKind := ids.Kind(255)
	for _, id := range ids_ {
		if id.Kind != lastKind {
			fmt.Fprintf(&b, "  %ss:\n", id.Kind)
			lastKind = id.Kind
		}
		name := s.names[id]
		if name != "" {
			name = " (" + name + ")"
		}
		var parts []string
		for _, iv := range s.computed[id] {
			parts = append(parts, iv.String())
		}
		fmt.Fprintf(&b, "    %s%s: %s\n", id, name, strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, "  compiled cache: %d hits, %d misses\n", compiled.Hits, compiled.Misses)
	return b.String()
}
