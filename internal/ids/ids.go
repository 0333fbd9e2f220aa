// Package ids defines the tagged identifiers the engine hands out to
// callers. Every artifact kind (File, Tag, Filter, Distinct) shares one
// global counter, so two identifiers are never equal unless they name the
// same artifact.
package ids

import (
	"fmt"
	"sync/atomic"
)

// Kind distinguishes the four artifact families an ID can name.
type Kind uint8

const (
	File Kind = iota
	Tag
	Filter
	Distinct
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Tag:
		return "tag"
	case Filter:
		return "filter"
	case Distinct:
		return "distinct"
	default:
		return "unknown"
	}
}

// ID is an opaque handle to a registered artifact. The zero value is not a
// valid ID; always obtain one from a Generator.
type ID struct {
	Kind  Kind
	Value uint64
}

func (id ID) String() string {
	return fmt.Sprintf("%s:%d", id.Kind, id.Value)
}

// IsZero reports whether id is the unset zero value. Generated IDs always
// have Value >= 1, since the counter starts at 1.
func (id ID) IsZero() bool {
	return id.Value == 0
}

// Generator hands out globally unique IDs from one monotonically
// increasing counter, shared across all kinds.
type Generator struct {
	counter atomic.Uint64
}

func (g *Generator) next() uint64 {
	return g.counter.Add(1)
}

func (g *Generator) NewFile() ID     { return ID{Kind: File, Value: g.next()} }
func (g *Generator) NewTag() ID      { return ID{Kind: Tag, Value: g.next()} }
func (g *Generator) NewFilter() ID   { return ID{Kind: Filter, Value: g.next()} }
func (g *Generator) NewDistinct() ID { return ID{Kind: Distinct, Value: g.next()} }
