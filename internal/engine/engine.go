// Package engine implements the incremental, interval-cached evaluation
// engine described in the specification: a directed dependency graph of
// File, Tag, Filter, and Distinct artifacts whose caches are extended only
// as far as a Take actually needs, and composed at the end into rendered
// output.
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/angelini/logtags/internal/cache"
	engerrors "github.com/angelini/logtags/internal/errors"
	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/script"
)

// Options configures an Engine at construction time. All fields are
// optional; see config.Default for intended real-world values.
type Options struct {
	// MaxBatch caps the doubling batch size the Take driver uses.
	MaxBatch int
	// Debug enables the stats bag described in spec §4.8.
	Debug bool
	// BloomExpectedElements and BloomFalsePositiveRate size every
	// Distinct cache's bloom filter. Zero values fall back to
	// config.DefaultBloomExpectedElements / config.DefaultBloomFalsePositiveMs.
	BloomExpectedElements  uint
	BloomFalsePositiveRate float64
}

// Engine owns every artifact and cache. It is not safe for concurrent
// use: per spec §5, all operations are synchronous and run to completion
// before the caller regains control.
type Engine struct {
	gen ids.Generator

	files     map[ids.ID]*fileEntry
	tags      map[ids.ID]*tagEntry
	filters   map[ids.ID]*filterEntry
	distincts map[ids.ID]*distinctEntry

	// tagsByFile lists every Tag bound to a File, in registration order,
	// so rendering can show all of them regardless of which tags are on
	// the queried plan.
	tagsByFile map[ids.ID][]ids.ID

	runtime  *script.Runtime
	compiled *cache.CompileCache
	stats    *stats

	maxBatch               int
	bloomExpectedElements  uint
	bloomFalsePositiveRate float64
}

func New(opts Options) *Engine {
	maxBatch := opts.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 1024
	}
	bloomExpectedElements := opts.BloomExpectedElements
	if bloomExpectedElements == 0 {
		bloomExpectedElements = 500_000
	}
	bloomFalsePositiveRate := opts.BloomFalsePositiveRate
	if bloomFalsePositiveRate <= 0 {
		bloomFalsePositiveRate = 0.01
	}
	return &Engine{
		files:                  make(map[ids.ID]*fileEntry),
		tags:                   make(map[ids.ID]*tagEntry),
		filters:                make(map[ids.ID]*filterEntry),
		distincts:              make(map[ids.ID]*distinctEntry),
		tagsByFile:             make(map[ids.ID][]ids.ID),
		runtime:                script.New(),
		compiled:               cache.NewCompileCache(),
		stats:                  newStats(opts.Debug),
		maxBatch:               maxBatch,
		bloomExpectedElements:  bloomExpectedElements,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
}

// Close releases every open file handle. The engine must not be used
// afterward.
func (e *Engine) Close() error {
	var firstErr error
	for _, f := range e.files {
		if err := f.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Load opens path and registers a new File artifact for it.
func (e *Engine) Load(path string) (ids.ID, error) {
	handle, err := os.Open(path)
	if err != nil {
		return ids.ID{}, engerrors.InputNoID("load", err)
	}

	id := e.gen.NewFile()
	e.files[id] = &fileEntry{
		id:     id,
		path:   filepath.Clean(path),
		handle: handle,
		reader: newLineReader(handle),
	}
	e.stats.label(id, filepath.Base(path))
	return id, nil
}

// Tag registers an empty Tag (no regex, no transform) bound to fileID.
func (e *Engine) Tag(fileID ids.ID, name string) (ids.ID, error) {
	if fileID.Kind != ids.File {
		return ids.ID{}, engerrors.SemanticErr("tag", fileID, errWrongKind)
	}
	if _, ok := e.files[fileID]; !ok {
		return ids.ID{}, engerrors.StructuralErr("tag", fileID, errUnknownID)
	}

	id := e.gen.NewTag()
	e.tags[id] = &tagEntry{id: id, fileID: fileID, name: name}
	e.tagsByFile[fileID] = append(e.tagsByFile[fileID], id)
	e.stats.label(id, name)
	return id, nil
}

// Regex compiles pattern and attaches it to tagID, using the
// compiled-artifact cache to skip recompiling an already-seen source.
func (e *Engine) Regex(tagID ids.ID, pattern string) error {
	t, err := e.mustTag(tagID, "regex")
	if err != nil {
		return err
	}

	re, err := e.compiled.CompileRegexp(pattern)
	if err != nil {
		return engerrors.InputErr("regex", tagID, err)
	}
	if re.NumSubexp() < 1 {
		return engerrors.InputErr("regex", tagID, fmt.Errorf("pattern %q has no capturing group", pattern))
	}

	t.regex = re
	return nil
}

// Transform attaches a scripted post-extraction transform to tagID. The
// script reads the extracted candidate from the global `chunk` and
// evaluates to the tag's value.
func (e *Engine) Transform(tagID ids.ID, source string) error {
	t, err := e.mustTag(tagID, "transform")
	if err != nil {
		return err
	}
	t.transform = source
	return nil
}

// DirectFilter registers a direct comparator+literal Filter bound to
// parent, which must transitively resolve to a Tag.
func (e *Engine) DirectFilter(parent ids.ID, cmp Comparator, literal string) (ids.ID, error) {
	if _, err := e.governingTag(parent); err != nil {
		return ids.ID{}, engerrors.StructuralErr("direct_filter", parent, err)
	}

	id := e.gen.NewFilter()
	f := newFilterEntry(parent)
	f.id = id
	f.direct = true
	f.comparator = cmp
	f.literal = literal
	e.filters[id] = f
	return id, nil
}

// ScriptedFilter registers a scripted predicate Filter bound to parent.
func (e *Engine) ScriptedFilter(parent ids.ID, predicate string) (ids.ID, error) {
	if _, err := e.governingTag(parent); err != nil {
		return ids.ID{}, engerrors.StructuralErr("scripted_filter", parent, err)
	}

	id := e.gen.NewFilter()
	f := newFilterEntry(parent)
	f.id = id
	f.scriptSrc = predicate
	e.filters[id] = f
	return id, nil
}

// Distinct registers a deduplication node bound to parent.
func (e *Engine) Distinct(parent ids.ID) (ids.ID, error) {
	if _, err := e.governingTag(parent); err != nil {
		return ids.ID{}, engerrors.StructuralErr("distinct", parent, err)
	}

	id := e.gen.NewDistinct()
	d := newDistinctEntry(parent, e.bloomExpectedElements, e.bloomFalsePositiveRate)
	d.id = id
	e.distincts[id] = d
	return id, nil
}

// Script executes source against the shared scripting global namespace
// for its side effects. It has no return value.
func (e *Engine) Script(source string) error {
	if err := e.runtime.RunSetup(source); err != nil {
		return engerrors.RuntimeErr("script", ids.ID{}, err)
	}
	return nil
}

func (e *Engine) mustTag(id ids.ID, op string) (*tagEntry, error) {
	if id.Kind != ids.Tag {
		return nil, engerrors.SemanticErr(op, id, errWrongKind)
	}
	t, ok := e.tags[id]
	if !ok {
		return nil, engerrors.StructuralErr(op, id, errUnknownID)
	}
	return t, nil
}
