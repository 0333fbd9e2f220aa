// Package debug provides optional tracing of the engine's own internal
// surfaces: cache extension (internal/engine's ensure_file/ensure_tag/
// ensure_filter/ensure_distinct), plan construction, and value-local
// script failures (a tag transform or scripted filter predicate that
// failed to evaluate — spec.md §7 never promotes these to an engine
// error, so a trace line is the only way to see one happen). This is
// independent of the Stats report Take returns in its Result, which is
// filled whenever the engine's Debug option is set. Trace lines are
// written only when tracing is enabled (the DEBUG environment variable
// or the EnableDebug build flag, which cmd/logtags' --debug-log also
// sets) and a writer is configured (SetDebugOutput or InitDebugLogFile).
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/angelini/logtags/internal/ids"
	"github.com/angelini/logtags/internal/interval"
)

// EnableDebug is a build flag — can be overridden at build time with
// go build -ldflags "-X github.com/angelini/logtags/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// logState bundles the output writer and an owned file handle (when
// output was opened via InitDebugLogFile) behind one mutex.
type logState struct {
	mu     sync.Mutex
	output io.Writer
	file   *os.File
}

var state logState

// SetDebugOutput sets a custom writer for debug output. Pass nil to
// disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.output = w
}

// InitDebugLogFile opens a fresh timestamped log file under the system
// temp directory and returns its path. Call CloseDebugLog when done.
func InitDebugLogFile() (string, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	dir := filepath.Join(os.TempDir(), "logtags-debug-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create debug log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("debug-%s.log", time.Now().Format("2006-01-02T150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("create debug log file: %w", err)
	}

	state.file = f
	state.output = f
	return path, nil
}

// CloseDebugLog closes the debug log file if InitDebugLogFile opened one.
func CloseDebugLog() error {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.file == nil {
		return nil
	}
	err := state.file.Close()
	state.file = nil
	state.output = nil
	return err
}

// IsDebugEnabled reports whether tracing is active, either via the build
// flag or the DEBUG environment variable.
func IsDebugEnabled() bool {
	if EnableDebug == "true" {
		return true
	}
	return os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true"
}

func writer() io.Writer {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.output
}

func emit(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := writer()
	if w == nil {
		return
	}
	fmt.Fprintf(w, format, args...)
}

// CacheExtend traces one artifact's cache growing from before to after.
// Every ensure_* operation in internal/engine calls this exactly once it
// actually extends its cache; an already-covered request never reaches
// it, since there is nothing to trace.
func CacheExtend(kind string, id ids.ID, before, after interval.Interval) {
	emit("[cache] %s %s extended %s -> %s\n", kind, id, before, after)
}

// ScriptFailure traces a value-local script failure. op is "transform"
// for a Tag's post-extraction script or "filter" for a scripted Filter
// predicate; source is the script text that failed.
func ScriptFailure(op string, id ids.ID, source string, err error) {
	emit("[script] %s %s %q: %v\n", op, id, source, err)
}

// PlanBuilt traces a constructed plan: the queried leaf and its root-
// first ancestor chain, as produced by buildPlan.
func PlanBuilt(leaf ids.ID, steps []ids.ID) {
	emit("[plan] leaf=%s steps=%v\n", leaf, steps)
}

// Log writes a free-form, component-tagged line. cmd/logtags uses this
// for CLI lifecycle events (signal receipt, watcher errors, the printed
// stats report) that have no dedicated engine hook of their own.
func Log(component, format string, args ...interface{}) {
	emit("[%s] "+format, append([]interface{}{component}, args...)...)
}

// Fatal records a fatal condition to the debug log, if one is open, and
// returns an error describing it. Callers decide whether to exit. Unlike
// the trace hooks above, Fatal always writes when a writer is configured
// — a fatal condition is worth recording even without DEBUG set.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if w := writer(); w != nil {
		fmt.Fprintf(w, "[fatal] %s", msg)
	}
	return fmt.Errorf("fatal error: %s", msg)
}
