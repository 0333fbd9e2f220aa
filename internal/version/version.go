// Package version reports build metadata for the logtags binary, along
// with a couple of facts about the engine configuration that binary
// ships with: the embedded scripting runtime tag transforms and scripted
// filters run against, and the batch-size cap a build enforces absent a
// .logtags.toml override. The batch cap is read from internal/config
// rather than restated here; the script runtime name is a constant in
// this package.
package version

import (
	"fmt"

	"github.com/angelini/logtags/internal/config"
)

const (
	// Version is the current semantic version of logtags.
	Version = "0.1.0"
)

var (
	// BuildDate is set during build time (use -ldflags).
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags).
	GitCommit = "unknown"
)

const (
	// ScriptRuntime names the embedded scripting engine tag transforms
	// and scripted filters are evaluated against. See internal/script.
	ScriptRuntime = "goja (ECMAScript 5.1)"
)

// Info returns the bare semantic version.
func Info() string {
	return Version
}

// FullInfo returns detailed version information, including the engine
// defaults a build without a .logtags.toml file falls back to.
func FullInfo() string {
	return fmt.Sprintf(
		"logtags %s (commit: %s, built: %s, script runtime: %s, default max batch: %d)",
		Version, GitCommit, BuildDate, ScriptRuntime, config.DefaultMaxBatch,
	)
}
