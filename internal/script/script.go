// Package script wraps an embedded scripting runtime behind the narrow
// interface the engine needs: run setup code against a shared global
// namespace, evaluate a snippet to a string, evaluate a snippet to a bool.
// The runtime is github.com/dop251/goja, a pure-Go ECMAScript interpreter
// — the idiomatic Go stand-in for the original Lua embedding. Any engine
// that offers the same three operations could be swapped in without
// touching the engine package.
package script

import (
	"fmt"

	"github.com/dop251/goja"
)

// chunkVar is the well-known global name tag transforms and filter
// predicates read their candidate string from.
const chunkVar = "chunk"

// Runtime is a single shared scripting context: one mutable global
// namespace, synchronous evaluation, no concurrent use. One Runtime is
// owned by exactly one Engine, mirroring the Lua context in the original
// design (§5: "single process-wide context per engine").
type Runtime struct {
	vm *goja.Runtime
}

func New() *Runtime {
	return &Runtime{vm: goja.New()}
}

// RunSetup executes source against the shared global namespace for its
// side effects (e.g. defining a helper function later transforms call).
func (r *Runtime) RunSetup(source string) error {
	if source == "" {
		return nil
	}
	_, err := r.vm.RunString(source)
	if err != nil {
		return fmt.Errorf("setup script failed: %w", err)
	}
	return nil
}

// EvaluateToString binds chunk as the candidate string and evaluates
// source, coercing the result to a string. Used by Tag transforms.
func (r *Runtime) EvaluateToString(source, chunk string) (string, error) {
	if err := r.vm.Set(chunkVar, chunk); err != nil {
		return "", fmt.Errorf("bind chunk: %w", err)
	}
	value, err := r.vm.RunString(source)
	if err != nil {
		return "", fmt.Errorf("transform script failed: %w", err)
	}
	return value.String(), nil
}

// EvaluateToBool binds chunk as the candidate string and evaluates
// source, coercing the result to a bool. Used by scripted Filters.
func (r *Runtime) EvaluateToBool(source, chunk string) (bool, error) {
	if err := r.vm.Set(chunkVar, chunk); err != nil {
		return false, fmt.Errorf("bind chunk: %w", err)
	}
	value, err := r.vm.RunString(source)
	if err != nil {
		return false, fmt.Errorf("predicate script failed: %w", err)
	}
	return value.ToBoolean(), nil
}
