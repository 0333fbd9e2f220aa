package main

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain guards the watch command's goroutine topology: the signal
// handler, the fsnotify event loop, and the engine-owning retake loop
// must all exit cleanly once their errgroup is cancelled.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
