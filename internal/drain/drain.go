// Package drain tracks whether the process is shutting down.
package drain

import (
	"sync/atomic"
	"time"
)

var (
	draining  atomic.Bool
	startedAt atomic.Int64
)

// Start marks the process as draining. Calling it again keeps the original
// start time.
func Start() {
	if draining.CompareAndSwap(false, true) {
		startedAt.Store(time.Now().UnixNano())
	}
}

// Stop clears the draining flag.
func Stop() {
	draining.Store(false)
	startedAt.Store(0)
}

// IsDraining reports whether draining is in progress.
func IsDraining() bool { return draining.Load() }

// Since returns how long the process has been draining, or zero.
func Since() time.Duration {
	ns := startedAt.Load()
	if !draining.Load() || ns == 0 {
		return 0
	}
	return time.Since(time.Unix(0, ns))
}
