// Package clock provides the high-resolution time source used to time the
// initiator's loop.
package clock

import "time"

// Clock returns monotonic timestamps. Subtracting two timestamps from the
// same Clock yields elapsed time.
type Clock interface {
	Now() time.Duration
}

// Since returns the time elapsed on c since start.
func Since(c Clock, start time.Duration) time.Duration {
	return c.Now() - start
}

// Func adapts a function to the Clock interface.
type Func func() time.Duration

// Now calls f.
func (f Func) Now() time.Duration {
	return f()
}

// Runtime reads the Go runtime's monotonic clock.
type Runtime struct {
	base time.Time
}

// NewRuntime creates a Runtime clock anchored at the current instant.
func NewRuntime() *Runtime {
	return &Runtime{base: time.Now()}
}

// Now returns the monotonic time since the clock was created.
func (r *Runtime) Now() time.Duration {
	return time.Since(r.base)
}
