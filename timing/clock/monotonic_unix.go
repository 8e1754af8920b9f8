//go:build linux || darwin

package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// Monotonic reads CLOCK_MONOTONIC directly with clock_gettime.
type Monotonic struct{}

// Now returns the current CLOCK_MONOTONIC reading. It falls back to the
// runtime clock if the syscall fails.
func (Monotonic) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return fallback.Now()
	}
	return time.Duration(ts.Nano())
}

var fallback = NewRuntime()

// Default returns the preferred clock on this platform.
func Default() Clock {
	return Monotonic{}
}
