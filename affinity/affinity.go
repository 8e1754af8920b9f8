// Package affinity pins the measuring threads to one CPU and raises their
// scheduling priority, so both execution units compete for the same core.
package affinity

import "errors"

// ErrUnsupported is returned on platforms without thread affinity control.
var ErrUnsupported = errors.New("affinity: not supported on this platform")

// ThreadSetup returns a function that prepares the calling OS thread:
// pinning it to cpu when cpu >= 0 and raising its priority when asked.
// It returns nil when there is nothing to do.
func ThreadSetup(cpu int, raisePriority bool) func() error {
	if cpu < 0 && !raisePriority {
		return nil
	}
	return func() error {
		if cpu >= 0 {
			if err := Pin(cpu); err != nil {
				return err
			}
		}
		if raisePriority {
			if err := RaisePriority(); err != nil {
				return err
			}
		}
		return nil
	}
}
