//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Pin binds the calling OS thread to the given logical CPU. The caller
// must have locked its goroutine to the thread.
func Pin(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("sched_setaffinity cpu %d: %w", cpu, err)
	}
	return nil
}

// RaisePriority gives the calling thread the highest nice priority.
// It stands in for SCHED_FIFO at maximum priority, which needs root and
// can starve the rest of the machine. Usually requires CAP_SYS_NICE.
func RaisePriority() error {
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, -20); err != nil {
		return fmt.Errorf("setpriority: %w", err)
	}
	return nil
}
