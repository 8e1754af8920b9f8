//go:build !(linux || darwin)

package handoff

import "errors"

// NewPipePair is not available on this platform.
func NewPipePair() (*Pair, error) {
	return nil, errors.New("create pipe1: blocking pipes are not supported on this platform")
}
