//go:build !linux

package affinity

// Pin is not supported on this platform.
func Pin(int) error {
	return ErrUnsupported
}

// RaisePriority is not supported on this platform.
func RaisePriority() error {
	return ErrUnsupported
}
