//go:build !(linux || darwin)

package clock

// Default returns the preferred clock on this platform.
func Default() Clock {
	return NewRuntime()
}
