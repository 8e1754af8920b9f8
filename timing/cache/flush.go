package cache

// Flusher evicts processor cache state. Flush returns only after the
// caches no longer hold the previous round's buffers.
type Flusher interface {
	Flush()
}

// FlushFunc adapts a function to the Flusher interface.
type FlushFunc func()

// Flush calls f.
func (f FlushFunc) Flush() {
	f()
}

// SweepFlusher evicts caches by writing one byte in every line of a buffer
// larger than the last-level cache.
type SweepFlusher struct {
	buf       []byte
	blockSize int
	sink      byte
}

// NewSweepFlusher allocates the sweep buffer. A size of zero selects twice
// the default last-level cache size.
func NewSweepFlusher(size int) *SweepFlusher {
	llc := DefaultLLCConfig()
	if size <= 0 {
		size = 2 * llc.Size
	}
	return &SweepFlusher{
		buf:       make([]byte, size),
		blockSize: llc.BlockSize,
	}
}

// Size returns the number of bytes swept per flush.
func (f *SweepFlusher) Size() int {
	return len(f.buf)
}

// Flush writes then reads every line of the sweep buffer.
func (f *SweepFlusher) Flush() {
	for i := 0; i < len(f.buf); i += f.blockSize {
		f.buf[i]++
	}

	var acc byte
	for i := 0; i < len(f.buf); i += f.blockSize {
		acc ^= f.buf[i]
	}
	f.sink = acc
}
