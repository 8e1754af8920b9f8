// Package workload provides the strided array traversal that both sides of
// a switch measurement execute.
//
// The same traversal runs with and without switching, so its cost cancels
// when the two timings are subtracted. Only memory and cache effects remain
// in it; no synchronization happens inside a traversal.
package workload

import (
	"errors"
	"fmt"
)

// ElementSize is the size in bytes of one buffer element (float64).
const ElementSize = 8

// Params describes the shape of the traversal. It is created once from
// configuration and shared by value with every execution unit.
type Params struct {
	// BufferElements is the number of float64 elements in each private buffer.
	BufferElements int `json:"buffer_elements"`

	// StrideElements is the access stride in elements. Must be >= 1.
	StrideElements int `json:"stride_elements"`
}

// FromBytes converts user supplied byte sizes into element counts.
// A stride smaller than one element is raised to one element.
func FromBytes(bufferBytes, strideBytes int) Params {
	p := Params{
		BufferElements: bufferBytes / ElementSize,
		StrideElements: strideBytes / ElementSize,
	}
	if p.StrideElements < 1 && strideBytes >= 0 {
		p.StrideElements = 1
	}
	return p
}

// Validate checks that the parameters can drive a traversal.
func (p Params) Validate() error {
	if p.BufferElements < 0 {
		return fmt.Errorf("buffer size must be >= 0, got %d elements", p.BufferElements)
	}
	if p.StrideElements < 1 {
		return fmt.Errorf("stride must be >= 1 element, got %d", p.StrideElements)
	}
	return nil
}

// Degenerate reports whether the stride reaches past the buffer. In that
// case every phase of the traversal touches at most one element, so the
// access pattern is one element per phase rather than a strided sweep.
func (p Params) Degenerate() bool {
	return p.BufferElements > 0 && p.StrideElements >= p.BufferElements
}

// BufferBytes returns the effective buffer size in bytes.
func (p Params) BufferBytes() int {
	return p.BufferElements * ElementSize
}

// StrideBytes returns the effective stride in bytes.
func (p Params) StrideBytes() int {
	return p.StrideElements * ElementSize
}

// Footprint returns the number of bytes needed by the two private buffers
// of one round.
func (p Params) Footprint() uint64 {
	return 2 * uint64(p.BufferElements) * ElementSize
}

// ErrBadStride is the panic value used when Run is called with a stride
// below one element.
var ErrBadStride = errors.New("workload: stride must be >= 1")

// Run increments every element of buf once per iteration, visiting the
// elements phase by phase: m, m+stride, m+2*stride, ... for m in [0, stride).
func Run(buf []float64, p Params, iterations int) {
	if p.StrideElements < 1 {
		panic(ErrBadStride)
	}

	n := p.BufferElements
	if n > len(buf) {
		n = len(buf)
	}
	stride := p.StrideElements

	for i := 0; i < iterations; i++ {
		for m := 0; m < stride; m++ {
			for j := m; j < n; j += stride {
				buf[j]++
			}
		}
	}
}

// Visit calls fn with each element index in the order a single iteration
// of Run touches them.
func Visit(p Params, fn func(i int)) {
	if p.StrideElements < 1 {
		return
	}
	for m := 0; m < p.StrideElements; m++ {
		for j := m; j < p.BufferElements; j += p.StrideElements {
			fn(j)
		}
	}
}

// Order returns the element indices in the order a single iteration of Run
// visits them.
func Order(p Params) []int {
	if p.StrideElements < 1 || p.BufferElements <= 0 {
		return nil
	}

	order := make([]int, 0, p.BufferElements)
	Visit(p, func(i int) {
		order = append(order, i)
	})
	return order
}

// Checksum reads every element of buf. Callers report the result so the
// traversal that produced the buffer cannot be elided.
func Checksum(buf []float64) float64 {
	var sum float64
	for _, v := range buf {
		sum += v
	}
	return sum
}

// NewBuffer allocates a zeroed private buffer for p.
func NewBuffer(p Params) []float64 {
	return make([]float64, p.BufferElements)
}
