package sampler

import "math"

// Series is the append-only list of per-round measurements.
type Series struct {
	Samples []float64 `json:"samples"`
}

// Append adds one measurement.
func (s *Series) Append(v float64) {
	s.Samples = append(s.Samples, v)
}

// Len returns the number of measurements.
func (s *Series) Len() int {
	return len(s.Samples)
}

// Min returns the smallest measurement, or +Inf for an empty series. The
// minimum is the estimate closest to the noise-free floor: scheduler
// jitter only ever adds time.
func (s *Series) Min() float64 {
	m := math.Inf(1)
	for _, v := range s.Samples {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest measurement, or -Inf for an empty series.
func (s *Series) Max() float64 {
	m := math.Inf(-1)
	for _, v := range s.Samples {
		if v > m {
			m = v
		}
	}
	return m
}
