// Package report writes measurement results.
//
// Text output keeps the classic two-line layout: a line of tab-separated
// per-round times streamed as rounds finish, then a summary line with the
// effective sizes and the minimum.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/ctxswitch/timing/cache"
	"github.com/sarchlab/ctxswitch/timing/config"
	"github.com/sarchlab/ctxswitch/workload"
)

// Summary is the final line of a measurement.
type Summary struct {
	BufferBytes int
	StrideBytes int
	Min         float64
}

// Reporter writes streaming text output. Every write error is returned;
// callers treat it as fatal.
type Reporter struct {
	out io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{out: w}
}

// Begin writes the label of the per-round line.
func (r *Reporter) Begin() error {
	_, err := fmt.Fprint(r.out, "time2 with context switch: \t")
	return err
}

// Round writes one per-handoff time.
func (r *Reporter) Round(perHandoff float64) error {
	_, err := fmt.Fprintf(r.out, "%f\t", perHandoff)
	return err
}

// Summary ends the per-round line and writes the summary line.
func (r *Reporter) Summary(s Summary) error {
	_, err := fmt.Fprintf(r.out,
		"\nmeasureSwitch: array_size = %d, stride = %d, min time2 = %.15f\n",
		s.BufferBytes, s.StrideBytes, s.Min)
	return err
}

// Result is the machine-readable record of a measurement.
type Result struct {
	Params     workload.Params   `json:"params"`
	Run        *config.RunConfig `json:"run"`
	Samples    []float64         `json:"samples"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Prediction *cache.Prediction `json:"cache_prediction,omitempty"`
}

// SaveResult writes a Result to a JSON file.
func SaveResult(path string, res Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}

	return nil
}

// LoadResult reads a Result written by SaveResult.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	res := &Result{}
	if err := json.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return res, nil
}
