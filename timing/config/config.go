// Package config holds the run configuration of a switch measurement.
//
// The values mirror the constants of the classic pipe ping-pong benchmark
// (round trips per round, number of rounds, time unit scale) and can be
// loaded from a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// RunConfig controls how a measurement is sampled.
type RunConfig struct {
	// RoundTrips is the number of ping-pong round trips timed per round.
	// Must be identical for both roles and all rounds. Default: 10000.
	RoundTrips int `json:"round_trips"`

	// Rounds is the number of samples taken. Default: 10.
	Rounds int `json:"rounds"`

	// TimeScale converts elapsed seconds into the reported unit.
	// Default: 1e6 (microseconds).
	TimeScale float64 `json:"time_scale"`

	// StartDelay is slept by the initiator after allocating its buffer and
	// before starting the clock. Default: 1s.
	StartDelay time.Duration `json:"start_delay_ns"`

	// SettleDelay is slept between rounds. Default: 1s.
	SettleDelay time.Duration `json:"settle_delay_ns"`

	// FlushBytes is the size of the buffer swept to flush caches before each
	// round. Zero selects twice the modelled last-level cache.
	FlushBytes int `json:"flush_bytes"`

	// Transport selects the handoff channel: "pipe" or "chan".
	Transport string `json:"transport"`

	// CPU pins both execution units to one logical CPU. -1 disables pinning.
	CPU int `json:"cpu"`

	// RaisePriority asks the OS to favour both execution units.
	RaisePriority bool `json:"raise_priority"`
}

// DefaultRunConfig returns the configuration used when nothing is given.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		RoundTrips:  10000,
		Rounds:      10,
		TimeScale:   1e6,
		StartDelay:  time.Second,
		SettleDelay: time.Second,
		FlushBytes:  0,
		Transport:   "pipe",
		CPU:         -1,
	}
}

// LoadConfig loads a RunConfig from a JSON file. Missing fields keep their
// default values.
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config file: %w", err)
	}

	config := DefaultRunConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a RunConfig to a JSON file.
func (c *RunConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize run config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can drive a measurement.
func (c *RunConfig) Validate() error {
	if c.RoundTrips <= 0 {
		return fmt.Errorf("round_trips must be > 0")
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be > 0")
	}
	if c.TimeScale <= 0 {
		return fmt.Errorf("time_scale must be > 0")
	}
	if c.StartDelay < 0 || c.SettleDelay < 0 {
		return fmt.Errorf("delays must be >= 0")
	}
	if c.FlushBytes < 0 {
		return fmt.Errorf("flush_bytes must be >= 0")
	}
	if c.Transport != "pipe" && c.Transport != "chan" {
		return fmt.Errorf("transport must be \"pipe\" or \"chan\", got %q", c.Transport)
	}
	if c.CPU < -1 {
		return fmt.Errorf("cpu must be >= -1")
	}
	return nil
}

// Clone returns a copy of the RunConfig.
func (c *RunConfig) Clone() *RunConfig {
	clone := *c
	return &clone
}
