package cache

import (
	"github.com/sarchlab/ctxswitch/workload"
)

// maxPredictRoundTrips bounds the simulated round trips. The access pattern
// repeats exactly, so the model reaches steady state after the first one.
const maxPredictRoundTrips = 4

// Prediction is the modelled cache behaviour of one measurement round.
type Prediction struct {
	// Cold holds the statistics of the first round trip after a flush.
	Cold Statistics `json:"cold"`
	// Steady holds the statistics of the last simulated round trip.
	Steady Statistics `json:"steady"`
	// SteadyCycles estimates the memory cycles of one steady round trip.
	SteadyCycles uint64 `json:"steady_cycles"`
	// FitsInCache reports whether both private buffers fit in the model.
	FitsInCache bool `json:"fits_in_cache"`
}

// Predict runs the traversal of both execution units through a model with
// the given configuration, the way they alternate on one core: the
// initiator sweeps its buffer, then the responder sweeps its own. The two
// buffers are laid out back to back, each aligned to a 4KB page.
func Predict(config Config, params workload.Params, roundTrips int) Prediction {
	if roundTrips > maxPredictRoundTrips {
		roundTrips = maxPredictRoundTrips
	}
	if roundTrips < 1 {
		roundTrips = 1
	}

	const page = 4096
	bufBytes := uint64(params.BufferBytes())
	initiatorBase := uint64(0)
	responderBase := (bufBytes + page - 1) / page * page

	model := NewModel(config)
	sweep := func(base uint64) {
		workload.Visit(params, func(i int) {
			model.Access(base + uint64(i)*workload.ElementSize)
		})
	}

	var pred Prediction
	for rt := 0; rt < roundTrips; rt++ {
		model.ResetStats()
		sweep(initiatorBase)
		sweep(responderBase)

		if rt == 0 {
			pred.Cold = model.Stats()
		}
	}
	pred.Steady = model.Stats()
	pred.SteadyCycles = pred.Steady.Hits*config.HitLatency + pred.Steady.Misses*config.MissLatency
	pred.FitsInCache = params.Footprint() <= uint64(config.Size)

	return pred
}
