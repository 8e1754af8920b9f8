// Package sampler repeats the ping-pong measurement and keeps every
// per-round result.
//
// Each round flushes the caches, spawns a fresh responder on its own OS
// thread, times the initiator on the calling thread and joins the
// responder. A failing round aborts the whole run: a measurement with
// silently dropped rounds is worse than none.
package sampler

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/ctxswitch/handoff"
	"github.com/sarchlab/ctxswitch/protocol"
	"github.com/sarchlab/ctxswitch/timing/cache"
	"github.com/sarchlab/ctxswitch/timing/clock"
	"github.com/sarchlab/ctxswitch/timing/config"
	"github.com/sarchlab/ctxswitch/workload"
)

// RoundObserver is notified with each per-handoff time as soon as its
// round completes. A returned error aborts the run.
type RoundObserver func(round int, perHandoff float64) error

// Sampler runs measurement rounds.
type Sampler struct {
	params   workload.Params
	run      *config.RunConfig
	pair     *handoff.Pair
	clock    clock.Clock
	flusher  cache.Flusher
	logger   zerolog.Logger
	observer RoundObserver
	setup    func() error
	sleep    func(time.Duration)
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock sets the clock used to time the initiator.
func WithClock(c clock.Clock) Option {
	return func(s *Sampler) {
		s.clock = c
	}
}

// WithFlusher sets the cache flush run before every round.
func WithFlusher(f cache.Flusher) Option {
	return func(s *Sampler) {
		s.flusher = f
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Sampler) {
		s.logger = l
	}
}

// WithRoundObserver streams per-round results to fn.
func WithRoundObserver(fn RoundObserver) Option {
	return func(s *Sampler) {
		s.observer = fn
	}
}

// WithThreadSetup runs fn on each execution unit's OS thread after it is
// locked, before any handoff.
func WithThreadSetup(fn func() error) Option {
	return func(s *Sampler) {
		s.setup = fn
	}
}

// New creates a sampler. params and run are not modified.
func New(
	params workload.Params,
	run *config.RunConfig,
	pair *handoff.Pair,
	opts ...Option,
) *Sampler {
	s := &Sampler{
		params:  params,
		run:     run,
		pair:    pair,
		clock:   clock.Default(),
		flusher: cache.FlushFunc(func() {}),
		logger:  zerolog.New(io.Discard),
		sleep:   time.Sleep,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Measure runs the given number of rounds and returns the per-handoff time
// of each, in the order they were taken.
func (s *Sampler) Measure(rounds int) (*Series, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}
	if rounds <= 0 {
		return nil, fmt.Errorf("rounds must be > 0, got %d", rounds)
	}

	if s.params.Degenerate() {
		s.logger.Warn().
			Int("buffer_elements", s.params.BufferElements).
			Int("stride_elements", s.params.StrideElements).
			Msg("stride is not smaller than the buffer; each phase touches at most one element")
	}

	series := &Series{Samples: make([]float64, 0, rounds)}
	for round := 0; round < rounds; round++ {
		v, err := s.measureRound(round)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		series.Append(v)

		if s.observer != nil {
			if err := s.observer(round, v); err != nil {
				return nil, fmt.Errorf("round %d: report: %w", round, err)
			}
		}

		if round < rounds-1 && s.run.SettleDelay > 0 {
			s.sleep(s.run.SettleDelay)
		}
	}

	return series, nil
}

func (s *Sampler) measureRound(round int) (float64, error) {
	s.flusher.Flush()

	role := protocol.Role{
		Params:     s.params,
		RoundTrips: s.run.RoundTrips,
		Pair:       s.pair,
	}

	// The first side to fail closes the pair so the other one wakes up
	// with a secondary error. Only the first error is reported.
	var (
		failOnce sync.Once
		firstErr error
	)
	fail := func(err error) error {
		failOnce.Do(func() {
			firstErr = err
			_ = s.pair.Close()
		})
		return err
	}

	var g errgroup.Group
	var respSum float64
	g.Go(func() error {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		if err := s.threadSetup(); err != nil {
			return fail(fmt.Errorf("responder setup: %w", err))
		}

		buf := workload.NewBuffer(s.params)
		if err := role.Respond(buf); err != nil {
			return fail(err)
		}
		respSum = workload.Checksum(buf)
		return nil
	})

	elapsed, initSum, err := s.initiate(role)
	if err != nil {
		fail(err)
	}

	if werr := g.Wait(); werr != nil || err != nil {
		return 0, firstErr
	}

	v := protocol.PerHandoff(elapsed, s.run.RoundTrips, s.run.TimeScale)

	s.logger.Debug().
		Int("round", round).
		Dur("elapsed", elapsed).
		Float64("per_handoff", v).
		Float64("initiator_checksum", initSum).
		Float64("responder_checksum", respSum).
		Msg("round complete")

	return v, nil
}

func (s *Sampler) initiate(role protocol.Role) (time.Duration, float64, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := s.threadSetup(); err != nil {
		return 0, 0, fmt.Errorf("initiator setup: %w", err)
	}

	buf := workload.NewBuffer(s.params)
	if s.run.StartDelay > 0 {
		s.sleep(s.run.StartDelay)
	}

	elapsed, err := role.Initiate(buf, s.clock)
	if err != nil {
		return 0, 0, err
	}

	return elapsed, workload.Checksum(buf), nil
}

func (s *Sampler) threadSetup() error {
	if s.setup == nil {
		return nil
	}
	return s.setup()
}
