// Command measureswitch measures the cost of a context switch between two
// threads that hand a one-byte token back and forth over a pair of pipes.
//
// Usage:
//
//	go run ./cmd/measureswitch [flags]
//
// Flags:
//
//	-n          size of the array to work on, in bytes (default 0)
//	-s          access stride size, in bytes (default 0)
//	-config     path to a run configuration JSON file
//	-rounds     number of rounds to sample
//	-loop       round trips per round
//	-transport  handoff transport: pipe or chan
//	-cpu        pin both threads to this CPU
//	-priority   raise the threads' scheduling priority
//	-json       write the result to this JSON file
//	-cpuprofile write a CPU profile to this file
//	-v          verbose diagnostics on stderr
//
// The reported time2 is the per-handoff time of the workload plus the pipe
// plus the switch. Running the same workload without switching gives
// time1; the switch cost is time2 - time1.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"

	"github.com/sarchlab/ctxswitch/affinity"
	"github.com/sarchlab/ctxswitch/handoff"
	"github.com/sarchlab/ctxswitch/report"
	"github.com/sarchlab/ctxswitch/sampler"
	"github.com/sarchlab/ctxswitch/timing/cache"
	"github.com/sarchlab/ctxswitch/timing/config"
	"github.com/sarchlab/ctxswitch/workload"
)

// Replaced in tests.
var (
	newPair     = handoff.New
	totalMemory = memory.TotalMemory
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	bufferBytes int
	strideBytes int
	configPath  string
	rounds      int
	loop        int
	transport   string
	cpu         int
	priority    bool
	jsonPath    string
	cpuProfile  string
	verbose     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, map[string]bool, error) {
	opts := &options{}
	fs := flag.NewFlagSet("measureswitch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage:\nmeasureswitch <options>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	fs.IntVar(&opts.bufferBytes, "n", 0, "size of the array to work on (in bytes)")
	fs.IntVar(&opts.strideBytes, "s", 0, "access stride size (in bytes)")
	fs.StringVar(&opts.configPath, "config", "", "Path to run configuration JSON file")
	fs.IntVar(&opts.rounds, "rounds", 0, "Number of rounds to sample (overrides config)")
	fs.IntVar(&opts.loop, "loop", 0, "Round trips per round (overrides config)")
	fs.StringVar(&opts.transport, "transport", "", "Handoff transport: pipe or chan (overrides config)")
	fs.IntVar(&opts.cpu, "cpu", -1, "Pin both threads to this CPU (overrides config)")
	fs.BoolVar(&opts.priority, "priority", false, "Raise thread scheduling priority")
	fs.StringVar(&opts.jsonPath, "json", "", "Write the result to this JSON file")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	return opts, set, nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Logger()
}

func loadRunConfig(opts *options, set map[string]bool) (*config.RunConfig, error) {
	runCfg := config.DefaultRunConfig()
	if opts.configPath != "" {
		var err error
		runCfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if set["rounds"] {
		runCfg.Rounds = opts.rounds
	}
	if set["loop"] {
		runCfg.RoundTrips = opts.loop
	}
	if set["transport"] {
		runCfg.Transport = opts.transport
	}
	if set["cpu"] {
		runCfg.CPU = opts.cpu
	}
	if set["priority"] {
		runCfg.RaisePriority = opts.priority
	}

	if err := runCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}
	return runCfg, nil
}

// checkMemory refuses configurations whose buffers cannot be allocated.
func checkMemory(params workload.Params, flushBytes int) error {
	total := totalMemory()
	if total == 0 {
		return nil
	}

	// Compare piecewise; the sum can wrap for sizes near MaxInt64.
	footprint := params.Footprint()
	flush := uint64(flushBytes)
	if footprint > total || flush > total-footprint {
		return fmt.Errorf("need %d + %d bytes, system has %d", footprint, flush, total)
	}
	return nil
}

func logPrediction(
	logger zerolog.Logger,
	name string,
	params workload.Params,
	pred cache.Prediction,
) {
	logger.Info().
		Str("cache", name).
		Int("buffer_bytes", params.BufferBytes()).
		Int("stride_bytes", params.StrideBytes()).
		Bool("fits", pred.FitsInCache).
		Float64("cold_miss_ratio", pred.Cold.MissRatio()).
		Float64("steady_miss_ratio", pred.Steady.MissRatio()).
		Uint64("steady_cycles", pred.SteadyCycles).
		Msg("modelled cache behaviour")
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, set, err := parseFlags(args, stderr)
	if err != nil {
		// flag has already reported the error and printed usage.
		return 1
	}

	logger := newLogger(stderr, opts.verbose)

	runCfg, err := loadRunConfig(opts, set)
	if err != nil {
		logger.Error().Err(err).Msg("configuration")
		return 1
	}

	if opts.strideBytes < 0 || opts.bufferBytes < 0 {
		logger.Error().Int("n", opts.bufferBytes).Int("s", opts.strideBytes).
			Msg("sizes must be >= 0")
		return 1
	}
	params := workload.FromBytes(opts.bufferBytes, opts.strideBytes)
	if err := params.Validate(); err != nil {
		logger.Error().Err(err).Msg("configuration")
		return 1
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			logger.Error().Err(err).Msg("creating CPU profile")
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Error().Err(err).Msg("starting CPU profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	return measure(params, runCfg, opts.jsonPath, stdout, logger)
}

func measure(
	params workload.Params,
	runCfg *config.RunConfig,
	jsonPath string,
	stdout io.Writer,
	logger zerolog.Logger,
) int {
	flushBytes := runCfg.FlushBytes
	if flushBytes == 0 {
		flushBytes = 2 * cache.DefaultLLCConfig().Size
	}
	if err := checkMemory(params, flushBytes); err != nil {
		logger.Error().Err(err).Msg("buffer allocation fails")
		return 1
	}
	flusher := cache.NewSweepFlusher(flushBytes)

	pair, err := newPair(handoff.Transport(runCfg.Transport))
	if err != nil {
		logger.Error().Err(err).Msg("create handoff channel")
		return 1
	}
	defer func() { _ = pair.Close() }()

	pred := cache.Predict(cache.DefaultL1DConfig(), params, runCfg.RoundTrips)
	logPrediction(logger, "L1D", params, pred)
	logPrediction(logger, "L2", params,
		cache.Predict(cache.DefaultL2Config(), params, runCfg.RoundTrips))

	rep := report.New(stdout)
	if err := rep.Begin(); err != nil {
		logger.Error().Err(err).Msg("write output")
		return 1
	}

	s := sampler.New(params, runCfg, pair,
		sampler.WithFlusher(flusher),
		sampler.WithLogger(logger),
		sampler.WithThreadSetup(affinity.ThreadSetup(runCfg.CPU, runCfg.RaisePriority)),
		sampler.WithRoundObserver(func(_ int, v float64) error {
			return rep.Round(v)
		}),
	)

	series, err := s.Measure(runCfg.Rounds)
	if err != nil {
		logger.Error().Err(err).Msg("measurement failed")
		return 1
	}

	summary := report.Summary{
		BufferBytes: params.BufferBytes(),
		StrideBytes: params.StrideBytes(),
		Min:         series.Min(),
	}
	if err := rep.Summary(summary); err != nil {
		logger.Error().Err(err).Msg("write output")
		return 1
	}

	if jsonPath != "" {
		res := report.Result{
			Params:     params,
			Run:        runCfg,
			Samples:    series.Samples,
			Min:        series.Min(),
			Max:        series.Max(),
			Prediction: &pred,
		}
		if err := report.SaveResult(jsonPath, res); err != nil {
			logger.Error().Err(err).Msg("saving result")
			return 1
		}
	}

	return 0
}
