// Package trialrun runs repeated independent trials of a binary-outcome
// experiment and reports how the empirical success probability converges
// toward its theoretical value.
package trialrun

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun/trace"
)

// Experiment is a single probabilistic trial with a known success probability.
// Trial must draw all of its randomness from src and must not keep state
// between calls.
type Experiment interface {
	// Name identifies the experiment in logs and reports.
	Name() string
	// Expected returns the theoretical success probability.
	Expected() float64
	// Trial runs one trial and reports whether it succeeded.
	Trial(src Source) bool
}

// Labeler is implemented by experiments that describe their success event
// for progress lines, e.g. "winning with switching".
type Labeler interface {
	Label() string
}

// Validator is implemented by experiments that can reject their own
// configuration. Runner.Run calls Validate before any trial or handler event.
type Validator interface {
	Validate() error
}

// Runner executes trials of one experiment.
type Runner struct {
	exp Experiment

	runnerConfig
}

type runnerConfig struct {
	source        Source
	sourceFactory func(worker int) Source
	seed          *uint64
	workers       int
	confidence    float64
	handler       trace.Handler
	logger        *slog.Logger
}

// Option is the type for the options of a Runner.
type Option func(*runnerConfig)

// WithSource sets the source used by a sequential run. It cannot be combined
// with more than one worker because a Source is not safe for concurrent use.
func WithSource(src Source) Option {
	return func(c *runnerConfig) {
		c.source = src
	}
}

// WithSourceFactory sets the constructor of per-worker sources. Each worker
// calls it once with its index; returned sources must be independent.
func WithSourceFactory(f func(worker int) Source) Option {
	return func(c *runnerConfig) {
		c.sourceFactory = f
	}
}

// WithSeed makes runs reproducible: worker i draws from NewSource(seed, i).
func WithSeed(seed uint64) Option {
	return func(c *runnerConfig) {
		c.seed = &seed
	}
}

// WithWorkers sets the number of goroutines that execute trials. Values
// below 2 run every trial sequentially on the calling goroutine.
func WithWorkers(n int) Option {
	return func(c *runnerConfig) {
		c.workers = n
	}
}

// WithConfidence sets the confidence level of Result.Lower and Result.Upper.
func WithConfidence(level float64) Option {
	return func(c *runnerConfig) {
		c.confidence = level
	}
}

// WithTrace sets the handler that receives run lifecycle events.
// Use trace.Multi to combine several handlers.
func WithTrace(h trace.Handler) Option {
	return func(c *runnerConfig) {
		c.handler = h
	}
}

// WithLogger sets the logger for the runner.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runnerConfig) {
		c.logger = logger
	}
}

// New creates a Runner for exp.
func New(exp Experiment, options ...Option) *Runner {
	r := &Runner{
		exp: exp,
		runnerConfig: runnerConfig{
			workers:    1,
			confidence: DefaultConfidence,
			logger:     slog.New(slog.DiscardHandler),
		},
	}

	for _, opt := range options {
		opt(&r.runnerConfig)
	}

	return r
}

// Run executes totalTrials trials and reports a checkpoint every logCadence
// trials. Both arguments must be at least 1; otherwise ErrInvalidArgument is
// returned before any trial runs.
func (x *Runner) Run(ctx context.Context, totalTrials, logCadence int64) (*Result, error) {
	if err := x.validate(totalTrials, logCadence); err != nil {
		return nil, err
	}

	logger := x.logger
	ctx = ctxWithLogger(ctx, logger)

	info := &trace.RunInfo{
		Experiment:  x.exp.Name(),
		TotalTrials: totalTrials,
		LogCadence:  logCadence,
		Workers:     max(x.workers, 1),
		Expected:    x.exp.Expected(),
		Seed:        x.seed,
	}
	if l, ok := x.exp.(Labeler); ok {
		info.Label = l.Label()
	}

	if x.handler != nil {
		ctx = trace.WithHandler(ctx, x.handler)
		ctx = x.handler.StartRun(ctx, info)
	}

	logger.Debug("run started",
		"experiment", info.Experiment,
		"total_trials", totalTrials,
		"log_cadence", logCadence,
		"workers", info.Workers,
	)

	agg := newAggregate(x.handler, logCadence, info.Expected)

	var err error
	if x.workers > 1 {
		err = x.runParallel(ctx, agg, totalTrials, logCadence)
	} else {
		err = x.runSerial(ctx, agg, totalTrials, logCadence)
	}

	var result *Result
	if err == nil {
		result, err = x.newResult(agg.snapshot(), time.Since(agg.started))
	}

	if x.handler != nil {
		var summary *trace.Summary
		if result != nil {
			summary = result.summary()
		}
		x.handler.EndRun(ctx, summary, err)

		if finishErr := x.handler.Finish(ctx); finishErr != nil {
			logger.Error("failed to finish run report", "error", finishErr)
			if err == nil {
				err = goerr.Wrap(finishErr, "failed to finish run report")
			}
		}
	}

	if err != nil {
		return nil, err
	}

	logger.Debug("run ended",
		"experiment", result.Experiment,
		"trials", result.Trials,
		"probability", result.Probability,
		"duration", result.Duration,
	)

	return result, nil
}

func (x *Runner) validate(totalTrials, logCadence int64) error {
	if x.exp == nil {
		return invalidArgument("experiment is required")
	}
	if v, ok := x.exp.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if totalTrials < 1 {
		return invalidArgument("total trials must be positive", goerr.V("total_trials", totalTrials))
	}
	if logCadence < 1 {
		return invalidArgument("log cadence must be positive", goerr.V("log_cadence", logCadence))
	}
	if x.workers > 1 && x.source != nil {
		return invalidArgument("a single source cannot be shared by multiple workers",
			goerr.V("workers", x.workers))
	}
	if !(x.confidence > 0 && x.confidence < 1) {
		return invalidArgument("confidence level must be within (0, 1)", goerr.V("confidence", x.confidence))
	}
	return nil
}

// newSource returns the source for worker i.
func (x *Runner) newSource(worker int) Source {
	switch {
	case worker == 0 && x.source != nil:
		return x.source
	case x.sourceFactory != nil:
		return x.sourceFactory(worker)
	case x.seed != nil:
		return NewSource(*x.seed, uint64(worker))
	default:
		return newRandomSource()
	}
}

func (x *Runner) newResult(t Tally, elapsed time.Duration) (*Result, error) {
	lower, upper, err := Interval(t.Successes(), t.Trials(), x.confidence)
	if err != nil {
		return nil, err
	}

	return &Result{
		Experiment:  x.exp.Name(),
		Trials:      t.Trials(),
		Successes:   t.Successes(),
		Probability: t.Probability(),
		Expected:    x.exp.Expected(),
		Lower:       lower,
		Upper:       upper,
		Level:       x.confidence,
		Duration:    elapsed,
	}, nil
}

// Run is a shorthand for New(exp, options...).Run that returns only the final
// empirical probability.
func Run(ctx context.Context, exp Experiment, totalTrials, logCadence int64, options ...Option) (float64, error) {
	result, err := New(exp, options...).Run(ctx, totalTrials, logCadence)
	if err != nil {
		return 0, err
	}
	return result.Probability, nil
}
