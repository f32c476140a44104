package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/trace"
)

// Event represents a run event type that can be selectively enabled.
type Event int

const (
	// RunStart enables logging of the run configuration before the first trial.
	RunStart Event = iota
	// RunCheckpoint enables logging of every checkpoint.
	RunCheckpoint
	// RunEnd enables logging of the final summary or failure.
	RunEnd

	eventCount // sentinel for iteration
)

type config struct {
	logger *slog.Logger
	events map[Event]bool
}

// Option configures the logger handler.
type Option func(*config)

// WithLogger sets a custom slog.Logger. By default the handler logs to the
// logger of the Runner that drives it (see trialrun.LoggerFromContext).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithEvents enables only the specified event types.
// When not specified, all events are enabled.
func WithEvents(events ...Event) Option {
	return func(c *config) {
		c.events = make(map[Event]bool, len(events))
		for _, e := range events {
			c.events[e] = true
		}
	}
}

// handler implements trace.Handler by logging events via slog.
type handler struct {
	cfg config
}

// New creates a new trace.Handler that logs run events via slog.
func New(opts ...Option) trace.Handler {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.events == nil {
		cfg.events = make(map[Event]bool, eventCount)
		for i := Event(0); i < eventCount; i++ {
			cfg.events[i] = true
		}
	}

	return &handler{cfg: cfg}
}

func (h *handler) logger(ctx context.Context) *slog.Logger {
	if h.cfg.logger != nil {
		return h.cfg.logger
	}
	return trialrun.LoggerFromContext(ctx)
}

func (h *handler) enabled(e Event) bool {
	return h.cfg.events[e]
}

type runInfoKey struct{}

func withRunInfo(ctx context.Context, info *trace.RunInfo, started time.Time) context.Context {
	return context.WithValue(ctx, runInfoKey{}, runState{info: info, started: started})
}

type runState struct {
	info    *trace.RunInfo
	started time.Time
}

func runStateFrom(ctx context.Context) runState {
	s, _ := ctx.Value(runInfoKey{}).(runState)
	return s
}

func (s runState) experiment() string {
	if s.info == nil {
		return ""
	}
	return s.info.Experiment
}

// StartRun logs the run configuration.
func (h *handler) StartRun(ctx context.Context, info *trace.RunInfo) context.Context {
	if h.enabled(RunStart) && info != nil {
		attrs := []any{
			slog.String("experiment", info.Experiment),
			slog.Int64("total_trials", info.TotalTrials),
			slog.Int64("log_cadence", info.LogCadence),
			slog.Int("workers", info.Workers),
			slog.Float64("expected", info.Expected),
		}
		if info.Seed != nil {
			attrs = append(attrs, slog.Uint64("seed", *info.Seed))
		}
		h.logger(ctx).InfoContext(ctx, "run started", attrs...)
	}
	return withRunInfo(ctx, info, time.Now())
}

// Checkpoint logs the running estimate.
func (h *handler) Checkpoint(ctx context.Context, cp *trace.Checkpoint) {
	if !h.enabled(RunCheckpoint) || cp == nil {
		return
	}

	h.logger(ctx).InfoContext(ctx, "checkpoint",
		slog.String("experiment", runStateFrom(ctx).experiment()),
		slog.Int64("batch", cp.Batch),
		slog.Int64("trials", cp.Trials),
		slog.Int64("successes", cp.Successes),
		slog.Float64("probability", cp.Probability),
		slog.Float64("expected", cp.Expected),
		slog.Duration("elapsed", cp.Elapsed),
	)
}

// EndRun logs the final summary with duration and error info.
func (h *handler) EndRun(ctx context.Context, summary *trace.Summary, err error) {
	if !h.enabled(RunEnd) {
		return
	}

	state := runStateFrom(ctx)
	attrs := []any{
		slog.String("experiment", state.experiment()),
	}
	if !state.started.IsZero() {
		attrs = append(attrs, slog.Duration("duration", time.Since(state.started)))
	}
	if summary != nil {
		attrs = append(attrs,
			slog.Int64("trials", summary.Trials),
			slog.Int64("successes", summary.Successes),
			slog.Float64("probability", summary.Probability),
			slog.Float64("expected", summary.Expected),
			slog.Float64("lower", summary.Lower),
			slog.Float64("upper", summary.Upper),
			slog.Float64("level", summary.Level),
		)
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		h.logger(ctx).ErrorContext(ctx, "run failed", attrs...)
		return
	}
	h.logger(ctx).InfoContext(ctx, "run ended", attrs...)
}

// Finish is a no-op for the logger handler. Persistence is the Recorder's responsibility.
func (h *handler) Finish(_ context.Context) error {
	return nil
}
