// Package console prints run progress as plain text lines, one per checkpoint:
//
//	(3) P of winning with switching 0.666712, should approach 0.6667
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun/trace"
)

// Option configures the console handler.
type Option func(*handler)

// WithWriter sets the output. Default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(h *handler) {
		h.w = w
	}
}

// WithPrecision sets the number of decimals printed for the running probability.
func WithPrecision(n int) Option {
	return func(h *handler) {
		if n >= 0 {
			h.precision = n
		}
	}
}

type handler struct {
	mu        sync.Mutex
	w         io.Writer
	precision int
	label     string
	err       error
}

// New creates a handler that writes human readable progress lines.
func New(opts ...Option) trace.Handler {
	h := &handler{
		w:         os.Stdout,
		precision: 6,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *handler) StartRun(ctx context.Context, info *trace.RunInfo) context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.label = "success"
	if info != nil {
		switch {
		case info.Label != "":
			h.label = info.Label
		case info.Experiment != "":
			h.label = info.Experiment
		}
	}
	return ctx
}

func (h *handler) Checkpoint(_ context.Context, cp *trace.Checkpoint) {
	if cp == nil {
		return
	}
	h.printf("(%d) P of %s %.*f, should approach %.4f\n",
		cp.Batch, h.label, h.precision, cp.Probability, cp.Expected)
}

func (h *handler) EndRun(_ context.Context, summary *trace.Summary, err error) {
	if err != nil {
		h.printf("run failed: %v\n", err)
		return
	}
	if summary == nil {
		return
	}
	ci := "CI"
	if summary.Level > 0 {
		ci = fmt.Sprintf("%.4g%% CI", summary.Level*100)
	}
	h.printf("P of %s after %d trials: %.*f (%s %.*f-%.*f), expected %.4f\n",
		h.label, summary.Trials,
		h.precision, summary.Probability,
		ci,
		h.precision, summary.Lower,
		h.precision, summary.Upper,
		summary.Expected)
}

// Finish reports the first write error, if any.
func (h *handler) Finish(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return goerr.Wrap(h.err, "failed to write progress")
	}
	return nil
}

func (h *handler) printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return
	}
	if _, err := fmt.Fprintf(h.w, format, args...); err != nil {
		h.err = err
	}
}
