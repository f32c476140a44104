package console_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun/trace"
	"github.com/m-mizutani/trialrun/trace/console"
)

func TestProgressLines(t *testing.T) {
	var buf bytes.Buffer
	h := console.New(console.WithWriter(&buf))

	ctx := h.StartRun(context.Background(), &trace.RunInfo{
		Experiment: "montyhall_switch",
		Label:      "winning with switching",
		Expected:   2.0 / 3.0,
	})
	h.Checkpoint(ctx, &trace.Checkpoint{Batch: 1, Trials: 10, Probability: 0.7, Expected: 2.0 / 3.0})
	h.Checkpoint(ctx, &trace.Checkpoint{Batch: 2, Trials: 20, Probability: 0.65, Expected: 2.0 / 3.0})
	gt.NoError(t, h.Finish(ctx))

	gt.Equal(t, buf.String(),
		"(1) P of winning with switching 0.700000, should approach 0.6667\n"+
			"(2) P of winning with switching 0.650000, should approach 0.6667\n")
}

func TestSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	h := console.New(console.WithWriter(&buf), console.WithPrecision(2))

	ctx := h.StartRun(context.Background(), &trace.RunInfo{Experiment: "circle"})
	h.EndRun(ctx, &trace.Summary{
		Trials:      100,
		Probability: 0.78,
		Lower:       0.70,
		Upper:       0.86,
		Expected:    0.785398,
		Level:       0.95,
	}, nil)

	gt.Equal(t, buf.String(), "P of circle after 100 trials: 0.78 (95% CI 0.70-0.86), expected 0.7854\n")
}

func TestSummaryLineLevel(t *testing.T) {
	testCases := map[string]struct {
		level  float64
		expect string
	}{
		"50 percent":   {level: 0.5, expect: "(50% CI 0.65-0.67)"},
		"99.9 percent": {level: 0.999, expect: "(99.9% CI 0.65-0.67)"},
		"unknown":      {level: 0, expect: "(CI 0.65-0.67)"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			h := console.New(console.WithWriter(&buf), console.WithPrecision(2))

			ctx := h.StartRun(context.Background(), &trace.RunInfo{Experiment: "coin"})
			h.EndRun(ctx, &trace.Summary{
				Trials:      1000,
				Probability: 0.66,
				Lower:       0.65,
				Upper:       0.67,
				Level:       tc.level,
			}, nil)
			gt.S(t, buf.String()).Contains(tc.expect)
		})
	}
}

func TestDefaultLabel(t *testing.T) {
	var buf bytes.Buffer
	h := console.New(console.WithWriter(&buf), console.WithPrecision(1))

	ctx := h.StartRun(context.Background(), nil)
	h.Checkpoint(ctx, &trace.Checkpoint{Batch: 1, Probability: 0.5, Expected: 0.5})

	gt.Equal(t, buf.String(), "(1) P of success 0.5, should approach 0.5000\n")
}

func TestRunFailed(t *testing.T) {
	var buf bytes.Buffer
	h := console.New(console.WithWriter(&buf))

	ctx := h.StartRun(context.Background(), &trace.RunInfo{Experiment: "circle"})
	h.EndRun(ctx, nil, errors.New("run canceled"))

	gt.Equal(t, buf.String(), "run failed: run canceled\n")
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("pipe closed")
}

func TestFinishReportsWriteError(t *testing.T) {
	h := console.New(console.WithWriter(brokenWriter{}))

	ctx := h.StartRun(context.Background(), &trace.RunInfo{Experiment: "circle"})
	h.Checkpoint(ctx, &trace.Checkpoint{Batch: 1})
	h.Checkpoint(ctx, &trace.Checkpoint{Batch: 2})

	err := h.Finish(ctx)
	gt.Error(t, err)
	gt.S(t, err.Error()).Contains("pipe closed")
}
