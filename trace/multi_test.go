package trace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun/trace"
)

func TestMultiHandlerFanOut(t *testing.T) {
	rec1 := trace.New()
	rec2 := trace.New()
	multi := trace.Multi(rec1, rec2)

	ctx := multi.StartRun(context.Background(), &trace.RunInfo{Experiment: "circle", TotalTrials: 20, LogCadence: 10})
	multi.Checkpoint(ctx, &trace.Checkpoint{Batch: 1, Trials: 10, Successes: 8})
	multi.Checkpoint(ctx, &trace.Checkpoint{Batch: 2, Trials: 20, Successes: 15})
	multi.EndRun(ctx, &trace.Summary{Trials: 20, Successes: 15, Probability: 0.75}, nil)

	for _, rec := range []*trace.Recorder{rec1, rec2} {
		report := rec.Report()
		gt.Value(t, report).NotNil()
		gt.Equal(t, report.Run.Experiment, "circle")
		gt.A(t, report.Checkpoints).Length(2)
		gt.Equal(t, report.Status, trace.RunStatusOK)
		gt.Equal(t, report.Summary.Successes, int64(15))
	}

	// Each recorder owns its report.
	gt.True(t, rec1.Report() != rec2.Report())
	gt.NotEqual(t, rec1.Report().ReportID, rec2.Report().ReportID)
}

func TestMultiHandlerSkipsNil(t *testing.T) {
	rec := trace.New()
	multi := trace.Multi(nil, rec, nil)

	ctx := multi.StartRun(context.Background(), &trace.RunInfo{Experiment: "circle"})
	multi.EndRun(ctx, nil, errors.New("boom"))
	gt.NoError(t, multi.Finish(ctx))

	gt.Equal(t, rec.Report().Status, trace.RunStatusError)
	gt.Equal(t, rec.Report().Error, "boom")
}

func TestMultiHandlerWithoutStart(t *testing.T) {
	rec := trace.New()
	multi := trace.Multi(rec)

	// Events without StartRun are dropped rather than panicking.
	multi.Checkpoint(context.Background(), &trace.Checkpoint{Batch: 1})
	multi.EndRun(context.Background(), nil, nil)
	gt.Value(t, rec.Report()).Nil()
}

type failingRepository struct {
	err error
}

func (r *failingRepository) Save(_ context.Context, _ *trace.Report) error {
	return r.err
}

func TestMultiHandlerFinishJoinsErrors(t *testing.T) {
	errA := errors.New("save a")
	errB := errors.New("save b")
	multi := trace.Multi(
		trace.New(trace.WithRepository(&failingRepository{err: errA})),
		trace.New(trace.WithRepository(&failingRepository{err: errB})),
	)

	ctx := multi.StartRun(context.Background(), &trace.RunInfo{Experiment: "circle"})
	multi.EndRun(ctx, &trace.Summary{Trials: 1}, nil)

	err := multi.Finish(ctx)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, errA))
	gt.True(t, errors.Is(err, errB))
}
