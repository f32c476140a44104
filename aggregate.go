package trialrun

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun/trace"
	"golang.org/x/sync/errgroup"
)

// aggregate owns the run-wide tally. Workers fold whole batches into it and
// checkpoints are emitted while holding mu, so handlers see them one at a time
// and in increasing trial order.
type aggregate struct {
	mu       sync.Mutex
	tally    Tally
	batches  int64
	cadence  int64
	expected float64
	started  time.Time
	handler  trace.Handler
}

func newAggregate(h trace.Handler, cadence int64, expected float64) *aggregate {
	return &aggregate{
		cadence:  cadence,
		expected: expected,
		started:  time.Now(),
		handler:  h,
	}
}

// merge folds one batch into the tally. A full batch (cadence trials)
// produces a checkpoint; the trailing partial batch does not.
func (a *aggregate) merge(ctx context.Context, part Tally) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tally.Merge(part)
	if part.Trials() < a.cadence {
		return
	}
	a.batches++

	if a.handler == nil {
		return
	}
	a.handler.Checkpoint(ctx, &trace.Checkpoint{
		Batch:       a.batches,
		Trials:      a.tally.Trials(),
		Successes:   a.tally.Successes(),
		Probability: a.tally.Probability(),
		Expected:    a.expected,
		Elapsed:     time.Since(a.started),
	})
}

func (a *aggregate) snapshot() Tally {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tally
}

// runBatch runs n trials against src.
func runBatch(exp Experiment, src Source, n int64) Tally {
	var t Tally
	for range n {
		t.Add(exp.Trial(src))
	}
	return t
}

func (x *Runner) runSerial(ctx context.Context, agg *aggregate, total, cadence int64) error {
	src := x.newSource(0)

	for done := int64(0); done < total; {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "run canceled", goerr.V("trials", done))
		}
		n := min(cadence, total-done)
		agg.merge(ctx, runBatch(x.exp, src, n))
		done += n
	}
	return nil
}

// runParallel splits the run into batches of cadence trials that workers
// claim in order. Each worker draws from its own source and reduces its
// batches into agg.
func (x *Runner) runParallel(ctx context.Context, agg *aggregate, total, cadence int64) error {
	numBatches := (total + cadence - 1) / cadence
	var next atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	for w := range x.workers {
		src := x.newSource(w)
		g.Go(func() error {
			for {
				b := next.Add(1) - 1
				if b >= numBatches {
					return nil
				}
				if err := gCtx.Err(); err != nil {
					return goerr.Wrap(err, "run canceled", goerr.V("worker", w), goerr.V("batch", b))
				}
				n := min(cadence, total-b*cadence)
				agg.merge(ctx, runBatch(x.exp, src, n))
			}
		})
	}

	return g.Wait()
}
