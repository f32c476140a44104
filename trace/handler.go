package trace

import "context"

// Handler is the interface for run report backends.
// Implementations receive lifecycle events while a runner executes trials
// and can record, export, or print them as needed.
type Handler interface {
	// StartRun is called once before the first trial.
	StartRun(ctx context.Context, info *RunInfo) context.Context
	// Checkpoint is called every log cadence with the running estimate.
	// Calls are serialized by the runner even when trials run in parallel.
	Checkpoint(ctx context.Context, cp *Checkpoint)
	// EndRun is called once after the last trial or on failure.
	EndRun(ctx context.Context, summary *Summary, err error)

	// Finish completes the report and performs any final operations.
	Finish(ctx context.Context) error
}
