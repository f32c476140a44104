package trace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option is a functional option for configuring a Recorder.
type Option func(*Recorder)

// WithRepository sets the repository for persisting reports.
func WithRepository(repo Repository) Option {
	return func(r *Recorder) {
		r.repo = repo
	}
}

// WithMetadata sets the metadata for the report.
func WithMetadata(meta ReportMetadata) Option {
	return func(r *Recorder) {
		r.metadata = meta
	}
}

// WithReportID sets a custom report ID.
// If not set or set to an empty string, a UUID v7 is generated automatically.
func WithReportID(id string) Option {
	return func(r *Recorder) {
		r.reportID = id
	}
}

// Recorder collects run data into an in-memory Report structure.
// It implements the Handler interface and provides access to the collected Report via Report().
type Recorder struct {
	report   *Report
	mu       sync.Mutex
	repo     Repository
	metadata ReportMetadata
	reportID string
}

// New creates a new Recorder with the given options.
func New(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// context key types
type handlerKey struct{}
type currentReportKey struct{}

// WithHandler stores the Handler in the context.
func WithHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey{}, h)
}

// HandlerFrom retrieves the Handler from the context. Returns nil if not set.
func HandlerFrom(ctx context.Context) Handler {
	h, _ := ctx.Value(handlerKey{}).(Handler)
	return h
}

func withCurrentReport(ctx context.Context, report *Report) context.Context {
	return context.WithValue(ctx, currentReportKey{}, report)
}

func currentReportFrom(ctx context.Context) *Report {
	r, _ := ctx.Value(currentReportKey{}).(*Report)
	return r
}

// StartRun starts a new report. A Recorder reused for another run replaces the previous report.
func (r *Recorder) StartRun(ctx context.Context, info *RunInfo) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	reportID := r.reportID
	if reportID == "" {
		reportID = uuid.Must(uuid.NewV7()).String()
	}

	report := &Report{
		ReportID:  reportID,
		Status:    RunStatusRunning,
		Metadata:  r.metadata,
		StartedAt: time.Now(),
	}
	if info != nil {
		report.Run = *info
	}

	r.report = report
	return withCurrentReport(ctx, report)
}

// Checkpoint appends a copy of cp to the current report.
func (r *Recorder) Checkpoint(ctx context.Context, cp *Checkpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := currentReportFrom(ctx)
	if report == nil || cp == nil {
		return
	}

	c := *cp
	report.Checkpoints = append(report.Checkpoints, &c)
}

// EndRun closes the current report with the final summary.
func (r *Recorder) EndRun(ctx context.Context, summary *Summary, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := currentReportFrom(ctx)
	if report == nil {
		return
	}

	now := time.Now()
	report.EndedAt = now
	report.Duration = now.Sub(report.StartedAt)
	report.Status = RunStatusOK

	if summary != nil {
		s := *summary
		report.Summary = &s
	}

	if err != nil {
		report.Status = RunStatusError
		report.Error = err.Error()
	}
}

// Finish persists the report to the Repository.
func (r *Recorder) Finish(ctx context.Context) error {
	r.mu.Lock()
	report := r.report
	repo := r.repo
	r.mu.Unlock()

	if report == nil || repo == nil {
		return nil
	}

	if err := repo.Save(ctx, report); err != nil {
		return err
	}

	return nil
}

// Report returns the current report. Returns nil if no run has started.
func (r *Recorder) Report() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}
