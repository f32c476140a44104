package trace

import (
	"time"
)

// RunStatus represents the final status of a run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusOK      RunStatus = "ok"
	RunStatusError   RunStatus = "error"
)

// Report represents the recorded history of a single trial run.
type Report struct {
	ReportID    string         `json:"report_id"`
	Run         RunInfo        `json:"run"`
	Checkpoints []*Checkpoint  `json:"checkpoints,omitempty"`
	Summary     *Summary       `json:"summary,omitempty"`
	Status      RunStatus      `json:"status"`
	Error       string         `json:"error,omitempty"`
	Metadata    ReportMetadata `json:"metadata"`
	StartedAt   time.Time      `json:"started_at"`
	EndedAt     time.Time      `json:"ended_at"`
	Duration    time.Duration  `json:"duration"`
}

// ReportMetadata holds metadata for a report.
type ReportMetadata struct {
	Command string            `json:"command,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
}
