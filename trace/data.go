package trace

import "time"

// RunInfo describes a run before its first trial.
type RunInfo struct {
	Experiment  string  `json:"experiment"`
	Label       string  `json:"label,omitempty"`
	TotalTrials int64   `json:"total_trials"`
	LogCadence  int64   `json:"log_cadence"`
	Workers     int     `json:"workers"`
	Expected    float64 `json:"expected"`
	Seed        *uint64 `json:"seed,omitempty"`
}

// Checkpoint is the running estimate reported every log cadence.
// Trials always counts the trials processed so far including the latest one.
type Checkpoint struct {
	Batch       int64         `json:"batch"`
	Trials      int64         `json:"trials"`
	Successes   int64         `json:"successes"`
	Probability float64       `json:"probability"`
	Expected    float64       `json:"expected"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Summary holds the final aggregate of a run.
// It is nil-safe to pass to EndRun when a run fails before producing one.
// Lower and Upper bound the confidence interval at Level, e.g. 0.95.
type Summary struct {
	Trials      int64         `json:"trials"`
	Successes   int64         `json:"successes"`
	Probability float64       `json:"probability"`
	Expected    float64       `json:"expected"`
	Lower       float64       `json:"lower"`
	Upper       float64       `json:"upper"`
	Level       float64       `json:"level,omitempty"`
	Duration    time.Duration `json:"duration"`
}
