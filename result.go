package trialrun

import (
	"math"
	"time"

	"github.com/m-mizutani/trialrun/trace"
)

// Result is the outcome of a completed run.
type Result struct {
	Experiment  string
	Trials      int64
	Successes   int64
	Probability float64
	Expected    float64

	// Lower and Upper bound the confidence interval of Probability at the
	// runner's confidence level.
	Lower float64
	Upper float64
	Level float64

	Duration time.Duration
}

// Within reports whether the empirical probability is within tolerance of the expected one.
func (r *Result) Within(tolerance float64) bool {
	return math.Abs(r.Probability-r.Expected) <= tolerance
}

// Covers reports whether the confidence interval contains the expected probability.
func (r *Result) Covers() bool {
	return r.Lower <= r.Expected && r.Expected <= r.Upper
}

func (r *Result) summary() *trace.Summary {
	return &trace.Summary{
		Trials:      r.Trials,
		Successes:   r.Successes,
		Probability: r.Probability,
		Expected:    r.Expected,
		Lower:       r.Lower,
		Upper:       r.Upper,
		Level:       r.Level,
		Duration:    r.Duration,
	}
}
