package trialrun_test

import (
	"errors"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun"
)

func TestInterval(t *testing.T) {
	lower, upper, err := trialrun.Interval(50, 100, 0.95)
	gt.NoError(t, err)
	gt.True(t, math.Abs(lower-0.402002) < 1e-5)
	gt.True(t, math.Abs(upper-0.597998) < 1e-5)

	// A wider confidence level widens the interval.
	lower99, upper99, err := trialrun.Interval(50, 100, 0.99)
	gt.NoError(t, err)
	gt.True(t, lower99 < lower)
	gt.True(t, upper99 > upper)
}

func TestIntervalClamped(t *testing.T) {
	lower, upper, err := trialrun.Interval(0, 10, trialrun.DefaultConfidence)
	gt.NoError(t, err)
	gt.Equal(t, lower, 0.0)
	gt.Equal(t, upper, 0.0)

	lower, upper, err = trialrun.Interval(10, 10, trialrun.DefaultConfidence)
	gt.NoError(t, err)
	gt.Equal(t, lower, 1.0)
	gt.Equal(t, upper, 1.0)

	lower, upper, err = trialrun.Interval(1, 2, 0.999)
	gt.NoError(t, err)
	gt.Equal(t, lower, 0.0)
	gt.Equal(t, upper, 1.0)
}

func TestIntervalInvalid(t *testing.T) {
	testCases := map[string]struct {
		successes, trials int64
		level             float64
	}{
		"no trials":          {0, 0, 0.95},
		"negative successes": {-1, 10, 0.95},
		"too many successes": {11, 10, 0.95},
		"level zero":         {5, 10, 0},
		"level one":          {5, 10, 1},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, err := trialrun.Interval(tc.successes, tc.trials, tc.level)
			gt.True(t, errors.Is(err, trialrun.ErrInvalidArgument))
		})
	}
}

func TestResult(t *testing.T) {
	r := &trialrun.Result{Probability: 0.66, Expected: 2.0 / 3.0, Lower: 0.65, Upper: 0.67}
	gt.True(t, r.Within(0.01))
	gt.False(t, r.Within(0.001))
	gt.True(t, r.Covers())

	r.Upper = 0.666
	gt.False(t, r.Covers())
}
