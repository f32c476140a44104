package circle_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/trialrun"
	"github.com/m-mizutani/trialrun/circle"
	"github.com/m-mizutani/trialrun/rng"
)

func TestInside(t *testing.T) {
	gt.True(t, circle.Inside(0, 0))
	gt.True(t, circle.Inside(1, 0))
	gt.True(t, circle.Inside(0.6, 0.8))
	gt.False(t, circle.Inside(0.8, 0.8))
}

func TestTrialDrawOrder(t *testing.T) {
	src := rng.NewSequence().WithFloats(0.9, 0.1, 0.9, 0.9)
	gt.True(t, circle.Experiment{}.Trial(src))
	gt.False(t, circle.Experiment{}.Trial(src))
	gt.Equal(t, src.FloatDraws(), 4)
}

func TestEstimatePi(t *testing.T) {
	gt.Equal(t, circle.EstimatePi(circle.Experiment{}.Expected()), math.Pi)

	result, err := trialrun.New(circle.Experiment{}, trialrun.WithSeed(8)).
		Run(context.Background(), 1_000_000, 250_000)
	gt.NoError(t, err)
	gt.True(t, math.Abs(circle.EstimatePi(result.Probability)-math.Pi) < 0.01)
	gt.True(t, result.Covers() || result.Within(0.002))
}
