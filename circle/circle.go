// Package circle estimates pi by Monte Carlo: a uniform point in the unit
// square lands inside the quarter circle of radius 1 with probability pi/4.
package circle

import (
	"math"

	"github.com/m-mizutani/trialrun"
)

// Experiment is the quarter-circle hit test as a trialrun.Experiment.
type Experiment struct{}

var (
	_ trialrun.Experiment = Experiment{}
	_ trialrun.Labeler    = Experiment{}
)

func (Experiment) Name() string  { return "circle" }
func (Experiment) Label() string { return "landing inside the quarter circle" }

// Expected returns pi/4.
func (Experiment) Expected() float64 { return math.Pi / 4 }

// Trial draws x then y and succeeds when the point is inside the circle.
func (Experiment) Trial(src trialrun.Source) bool {
	return Inside(src.Float64(), src.Float64())
}

// Inside reports whether (x, y) lies within distance 1 of the origin.
func Inside(x, y float64) bool {
	return x*x+y*y <= 1
}

// EstimatePi converts a hit probability into an estimate of pi.
func EstimatePi(p float64) float64 {
	return 4 * p
}
