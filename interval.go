package trialrun

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultConfidence is the confidence level of Result.Lower and Result.Upper.
const DefaultConfidence = 0.95

// Interval returns the normal-approximation (Wald) confidence interval of a
// success probability estimated from successes out of trials, clamped to [0, 1].
func Interval(successes, trials int64, level float64) (lower, upper float64, err error) {
	if trials < 1 {
		return 0, 0, invalidArgument("trials must be positive", goerr.V("trials", trials))
	}
	if successes < 0 || successes > trials {
		return 0, 0, invalidArgument("successes must be within [0, trials]",
			goerr.V("successes", successes), goerr.V("trials", trials))
	}
	if !(level > 0 && level < 1) {
		return 0, 0, invalidArgument("confidence level must be within (0, 1)", goerr.V("level", level))
	}

	p := float64(successes) / float64(trials)
	z := stats.StdNormal.InvCDF(1 - (1-level)/2)
	margin := z * math.Sqrt(p*(1-p)/float64(trials))

	return math.Max(0, p-margin), math.Min(1, p+margin), nil
}
