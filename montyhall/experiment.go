package montyhall

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
)

// Experiment is the Monty Hall game as a trialrun.Experiment.
type Experiment struct {
	strategy Strategy
	policy   RevealPolicy
}

var (
	_ trialrun.Experiment = (*Experiment)(nil)
	_ trialrun.Labeler    = (*Experiment)(nil)
	_ trialrun.Validator  = (*Experiment)(nil)
)

// Option configures an Experiment.
type Option func(*Experiment)

// WithStrategy sets the guesser's strategy. Default is Switch.
func WithStrategy(s Strategy) Option {
	return func(x *Experiment) {
		x.strategy = s
	}
}

// WithRevealPolicy sets the host's tie-break. Default is RevealLowest.
func WithRevealPolicy(p RevealPolicy) Option {
	return func(x *Experiment) {
		x.policy = p
	}
}

// New creates a Monty Hall experiment.
func New(opts ...Option) *Experiment {
	x := &Experiment{
		strategy: Switch,
		policy:   RevealLowest,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Validate rejects strategies and reveal policies outside the declared constants.
func (x *Experiment) Validate() error {
	if x.strategy != Switch && x.strategy != Stay {
		return goerr.Wrap(trialrun.ErrInvalidArgument, "unknown strategy", goerr.V("strategy", int(x.strategy)))
	}
	if x.policy < RevealLowest || x.policy > RevealHighest {
		return goerr.Wrap(trialrun.ErrInvalidArgument, "unknown reveal policy", goerr.V("policy", int(x.policy)))
	}
	return nil
}

func (x *Experiment) Name() string {
	return "montyhall_" + x.strategy.String()
}

func (x *Experiment) Label() string {
	if x.strategy == Stay {
		return "winning by staying"
	}
	return "winning with switching"
}

// Expected returns 2/3 for Switch and 1/3 for Stay.
func (x *Experiment) Expected() float64 {
	if x.strategy == Stay {
		return 1.0 / 3.0
	}
	return 2.0 / 3.0
}

func (x *Experiment) Trial(src trialrun.Source) bool {
	g := Play(src, x.strategy, x.policy)
	return g.Won()
}

// Enumerate plays every (prize, choice) pair exactly once and counts wins.
// It is the exact counterpart of a run: wins/games is 2/3 for Switch and
// 1/3 for Stay, with no sampling error.
func Enumerate(strategy Strategy) (wins, games int) {
	for prize := range NumDoors {
		for choice := range NumDoors {
			g := newGame(prize, choice)
			g.Reveal(RevealLowest, nil)
			if strategy == Switch {
				g.Switch()
			}
			if g.Won() {
				wins++
			}
			games++
		}
	}
	return wins, games
}
