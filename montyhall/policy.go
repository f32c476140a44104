package montyhall

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
)

// RevealPolicy decides which door the host opens when the initial choice is
// the prize and two empty doors are eligible. It never changes the outcome:
// switching away from the prize loses whichever empty door was opened.
type RevealPolicy int

const (
	// RevealLowest opens the lower-numbered eligible door.
	RevealLowest RevealPolicy = iota
	// RevealRandom opens one of the eligible doors uniformly at random,
	// consuming one extra draw from the source.
	RevealRandom
	// RevealHighest opens the higher-numbered eligible door.
	RevealHighest
)

// String returns the string representation of the reveal policy.
func (x RevealPolicy) String() string {
	switch x {
	case RevealLowest:
		return "lowest"
	case RevealRandom:
		return "random"
	case RevealHighest:
		return "highest"
	}
	return "unknown"
}

// ParseRevealPolicy parses "lowest", "random" or "highest".
func ParseRevealPolicy(s string) (RevealPolicy, error) {
	switch s {
	case "lowest", "":
		return RevealLowest, nil
	case "random":
		return RevealRandom, nil
	case "highest":
		return RevealHighest, nil
	}
	return 0, goerr.Wrap(trialrun.ErrInvalidArgument, "unknown reveal policy", goerr.V("policy", s))
}

// Strategy is what the guesser does after the reveal.
type Strategy int

const (
	// Switch always abandons the initial choice for the remaining closed door.
	Switch Strategy = iota
	// Stay always keeps the initial choice.
	Stay
)

// String returns the string representation of the strategy.
func (x Strategy) String() string {
	switch x {
	case Switch:
		return "switch"
	case Stay:
		return "stay"
	}
	return "unknown"
}

// ParseStrategy parses "switch" or "stay".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "switch", "":
		return Switch, nil
	case "stay":
		return Stay, nil
	}
	return 0, goerr.Wrap(trialrun.ErrInvalidArgument, "unknown strategy", goerr.V("strategy", s))
}
