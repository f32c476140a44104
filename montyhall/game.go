// Package montyhall simulates the Monty Hall game show problem.
//
// Three doors hide one prize. The guesser picks a door, the host opens
// another door that hides nothing, and the guesser either keeps the first
// pick or switches to the remaining closed door. Switching wins with
// probability 2/3.
package montyhall

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
)

// NumDoors is the number of doors in every game.
const NumDoors = 3

// Slot is what a door hides.
type Slot int

const (
	Empty Slot = iota
	Prize
)

// Doors is the door configuration of one game. Exactly one slot is Prize.
type Doors [NumDoors]Slot

// Game is the state of a single trial. It lives only for that trial.
type Game struct {
	Doors  Doors
	Prize  int
	Choice int
	// Opened is the door the host revealed, or -1 before Reveal.
	Opened int
	// Final is the guesser's final pick. It equals Choice until Switch.
	Final int
}

// NewGame places the prize and the guesser's initial choice.
func NewGame(prize, choice int) (Game, error) {
	if prize < 0 || prize >= NumDoors {
		return Game{}, goerr.Wrap(trialrun.ErrInvalidArgument, "prize door out of range", goerr.V("prize", prize))
	}
	if choice < 0 || choice >= NumDoors {
		return Game{}, goerr.Wrap(trialrun.ErrInvalidArgument, "choice door out of range", goerr.V("choice", choice))
	}
	return newGame(prize, choice), nil
}

func newGame(prize, choice int) Game {
	g := Game{
		Prize:  prize,
		Choice: choice,
		Opened: -1,
		Final:  choice,
	}
	g.Doors[prize] = Prize
	return g
}

// Eligible returns the doors the host may open: neither the prize nor the
// initial choice, in increasing order. There are two when the initial choice
// is the prize and one otherwise.
func (g *Game) Eligible() []int {
	doors := make([]int, 0, NumDoors-1)
	for i := range NumDoors {
		if i != g.Prize && i != g.Choice {
			doors = append(doors, i)
		}
	}
	return doors
}

// Reveal opens a door per policy and returns it. src is consulted only by
// RevealRandom and only when two doors are eligible.
func (g *Game) Reveal(policy RevealPolicy, src trialrun.Source) int {
	if g.Prize != g.Choice {
		// The only door that is neither.
		g.Opened = NumDoors - g.Prize - g.Choice
		return g.Opened
	}

	low, high := (g.Prize+1)%NumDoors, (g.Prize+2)%NumDoors
	if low > high {
		low, high = high, low
	}

	switch policy {
	case RevealHighest:
		g.Opened = high
	case RevealRandom:
		g.Opened = low
		if src.IntN(2) == 1 {
			g.Opened = high
		}
	default:
		g.Opened = low
	}
	return g.Opened
}

// Switch moves the final pick to the door that is neither the initial choice
// nor the opened one. It panics when called before Reveal.
func (g *Game) Switch() int {
	if g.Opened < 0 {
		panic("montyhall: switch before reveal")
	}
	g.Final = NumDoors - g.Choice - g.Opened
	return g.Final
}

// Won reports whether the final pick hides the prize.
func (g *Game) Won() bool {
	return g.Final == g.Prize
}

// Validate checks the invariants of a finished game.
func (g *Game) Validate() error {
	eb := goerr.NewBuilder(
		goerr.V("prize", g.Prize),
		goerr.V("choice", g.Choice),
		goerr.V("opened", g.Opened),
		goerr.V("final", g.Final),
	)

	prizes := 0
	for i, s := range g.Doors {
		if s == Prize {
			prizes++
			if i != g.Prize {
				return eb.New("prize slot does not match prize door")
			}
		}
	}
	if prizes != 1 {
		return eb.New("doors must hold exactly one prize", goerr.V("prizes", prizes))
	}
	if g.Opened < 0 || g.Opened >= NumDoors {
		return eb.New("no door was opened")
	}
	if g.Opened == g.Prize {
		return eb.New("host opened the prize door")
	}
	if g.Opened == g.Choice {
		return eb.New("host opened the chosen door")
	}
	if g.Final == g.Opened {
		return eb.New("final pick is the opened door")
	}
	return nil
}

// Play runs one game: uniform prize, independent uniform initial choice,
// reveal, then the strategy.
func Play(src trialrun.Source, strategy Strategy, policy RevealPolicy) Game {
	g := newGame(src.IntN(NumDoors), src.IntN(NumDoors))
	g.Reveal(policy, src)
	if strategy == Switch {
		g.Switch()
	}
	return g
}
