package rng

import (
	"fmt"

	"github.com/m-mizutani/trialrun"
)

// Sequence replays fixed draws, cycling when exhausted. It lets tests pin
// every random decision an experiment makes.
type Sequence struct {
	ints   []int
	floats []float64

	intDraws   int
	floatDraws int
}

var _ trialrun.Source = (*Sequence)(nil)

// NewSequence returns a Sequence that yields ints in order from IntN.
func NewSequence(ints ...int) *Sequence {
	return &Sequence{ints: ints}
}

// WithFloats sets the values yielded by Float64.
func (s *Sequence) WithFloats(floats ...float64) *Sequence {
	s.floats = floats
	return s
}

// IntN returns the next int. It panics when no ints are configured or the
// value is outside [0, n), since either means the test is wired wrong.
func (s *Sequence) IntN(n int) int {
	if len(s.ints) == 0 {
		panic("rng: sequence has no ints")
	}
	v := s.ints[s.intDraws%len(s.ints)]
	s.intDraws++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("rng: sequence value %d out of range [0, %d)", v, n))
	}
	return v
}

// Float64 returns the next float.
func (s *Sequence) Float64() float64 {
	if len(s.floats) == 0 {
		panic("rng: sequence has no floats")
	}
	v := s.floats[s.floatDraws%len(s.floats)]
	s.floatDraws++
	return v
}

// IntDraws returns how many times IntN has been called.
func (s *Sequence) IntDraws() int { return s.intDraws }

// FloatDraws returns how many times Float64 has been called.
func (s *Sequence) FloatDraws() int { return s.floatDraws }
