// Package rng provides deterministic trialrun.Source implementations.
package rng

import (
	"math"
	"math/bits"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/trialrun"
)

// LCG is a linear congruential generator: x' = (a*x + c) mod m.
// It is a teaching generator; its low bits are poorly distributed and
// IntN reduces by modulo, so use trialrun.NewSource for real runs.
type LCG struct {
	x, a, c, m uint64
}

var _ trialrun.Source = (*LCG)(nil)

// NewLCG validates the parameters: m > 0, a and c in (0, m), seed in [0, m).
func NewLCG(seed, multiplier, increment, modulus uint64) (*LCG, error) {
	eb := goerr.NewBuilder(
		goerr.V("seed", seed),
		goerr.V("multiplier", multiplier),
		goerr.V("increment", increment),
		goerr.V("modulus", modulus),
	)

	if modulus == 0 {
		return nil, eb.Wrap(trialrun.ErrInvalidArgument, "modulus must be positive")
	}
	if multiplier == 0 || multiplier >= modulus {
		return nil, eb.Wrap(trialrun.ErrInvalidArgument, "multiplier must be within (0, m)")
	}
	if increment == 0 || increment >= modulus {
		return nil, eb.Wrap(trialrun.ErrInvalidArgument, "increment must be within (0, m)")
	}
	if seed >= modulus {
		return nil, eb.Wrap(trialrun.ErrInvalidArgument, "seed must be within [0, m)")
	}

	return &LCG{x: seed, a: multiplier, c: increment, m: modulus}, nil
}

// Next advances the generator and returns the new state in [0, m).
func (g *LCG) Next() uint64 {
	hi, lo := bits.Mul64(g.a, g.x)
	lo, carry := bits.Add64(lo, g.c, 0)
	g.x = bits.Rem64(hi+carry, lo, g.m)
	return g.x
}

// IntN returns Next() mod n. It panics if n <= 0.
func (g *LCG) IntN(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to IntN")
	}
	return int(g.Next() % uint64(n))
}

// Float64 returns Next()/m. Above 2^53 the quotient can round up to 1, so it
// is capped at the largest float64 below 1.
func (g *LCG) Float64() float64 {
	return min(float64(g.Next())/float64(g.m), math.Nextafter(1, 0))
}
