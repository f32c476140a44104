package trialrun

import "math/rand/v2"

// Source supplies the uniform draws an experiment consumes.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Float64 returns a uniform float in [0.0, 1.0).
	Float64() float64
}

// NewSource returns a PCG-backed source. Sources with the same seed and
// different streams produce independent sequences.
func NewSource(seed, stream uint64) Source {
	return rand.New(rand.NewPCG(seed, stream))
}

func newRandomSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
