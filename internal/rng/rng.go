// Package rng provides the seeded random source used for block generation.
package rng

import "math/rand/v2"

// Source is a deterministic PCG random source. It is not safe for concurrent use.
type Source struct {
	seed int64
	r    *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed int64) *Source {
	s := &Source{}
	s.Seed(seed)
	return s
}

// Seed resets the source so it replays the sequence for seed.
func (s *Source) Seed(seed int64) {
	s.seed = seed
	s.r = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9E3779B97F4A7C15))
}

// CurrentSeed returns the seed the source was last reset with.
func (s *Source) CurrentSeed() int64 { return s.seed }

// IntRange returns a uniform integer in [lo, hi]. Reversed bounds are swapped.
func (s *Source) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.r.IntN(hi-lo+1)
}
