// Package prng provides the engine's seeded, deterministic pseudo-random
// stream. Given the same seed, RNG.Float64 yields an identical sequence of
// values across runs and across processes on the same implementation.
package prng

import "github.com/cespare/xxhash/v2"

// RNG is a SplitMix64 generator keyed by a hashed string seed. SplitMix64
// is used because it is well-defined, has no warm-up period, and is cheap
// to reseed deterministically on every reset.
type RNG struct {
	seed  string
	state uint64
}

// New creates an RNG from a string seed.
func New(seed string) *RNG {
	r := &RNG{}
	r.Reset(seed)
	return r
}

// Reset returns the stream to its initial position for seed.
func (r *RNG) Reset(seed string) {
	r.seed = seed
	r.state = xxhash.Sum64String(seed)
}

// Seed returns the seed this generator was last reset to.
func (r *RNG) Seed() string {
	return r.seed
}

// next advances the SplitMix64 state and returns the next raw output.
func (r *RNG) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Float64 returns the next value in [0, 1).
func (r *RNG) Float64() float64 {
	// Use the top 53 bits for a uniformly distributed double in [0,1),
	// matching the precision of an IEEE-754 float64 mantissa.
	return float64(r.next()>>11) / (1 << 53)
}

// Int63 returns the next value in [0, 1<<63).
func (r *RNG) Int63() int64 {
	return int64(r.next() >> 1)
}

// IntN returns the next value in [0, n). Panics if n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		panic("prng: IntN called with n <= 0")
	}
	return int(r.next() % uint64(n))
}

// Range returns the next value in [min, max).
func (r *RNG) Range(min, max float64) float64 {
	return min + r.Float64()*(max-min)
}
