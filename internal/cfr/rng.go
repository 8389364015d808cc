package cfr

import "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// NewRNG returns a *rand.Rand seeded deterministically from seed, built
// on the PCG generator. Every sampling-based kernel in this package
// draws exclusively from a *rand.Rand it is handed rather than a
// package-level source, so a Trainer configured with the same seed and
// the same Game factory always walks the same sequence of samples.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(mix(seed), mix(seed+goldenRatio64)))
}

// DrawCount wraps a *rand.Rand together with a count of draws made
// through it, so a checkpoint can record exactly how many values were
// consumed and a resumed run can fast-forward an identically-seeded
// generator back to the same position.
type DrawCount struct {
	rng   *rand.Rand
	draws uint64
}

// NewDrawCount wraps rng for draw counting.
func NewDrawCount(rng *rand.Rand) *DrawCount {
	return &DrawCount{rng: rng}
}

// Draws returns the number of values consumed through this wrapper.
func (d *DrawCount) Draws() uint64 {
	return d.draws
}

// Float64 returns a uniform float64 in [0, 1) and counts the draw.
func (d *DrawCount) Float64() float64 {
	d.draws++
	return d.rng.Float64()
}

// Uint64 returns a uniform uint64 and counts the draw. Trainer uses it
// to mint a per-table seed for each parallel table without those
// tables' own draws perturbing the master sequence.
func (d *DrawCount) Uint64() uint64 {
	d.draws++
	return d.rng.Uint64()
}

// IntN returns a uniform int in [0, n) and counts the draw.
func (d *DrawCount) IntN(n int) int {
	d.draws++
	return d.rng.IntN(n)
}

// Skip advances the wrapped generator by n draws of the same shape
// Float64 makes, discarding the results. A resumed Trainer uses this to
// put a freshly seeded generator back where a checkpointed one left
// off, since rand/v2's PCG carries no portable serializable state.
func (d *DrawCount) Skip(n uint64) {
	for i := uint64(0); i < n; i++ {
		d.rng.Float64()
	}
	d.draws += n
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
