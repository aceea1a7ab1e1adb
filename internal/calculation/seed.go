package calculation

import (
	"math/rand/v2"
	"time"
)

// seedFunc returns a seed when none is configured (override for deterministic tests).
var seedFunc = func() uint64 { return uint64(time.Now().UnixNano()) }

// SetSeedFunc overrides the seed provider (use only in tests).
func SetSeedFunc(f func() uint64) { seedFunc = f }

// SeedStream hands every trial its own generator derived from one run seed.
// Generators never share state, so trials may run in any order or in
// parallel and still reproduce exactly.
type SeedStream struct {
	Seed uint64
}

// NewSeedStream returns a stream for seed; zero draws a fresh seed.
func NewSeedStream(seed uint64) SeedStream {
	if seed == 0 {
		seed = seedFunc()
	}
	return SeedStream{Seed: seed}
}

// Trial returns the generator for trial i.
func (s SeedStream) Trial(i int) *rand.Rand {
	return rand.New(rand.NewPCG(s.Seed, splitmix64(uint64(i))))
}

// splitmix64 scrambles consecutive trial indexes into well separated PCG
// stream keys.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
