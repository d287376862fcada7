package distributions

import "math/rand/v2"

// NewRand returns a generator whose stream is fully determined by seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
