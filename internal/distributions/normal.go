package distributions

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Dnorm is the normal probability density.
func Dnorm(x, mean, sd float64) float64 {
	if sd <= 0 {
		return math.NaN()
	}
	return distuv.Normal{Mu: mean, Sigma: sd}.Prob(x)
}

// Rnorm draws n values from N(mean, sd).
func Rnorm(n int, mean, sd float64, r *rand.Rand) []float64 {
	out := make([]float64, n)
	d := distuv.Normal{Mu: mean, Sigma: sd, Src: r}
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}
