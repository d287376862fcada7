package distributions

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Dbinom returns the probability of k successes in size trials.
func Dbinom(k, size int, p float64) float64 {
	if k < 0 || k > size || p < 0 || p > 1 {
		return 0
	}
	// distuv yields NaN at the boundary where 0*log(0) appears.
	switch p {
	case 0:
		if k == 0 {
			return 1
		}
		return 0
	case 1:
		if k == size {
			return 1
		}
		return 0
	}
	return distuv.Binomial{N: float64(size), P: p}.Prob(float64(k))
}

// Likelihood is the binomial likelihood of w successes and l failures.
func Likelihood(w, l int, p float64) float64 {
	return Dbinom(w, w+l, p)
}

// Rbinom draws n binomial counts from r.
func Rbinom(n, size int, p float64, r *rand.Rand) []int {
	out := make([]int, n)
	if p <= 0 || size <= 0 {
		return out
	}
	if p >= 1 {
		for i := range out {
			out[i] = size
		}
		return out
	}
	b := distuv.Binomial{N: float64(size), P: p, Src: r}
	for i := range out {
		out[i] = int(math.Round(b.Rand()))
	}
	return out
}
