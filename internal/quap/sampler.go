package quap

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/quap/internal/distributions"
)

// Samples draws n joint samples mode + L*z with L the Cholesky factor of the
// covariance. A covariance that is not positive definite falls back to
// independent marginal draws.
func (r *FitResult) Samples(n int, seed uint64) map[string][]float64 {
	rng := distributions.NewRand(seed)
	k := len(r.params)
	if k == 0 || n <= 0 {
		return r.empty(n)
	}

	var chol mat.Cholesky
	if !chol.Factorize(r.cov) {
		return r.marginal(n, rng)
	}
	var l mat.TriDense
	chol.LTo(&l)

	out := r.empty(n)
	cols := make([][]float64, k)
	for i, p := range r.params {
		cols[i] = out[p]
	}
	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	z := make([]float64, k)
	for s := 0; s < n; s++ {
		for i := range z {
			z[i] = unit.Rand()
		}
		for i := 0; i < k; i++ {
			v := r.mode[i]
			for j := 0; j <= i; j++ {
				v += l.At(i, j) * z[j]
			}
			cols[i][s] = v
		}
	}
	return out
}

// MarginalSamples draws each parameter from its own normal marginal.
func (r *FitResult) MarginalSamples(n int, seed uint64) map[string][]float64 {
	return r.marginal(n, distributions.NewRand(seed))
}

func (r *FitResult) marginal(n int, rng *rand.Rand) map[string][]float64 {
	out := r.empty(n)
	if n <= 0 {
		return out
	}
	for i, p := range r.params {
		copy(out[p], distributions.Rnorm(n, r.mode[i], r.sd(i), rng))
	}
	return out
}

func (r *FitResult) empty(n int) map[string][]float64 {
	if n < 0 {
		n = 0
	}
	out := make(map[string][]float64, len(r.params))
	for _, p := range r.params {
		out[p] = make([]float64, n)
	}
	return out
}
