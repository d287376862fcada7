package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Hessian estimates the matrix of second derivatives of f at x by central
// differences with step h.
func Hessian(f func([]float64) float64, x []float64, h float64) *mat.SymDense {
	n := len(x)
	if n == 0 {
		return nil
	}
	hess := mat.NewSymDense(n, nil)
	fx := f(x)
	p := append([]float64(nil), x...)

	at := func(i int, di float64, j int, dj float64) float64 {
		p[i] += di
		p[j] += dj
		v := f(p)
		p[i], p[j] = x[i], x[j]
		return v
	}

	for i := 0; i < n; i++ {
		fp := at(i, h, i, 0)
		fm := at(i, -h, i, 0)
		hess.SetSym(i, i, (fp-2*fx+fm)/(h*h))

		for j := i + 1; j < n; j++ {
			fpp := at(i, h, j, h)
			fpm := at(i, h, j, -h)
			fmp := at(i, -h, j, h)
			fmm := at(i, -h, j, -h)
			hess.SetSym(i, j, (fpp-fpm-fmp+fmm)/(4*h*h))
		}
	}
	return hess
}

// Covariance inverts the Hessian of f at the mode x. When the Hessian holds
// non-finite entries or cannot be inverted, it returns a diagonal matrix with
// s.FallbackVariance on the diagonal and fallback set to true.
func Covariance(f func([]float64) float64, x []float64, s Settings) (cov *mat.SymDense, fallback bool) {
	n := len(x)
	if n == 0 {
		return nil, false
	}

	hess := Hessian(f, x, s.HessianStep)
	if !allFinite(hess) {
		return Diagonal(n, s.FallbackVariance), true
	}

	var inv mat.Dense
	if err := inv.Inverse(hess); err != nil {
		return Diagonal(n, s.FallbackVariance), true
	}

	cov = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, 0.5*(inv.At(i, j)+inv.At(j, i)))
		}
	}
	if !allFinite(cov) {
		return Diagonal(n, s.FallbackVariance), true
	}
	return cov, false
}

// Diagonal returns an n×n matrix with v on the diagonal.
func Diagonal(n int, v float64) *mat.SymDense {
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		d.SetSym(i, i, v)
	}
	return d
}

func allFinite(m mat.Symmetric) bool {
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
