package quap

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/quap/internal/optim"
)

// FitResult is the outcome of an estimation. It is never modified after
// construction and every accessor returns a copy.
type FitResult struct {
	params      []string
	index       map[string]int
	mode        []float64
	cov         *mat.SymDense
	logLik      float64
	logPost     float64
	iterations  int
	evaluations int
	converged   bool
	fallback    bool
}

func newFitResult(params []string, res *optim.Result, cov *mat.SymDense, fallback bool, logLik float64) *FitResult {
	r := &FitResult{
		params:      append([]string(nil), params...),
		index:       make(map[string]int, len(params)),
		mode:        append([]float64(nil), res.X...),
		cov:         cov,
		logLik:      logLik,
		logPost:     -res.F,
		iterations:  res.Iterations,
		evaluations: res.Evaluations,
		converged:   res.Converged,
		fallback:    fallback,
	}
	for i, p := range r.params {
		r.index[p] = i
	}
	return r
}

func (r *FitResult) Params() []string { return append([]string(nil), r.params...) }

// Mode returns the estimated mode in Params order.
func (r *FitResult) Mode() []float64 { return append([]float64(nil), r.mode...) }

func (r *FitResult) Coef() map[string]float64 {
	out := make(map[string]float64, len(r.params))
	for i, p := range r.params {
		out[p] = r.mode[i]
	}
	return out
}

func (r *FitResult) Value(name string) (float64, bool) {
	i, ok := r.index[name]
	if !ok {
		return 0, false
	}
	return r.mode[i], true
}

// Vcov returns a copy of the covariance matrix, or nil for a model without
// parameters.
func (r *FitResult) Vcov() *mat.SymDense {
	if r.cov == nil {
		return nil
	}
	n := r.cov.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(r.cov)
	return out
}

// SE returns the square roots of the covariance diagonal. A negative
// variance yields NaN.
func (r *FitResult) SE() map[string]float64 {
	out := make(map[string]float64, len(r.params))
	for i, p := range r.params {
		out[p] = math.Sqrt(r.cov.At(i, i))
	}
	return out
}

func (r *FitResult) sd(i int) float64 {
	v := r.cov.At(i, i)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Sqrt(v)
}

// LogLik is the data log-likelihood at the mode, priors excluded.
func (r *FitResult) LogLik() float64 { return r.logLik }

// LogPosterior is the objective value at the mode, negated.
func (r *FitResult) LogPosterior() float64 { return r.logPost }

func (r *FitResult) NPar() int { return len(r.params) }

func (r *FitResult) AIC() float64 { return -2*r.logLik + 2*float64(r.NPar()) }

func (r *FitResult) Iterations() int  { return r.iterations }
func (r *FitResult) Evaluations() int { return r.evaluations }
func (r *FitResult) Converged() bool  { return r.converged }

// CovarianceFallback reports whether the Hessian could not be inverted and
// a diagonal covariance was used instead.
func (r *FitResult) CovarianceFallback() bool { return r.fallback }
