// Package posterior evaluates the log-density of a parsed model at a point in
// parameter space.
package posterior

import (
	"math"

	"github.com/san-kum/quap/internal/formula"
)

type term struct {
	f   formula.Formula
	obs []float64
	// prior terms index the parameter they constrain
	param int
}

// Evaluator computes log-likelihood, log-prior and log-posterior for a Model.
// It is read-only after construction and safe for concurrent use.
type Evaluator struct {
	model       *formula.Model
	likelihoods []term
	priors      []term
	withPriors  bool
}

type Option func(*Evaluator)

// WithPriors controls whether prior log-densities enter the posterior. With
// priors disabled the mode is the maximum-likelihood estimate.
func WithPriors(enabled bool) Option {
	return func(e *Evaluator) { e.withPriors = enabled }
}

func New(model *formula.Model, opts ...Option) *Evaluator {
	e := &Evaluator{model: model, withPriors: true}
	for _, opt := range opts {
		opt(e)
	}

	for _, f := range model.Likelihoods() {
		obs, _ := model.Column(f.LHS)
		e.likelihoods = append(e.likelihoods, term{f: f, obs: obs, param: -1})
	}
	for _, f := range model.Priors() {
		idx, _ := model.ParamIndex(f.LHS)
		e.priors = append(e.priors, term{f: f, param: idx})
	}
	return e
}

func (e *Evaluator) Model() *formula.Model { return e.model }

func (e *Evaluator) PriorsEnabled() bool { return e.withPriors }

// LogLik sums the per-observation log-density of every likelihood formula.
func (e *Evaluator) LogLik(theta []float64) float64 {
	total := 0.0
	args := make([]float64, 0, 2)
	for _, t := range e.likelihoods {
		for row, x := range t.obs {
			args = args[:0]
			for _, a := range t.f.Args {
				args = append(args, e.model.Eval(a, theta, row))
			}
			total += t.f.Family.LogDensity(x, args)
			if math.IsInf(total, -1) {
				return total
			}
		}
	}
	return finite(total)
}

// LogPrior sums prior log-densities regardless of whether priors are enabled.
func (e *Evaluator) LogPrior(theta []float64) float64 {
	total := 0.0
	args := make([]float64, 0, 2)
	for _, t := range e.priors {
		args = args[:0]
		for _, a := range t.f.Args {
			args = append(args, e.model.Eval(a, theta, 0))
		}
		total += t.f.Family.LogDensity(theta[t.param], args)
	}
	return finite(total)
}

// LogPosterior is the unnormalized log-posterior; priors contribute only when
// enabled.
func (e *Evaluator) LogPosterior(theta []float64) float64 {
	ll := e.LogLik(theta)
	if !e.withPriors || math.IsInf(ll, -1) {
		return ll
	}
	return finite(ll + e.LogPrior(theta))
}

// Objective returns the negative log-posterior, the function minimized by the
// optimizer.
func (e *Evaluator) Objective() func([]float64) float64 {
	return func(theta []float64) float64 {
		return -e.LogPosterior(theta)
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}
