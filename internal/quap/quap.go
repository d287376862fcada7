package quap

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/quap/internal/formula"
	"github.com/san-kum/quap/internal/optim"
	"github.com/san-kum/quap/internal/posterior"
)

// Data maps variable names to observations.
type Data = formula.Data

type Quap struct {
	model    *formula.Model
	eval     *posterior.Evaluator
	start    map[string]float64
	settings optim.Settings
	priors   bool
	strict   bool
	logger   *zap.Logger

	result *FitResult
}

// New parses and validates the model. Formula and data errors are returned
// here, before any numeric work.
func New(formulas []string, data Data, opts ...Option) (*Quap, error) {
	q := &Quap{
		settings: optim.DefaultSettings(),
		priors:   true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(q)
	}

	model, err := formula.Parse(formulas, data)
	if err != nil {
		return nil, err
	}
	q.model = model

	var unknown []string
	for name := range q.start {
		if _, ok := model.ParamIndex(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		if q.strict {
			return nil, fmt.Errorf("%w: unknown parameters %v", ErrInvalidStart, unknown)
		}
		q.logger.Debug("ignoring start values for unknown parameters", zap.Strings("names", unknown))
	}

	q.eval = posterior.New(model, posterior.WithPriors(q.priors))
	return q, nil
}

func (q *Quap) Model() *formula.Model { return q.model }

// Start returns a copy of the user supplied start values.
func (q *Quap) Start() map[string]float64 {
	out := make(map[string]float64, len(q.start))
	for k, v := range q.start {
		out[k] = v
	}
	return out
}

func (q *Quap) Parameters() []string { return q.model.Parameters() }

func (q *Quap) Estimated() bool { return q.result != nil }

// Estimate finds the mode and its covariance. It returns q so calls can be
// chained. Once a model is estimated further calls are no-ops.
func (q *Quap) Estimate(ctx context.Context) (*Quap, error) {
	if q.result != nil {
		return q, nil
	}

	params := q.model.Parameters()
	x0 := q.startValues()
	obj := q.eval.Objective()

	q.logger.Debug("estimating",
		zap.Strings("params", params),
		zap.Float64s("start", x0),
		zap.Bool("priors", q.priors),
	)

	if f0 := obj(x0); math.IsInf(f0, 0) || math.IsNaN(f0) {
		if q.strict {
			return q, fmt.Errorf("%w: objective is not finite at %v", ErrInvalidStart, x0)
		}
		q.logger.Warn("objective is not finite at start values", zap.Float64s("start", x0))
	}

	res, err := optim.Minimize(ctx, obj, x0, q.settings)
	if err != nil {
		return q, fmt.Errorf("quap: estimate: %w", err)
	}
	if !res.Converged {
		if q.strict {
			return q, fmt.Errorf("%w after %d iterations", ErrConvergence, res.Iterations)
		}
		q.logger.Warn("optimizer did not converge, using best point found",
			zap.Int("iterations", res.Iterations),
			zap.Float64("objective", res.F),
		)
	}

	cov, fallback := optim.Covariance(obj, res.X, q.settings)
	if fallback {
		q.logger.Warn("hessian could not be inverted, using diagonal covariance",
			zap.Float64("variance", q.settings.FallbackVariance),
		)
	}

	q.result = newFitResult(params, res, cov, fallback, q.eval.LogLik(res.X))
	q.logger.Debug("estimated",
		zap.Float64s("mode", res.X),
		zap.Int("iterations", res.Iterations),
		zap.Int("evaluations", res.Evaluations),
		zap.Bool("converged", res.Converged),
	)
	return q, nil
}

// Result returns the immutable fit.
func (q *Quap) Result() (*FitResult, error) {
	if q.result == nil {
		return nil, ErrNotEstimated
	}
	return q.result, nil
}

func (q *Quap) Coef() (map[string]float64, error) {
	if q.result == nil {
		return nil, ErrNotEstimated
	}
	return q.result.Coef(), nil
}

// Vcov returns a copy of the covariance matrix, rows in Parameters order.
func (q *Quap) Vcov() (*mat.SymDense, error) {
	if q.result == nil {
		return nil, ErrNotEstimated
	}
	return q.result.Vcov(), nil
}

func (q *Quap) SE() (map[string]float64, error) {
	if q.result == nil {
		return nil, ErrNotEstimated
	}
	return q.result.SE(), nil
}

func (q *Quap) LogLik() (float64, error) {
	if q.result == nil {
		return 0, ErrNotEstimated
	}
	return q.result.LogLik(), nil
}

func (q *Quap) NPar() (int, error) {
	if q.result == nil {
		return 0, ErrNotEstimated
	}
	return q.result.NPar(), nil
}

func (q *Quap) AIC() (float64, error) {
	if q.result == nil {
		return 0, ErrNotEstimated
	}
	return q.result.AIC(), nil
}

func (q *Quap) Summary() (string, error) {
	if q.result == nil {
		return "", ErrNotEstimated
	}
	return summarize(q.model, q.result, q.priors), nil
}

// Samples draws n joint samples from the approximate posterior.
func (q *Quap) Samples(n int, seed uint64) (map[string][]float64, error) {
	if q.result == nil {
		return nil, ErrNotEstimated
	}
	return q.result.Samples(n, seed), nil
}

// MarginalSamples draws each parameter independently, ignoring correlations.
func (q *Quap) MarginalSamples(n int, seed uint64) (map[string][]float64, error) {
	if q.result == nil {
		return nil, ErrNotEstimated
	}
	return q.result.MarginalSamples(n, seed), nil
}
