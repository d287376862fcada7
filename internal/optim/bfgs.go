package optim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// Method selects the search algorithm used by Minimize.
type Method string

const (
	MethodNelderMead Method = "nelder-mead"
	MethodBFGS       Method = "bfgs"
)

// Minimize runs the search selected by s.Method. An empty method means
// Nelder-Mead.
func Minimize(ctx context.Context, f func([]float64) float64, x0 []float64, s Settings) (*Result, error) {
	switch s.Method {
	case "", MethodNelderMead:
		return NelderMead(ctx, f, x0, s)
	case MethodBFGS:
		return BFGS(ctx, f, x0, s)
	}
	return nil, fmt.Errorf("optim: unknown method %q", s.Method)
}

// BFGS minimizes f with gonum's quasi-Newton search, using central
// differences for the gradient. Like NelderMead, hitting the iteration
// limit or a failed line search is reported through Converged, and only
// cancellation of ctx is an error.
func BFGS(ctx context.Context, f func([]float64) float64, x0 []float64, s Settings) (*Result, error) {
	obj := &counted{fn: f}
	if len(x0) == 0 {
		return &Result{X: []float64{}, F: obj.eval(x0), Evaluations: obj.evals, Converged: true}, nil
	}
	if err := ctx.Err(); err != nil {
		return &Result{X: append([]float64(nil), x0...), F: obj.eval(x0), Evaluations: obj.evals}, err
	}

	grad := &fd.Settings{Formula: fd.Central}
	p := optimize.Problem{
		Func: obj.eval,
		Grad: func(g, x []float64) {
			fd.Gradient(g, obj.eval, x, grad)
		},
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations: s.MaxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   s.Tolerance,
			Iterations: 10,
		},
	}

	opt, _ := optimize.Minimize(p, x0, settings, &optimize.BFGS{})
	err := ctx.Err()

	res := &Result{Evaluations: obj.evals}
	if opt == nil {
		res.X = append([]float64(nil), x0...)
		res.F = obj.eval(x0)
		return res, err
	}
	res.X = append([]float64(nil), opt.X...)
	res.F = opt.F
	if math.IsNaN(res.F) {
		res.F = math.Inf(1)
	}
	res.Iterations = opt.Stats.MajorIterations
	res.Converged = err == nil && opt.Status.Err() == nil &&
		opt.Status != optimize.IterationLimit &&
		opt.Status != optimize.FunctionEvaluationLimit
	return res, err
}
