package optim

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Result is the outcome of a minimization.
type Result struct {
	X           []float64
	F           float64
	Iterations  int
	Evaluations int
	Converged   bool
}

type vertex struct {
	x []float64
	f float64
}

type counted struct {
	fn    func([]float64) float64
	evals int
}

func (c *counted) eval(x []float64) float64 {
	c.evals++
	v := c.fn(x)
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// NelderMead minimizes f starting from x0. Running out of iterations is not
// an error: the best vertex is returned with Converged set to false. The only
// error is cancellation of ctx, checked between iterations.
func NelderMead(ctx context.Context, f func([]float64) float64, x0 []float64, s Settings) (*Result, error) {
	obj := &counted{fn: f}
	n := len(x0)

	simplex := initialSimplex(x0, s)
	for i := range simplex {
		simplex[i].f = obj.eval(simplex[i].x)
	}

	res := &Result{}
	centroid := make([]float64, n)
	dir := make([]float64, n)

	for iter := 0; ; iter++ {
		select {
		case <-ctx.Done():
			res.fill(simplex, obj)
			return res, ctx.Err()
		default:
		}

		sort.SliceStable(simplex, func(i, j int) bool { return simplex[i].f < simplex[j].f })
		res.Iterations = iter

		best, worst := simplex[0], simplex[n]
		if n == 0 || worst.f-best.f < s.Tolerance {
			res.Converged = true
			break
		}
		if iter >= s.MaxIter {
			break
		}

		for j := range centroid {
			centroid[j] = 0
		}
		for _, v := range simplex[:n] {
			floats.Add(centroid, v.x)
		}
		floats.Scale(1/float64(n), centroid)

		// xr = c + alpha*(c - xw)
		floats.SubTo(dir, centroid, worst.x)
		xr := floats.AddScaledTo(make([]float64, n), centroid, s.Alpha, dir)
		fr := obj.eval(xr)

		switch {
		case fr < best.f:
			floats.SubTo(dir, xr, centroid)
			xe := floats.AddScaledTo(make([]float64, n), centroid, s.Gamma, dir)
			fe := obj.eval(xe)
			if fe < fr {
				simplex[n] = vertex{x: xe, f: fe}
			} else {
				simplex[n] = vertex{x: xr, f: fr}
			}

		case fr < simplex[n-1].f:
			simplex[n] = vertex{x: xr, f: fr}

		case fr < worst.f:
			// outside contraction
			floats.SubTo(dir, xr, centroid)
			xc := floats.AddScaledTo(make([]float64, n), centroid, s.Rho, dir)
			fc := obj.eval(xc)
			if fc <= fr {
				simplex[n] = vertex{x: xc, f: fc}
			} else {
				shrink(simplex, s.Sigma, obj)
			}

		default:
			// inside contraction
			floats.SubTo(dir, worst.x, centroid)
			xc := floats.AddScaledTo(make([]float64, n), centroid, s.Rho, dir)
			fc := obj.eval(xc)
			if fc < worst.f {
				simplex[n] = vertex{x: xc, f: fc}
			} else {
				shrink(simplex, s.Sigma, obj)
			}
		}
	}

	res.fill(simplex, obj)
	return res, nil
}

func (r *Result) fill(simplex []vertex, obj *counted) {
	best := simplex[0]
	for _, v := range simplex[1:] {
		if v.f < best.f {
			best = v
		}
	}
	r.X = append([]float64(nil), best.x...)
	r.F = best.f
	r.Evaluations = obj.evals
}

func initialSimplex(x0 []float64, s Settings) []vertex {
	n := len(x0)
	simplex := make([]vertex, n+1)
	simplex[0] = vertex{x: append([]float64(nil), x0...)}
	for i := 0; i < n; i++ {
		x := append([]float64(nil), x0...)
		if x[i] != 0 {
			x[i] += s.RelStep * x[i]
		} else {
			x[i] = s.ZeroStep
		}
		simplex[i+1] = vertex{x: x}
	}
	return simplex
}

// shrink pulls every vertex halfway (by sigma) toward the best one.
func shrink(simplex []vertex, sigma float64, obj *counted) {
	best := simplex[0].x
	for i := 1; i < len(simplex); i++ {
		x := simplex[i].x
		for j := range x {
			x[j] = best[j] + sigma*(x[j]-best[j])
		}
		simplex[i].f = obj.eval(x)
	}
}
