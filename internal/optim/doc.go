// Package optim finds the mode of a model and the curvature around it.
//
//   - [NelderMead]: derivative-free simplex minimizer
//   - [BFGS]: quasi-Newton search from gonum/optimize, for smooth objectives
//   - [Hessian]: central finite-difference Hessian
//   - [Covariance]: inverse Hessian with a diagonal fallback
//
// Objectives are plain func([]float64) float64 values to be minimized; NaN
// results are treated as +Inf so infeasible points are never accepted.
package optim
