// Package quap fits models by quadratic (Laplace) approximation.
//
// A [Quap] is built from formulas and data, validated immediately, and then
// estimated once:
//
//	q, err := quap.New([]string{
//	    "weight ~ normal(mu, sigma)",
//	    "mu ~ a + b*height",
//	    "a ~ normal(0, 50)",
//	    "b ~ normal(0, 10)",
//	    "sigma ~ exponential(1)",
//	}, data)
//	if err != nil { ... }
//	if _, err := q.Estimate(ctx); err != nil { ... }
//	coef, _ := q.Coef()
//
// Estimate finds the posterior mode with a Nelder-Mead search, inverts the
// finite-difference Hessian there, and stores the result as an immutable
// [FitResult]. Every accessor returns [ErrNotEstimated] until then.
//
// # Samples
//
// [Quap.Samples] draws jointly from the multivariate normal approximation
// using a Cholesky factor of the covariance. Each call builds its own
// generator from the given seed, so equal seeds give equal draws and no
// global random state is touched.
//
// # Thread Safety
//
// A Quap must not be estimated from several goroutines at once. Once
// estimated, its accessors and the FitResult are read-only.
package quap
