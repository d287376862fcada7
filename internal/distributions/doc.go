// Package distributions provides the probability families understood by the
// formula language, plus R-style density and sampling helpers.
//
// The package defines:
//
//   - [Family]: a named distribution with fixed arity and a log-density
//   - [Registry]: keyword lookup for families (normal, exponential, uniform,
//     gamma, beta, binomial, poisson)
//   - [Dbinom], [Rbinom], [Dnorm], [Rnorm]: helpers mirroring R's API
//   - [GridPosterior]: grid approximation of a binomial proportion
//
// Log-densities never panic on bad parameters; they return -Inf, which the
// optimizer treats as an infeasible point.
//
// # Randomness
//
// Nothing in this package touches global random state. Callers pass a
// generator, usually built with [NewRand] from an explicit seed.
package distributions
