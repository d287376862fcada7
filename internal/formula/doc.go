// Package formula parses the model description language and classifies every
// name it mentions.
//
// A model is an ordered list of formulas of the shape `lhs ~ rhs`:
//
//	weight ~ normal(mu, sigma)   // likelihood: weight is observed data
//	mu ~ a + b*height            // linear sub-model: mu is derived per row
//	a ~ normal(0, 50)            // prior on parameter a
//	sigma ~ exponential(1)       // prior on parameter sigma
//
// Formulas are tokenized and parsed into a small typed AST ([Literal],
// [Ident], [Unary], [Binary], [Call]). [Parse] then makes a single validation
// pass that assigns each identifier a [Role] (parameter, data, derived or
// keyword) and each formula a [Kind]; the result is cached on the immutable
// [Model] so evaluation never re-derives it.
//
// # Classification
//
// A distribution formula whose left-hand side is a data column is a
// likelihood. Otherwise it is a prior when its arguments hold at least one
// numeric literal and at most one identifier; any other shape means the
// response variable was expected in the data and [ErrMissingData] is
// returned.
//
// # Errors
//
// Construction fails fast with [ErrInvalidFormula], [ErrMissingData] or
// [ErrDataLength], wrapped in a [*FormulaError] that names the offending
// formula.
package formula
