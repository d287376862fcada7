// Package analysis summarizes posterior samples and data columns.
//
//   - [Histogram]: equal-width bins for terminal plots
//   - [PercentileInterval]: central interval with equal tails
//   - [HPDI]: narrowest interval holding a given mass
//
// # Intervals
//
// Both interval functions ignore NaN values and return NaN bounds for
// empty input:
//
//	lo, hi, err := analysis.PercentileInterval(samples["mu"], 0.89)
package analysis
