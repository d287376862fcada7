// Package storage persists fits on disk.
//
// Each fit lives in its own directory named by a random UUID:
//
//	<base>/<id>/metadata.json   estimates, covariance and fit diagnostics
//	<base>/<id>/samples.csv     posterior draws, one column per parameter
package storage
