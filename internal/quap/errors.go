package quap

import (
	"errors"

	"github.com/san-kum/quap/internal/formula"
)

var (
	// ErrNotEstimated indicates a result accessor called before Estimate.
	ErrNotEstimated = errors.New("quap: must call Estimate before accessing results")

	// ErrConvergence indicates the optimizer ran out of iterations. Only
	// returned in strict mode.
	ErrConvergence = errors.New("quap: optimizer did not converge")

	// ErrInvalidStart indicates unusable start values. Only returned in
	// strict mode.
	ErrInvalidStart = errors.New("quap: invalid start values")

	ErrInvalidFormula = formula.ErrInvalidFormula
	ErrMissingData    = formula.ErrMissingData
	ErrDataLength     = formula.ErrDataLength
)
