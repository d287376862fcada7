package formula

import (
	"errors"
	"fmt"
)

// Domain errors for model construction.
var (
	// ErrInvalidFormula indicates a syntax error or an unsupported distribution.
	ErrInvalidFormula = errors.New("formula: invalid formula")

	// ErrMissingData indicates a likelihood whose response is not in the data.
	ErrMissingData = errors.New("formula: missing data")

	// ErrDataLength indicates data columns of unequal length in one likelihood.
	ErrDataLength = errors.New("formula: data length mismatch")
)

// FormulaError wraps an error with the formula that caused it.
type FormulaError struct {
	Index   int
	Formula string
	Reason  string
	Wrapped error
}

func (e *FormulaError) Error() string {
	return fmt.Sprintf("%s: formula %d %q: %s", e.Wrapped, e.Index, e.Formula, e.Reason)
}

func (e *FormulaError) Unwrap() error {
	return e.Wrapped
}

func invalid(idx int, src, format string, args ...any) error {
	return &FormulaError{Index: idx, Formula: src, Reason: fmt.Sprintf(format, args...), Wrapped: ErrInvalidFormula}
}
