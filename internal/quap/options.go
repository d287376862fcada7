package quap

import (
	"go.uber.org/zap"

	"github.com/san-kum/quap/internal/optim"
)

type Option func(*Quap)

// WithStart sets explicit start values by parameter name.
func WithStart(start map[string]float64) Option {
	return func(q *Quap) {
		q.start = make(map[string]float64, len(start))
		for k, v := range start {
			q.start[k] = v
		}
	}
}

func WithSettings(s optim.Settings) Option {
	return func(q *Quap) { q.settings = s }
}

// WithPriors controls whether priors enter the objective. Disabling them
// yields the maximum-likelihood estimate.
func WithPriors(enabled bool) Option {
	return func(q *Quap) { q.priors = enabled }
}

// WithStrict turns silent degradations into errors: a non-finite objective
// at the start values returns ErrInvalidStart and running out of iterations
// returns ErrConvergence.
func WithStrict(strict bool) Option {
	return func(q *Quap) { q.strict = strict }
}

func WithLogger(logger *zap.Logger) Option {
	return func(q *Quap) {
		if logger != nil {
			q.logger = logger
		}
	}
}
