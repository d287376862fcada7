package distributions

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// GridPosterior approximates the posterior of a binomial proportion after
// observing k successes in size trials, under a flat prior on [0, 1].
// It returns the grid and the normalized posterior mass at each point.
func GridPosterior(k, size, points int) ([]float64, []float64, error) {
	if points < 2 {
		return nil, nil, fmt.Errorf("grid needs at least 2 points, got %d", points)
	}
	if k < 0 || size < 0 || k > size {
		return nil, nil, fmt.Errorf("invalid observation: %d successes in %d trials", k, size)
	}

	grid := floats.Span(make([]float64, points), 0, 1)
	post := make([]float64, points)
	for i, p := range grid {
		post[i] = Likelihood(k, size-k, p)
	}

	total := floats.Sum(post)
	if total == 0 {
		return nil, nil, fmt.Errorf("posterior has zero mass on the grid")
	}
	floats.Scale(1/total, post)
	return grid, post, nil
}
