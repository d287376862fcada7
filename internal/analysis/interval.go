package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/quap/internal/precis"
)

func sortedFinite(values []float64) []float64 {
	s := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			s = append(s, v)
		}
	}
	sort.Float64s(s)
	return s
}

func checkProb(prob float64) error {
	if !(prob > 0 && prob < 1) {
		return fmt.Errorf("analysis: probability %v not in (0, 1)", prob)
	}
	return nil
}

// PercentileInterval returns the central interval holding prob of the
// values, with equal mass in each tail.
func PercentileInterval(values []float64, prob float64) (lo, hi float64, err error) {
	if err := checkProb(prob); err != nil {
		return 0, 0, err
	}
	s := sortedFinite(values)
	if len(s) == 0 {
		return math.NaN(), math.NaN(), nil
	}
	tail := (1 - prob) / 2 * 100
	return precis.Percentile(s, tail), precis.Percentile(s, 100-tail), nil
}

// HPDI returns the narrowest interval holding prob of the values.
func HPDI(values []float64, prob float64) (lo, hi float64, err error) {
	if err := checkProb(prob); err != nil {
		return 0, 0, err
	}
	s := sortedFinite(values)
	if len(s) == 0 {
		return math.NaN(), math.NaN(), nil
	}
	w := int(math.Ceil(prob * float64(len(s))))
	if w < 1 {
		w = 1
	}
	best := 0
	for i := 1; i+w-1 < len(s); i++ {
		if s[i+w-1]-s[i] < s[best+w-1]-s[best] {
			best = i
		}
	}
	return s[best], s[best+w-1], nil
}
