package analysis

import (
	"math"
)

const DefaultBins = 30

type Bin struct {
	Center float64
	Lo     float64
	Hi     float64
	Count  int
}

// Histogram splits the range of values into bins of equal width. Centers
// are rounded to two decimals. NaN values are ignored; when every value is
// equal a single bin at that value is returned.
func Histogram(values []float64, bins int) []Bin {
	if bins <= 0 {
		bins = DefaultBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		n++
	}
	if n == 0 {
		return nil
	}
	if lo == hi {
		return []Bin{{Center: lo, Lo: lo, Hi: hi, Count: n}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		start := lo + float64(i)*width
		end := lo + float64(i+1)*width
		out[i] = Bin{Center: round2((start + end) / 2), Lo: start, Hi: end}
	}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		i := int(math.Floor((v - lo) / width))
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// Counts returns the bin counts as floats for plotting.
func Counts(bins []Bin) []float64 {
	out := make([]float64, len(bins))
	for i, b := range bins {
		out[i] = float64(b.Count)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
