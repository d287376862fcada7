// Package precis renders compact summaries of numeric columns: mean,
// population standard deviation and the central 89% interval.
package precis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/quap/internal/dataset"
)

const (
	LowerPercent = 5.5
	UpperPercent = 94.5
)

// Column is a named numeric series. NaN values are dropped.
type Column struct {
	Name   string
	Values []float64
}

type Stats struct {
	Name  string
	Mean  float64
	SD    float64
	Lower float64
	Upper float64
}

// Describe computes Stats for each column that holds at least one value.
func Describe(columns []Column) []Stats {
	out := make([]Stats, 0, len(columns))
	for _, c := range columns {
		vals := make([]float64, 0, len(c.Values))
		for _, v := range c.Values {
			if !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		sort.Float64s(vals)
		mean, sd := stat.PopMeanStdDev(vals, nil)
		out = append(out, Stats{
			Name:  c.Name,
			Mean:  mean,
			SD:    sd,
			Lower: Percentile(vals, LowerPercent),
			Upper: Percentile(vals, UpperPercent),
		})
	}
	return out
}

// Percentile interpolates linearly between order statistics at rank
// (n-1)*p/100. sorted must be in ascending order.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	k := float64(len(sorted)-1) * p / 100
	f, c := math.Floor(k), math.Ceil(k)
	if f == c {
		return sorted[int(k)]
	}
	return sorted[int(f)]*(c-k) + sorted[int(c)]*(k-f)
}

// Table renders columns with rows observations each.
func Table(rows int, columns []Column) string {
	if len(columns) == 0 {
		return "Empty dataframe"
	}
	stats := Describe(columns)
	if len(stats) == 0 {
		return "No numeric columns found"
	}

	width := 10
	for _, s := range stats {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d obs. of %d variables\n\n", rows, len(stats))
	fmt.Fprintf(&b, "%-*s  %10s  %10s  %10s  %10s\n", width, "", "mean", "sd", "5.5%", "94.5%")
	b.WriteString(strings.Repeat("-", width+46))
	for _, s := range stats {
		fmt.Fprintf(&b, "\n%-*s  %10.2f  %10.2f  %10.2f  %10.2f", width, s.Name, s.Mean, s.SD, s.Lower, s.Upper)
	}
	return b.String()
}

// FromDataset summarizes the numeric columns of ds.
func FromDataset(ds *dataset.Dataset) string {
	cols := ds.Columns()
	if len(cols) == 0 {
		return "Empty dataframe"
	}
	columns := make([]Column, 0, len(cols))
	for _, c := range cols {
		if !ds.IsNumeric(c) {
			continue
		}
		vals := make([]float64, 0, ds.Len())
		for _, r := range ds.Rows() {
			if v := r[c]; v.Numeric {
				vals = append(vals, v.Num)
			}
		}
		columns = append(columns, Column{Name: c, Values: vals})
	}
	if len(columns) == 0 {
		return "No numeric columns found"
	}
	return Table(ds.Len(), columns)
}

// FromSamples summarizes posterior samples in the given column order.
func FromSamples(samples map[string][]float64, order []string) string {
	if len(order) == 0 {
		for name := range samples {
			order = append(order, name)
		}
		sort.Strings(order)
	}
	columns := make([]Column, 0, len(order))
	rows := 0
	for _, name := range order {
		vals, ok := samples[name]
		if !ok {
			continue
		}
		if len(vals) > rows {
			rows = len(vals)
		}
		columns = append(columns, Column{Name: name, Values: vals})
	}
	return Table(rows, columns)
}
