package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quap/internal/analysis"
)

const (
	PlotHeight = 12
	PlotWidth  = 72
)

// HistogramPlot draws bin counts as a line graph with the value range
// printed underneath.
func HistogramPlot(bins []analysis.Bin, caption string) string {
	if len(bins) == 0 {
		return Subtle.Render("no values to plot")
	}
	counts := analysis.Counts(bins)
	if len(counts) == 1 {
		counts = append(counts, counts[0])
	}

	graph := asciigraph.Plot(counts,
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)

	var b strings.Builder
	b.WriteString(graph)
	b.WriteString("\n")
	b.WriteString(Subtle.Render(fmt.Sprintf("range %.4g .. %.4g, %d bins", bins[0].Lo, bins[len(bins)-1].Hi, len(bins))))
	return b.String()
}

// TracePlot draws a series in sample order.
func TracePlot(values []float64, caption string) string {
	if len(values) == 0 {
		return Subtle.Render("no values to plot")
	}
	return asciigraph.Plot(values,
		asciigraph.Height(PlotHeight),
		asciigraph.Width(PlotWidth),
		asciigraph.Caption(caption),
	)
}
