// Package viz renders fits and samples in the terminal.
//
// Styles are lipgloss values shared by the CLI. Plots use asciigraph:
//
//   - [HistogramPlot]: bin counts of a sample column
//   - [TracePlot]: a column in draw order
//   - [Sparkline]: a one-line overview for tables
package viz
