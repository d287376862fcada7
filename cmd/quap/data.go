package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/quap/internal/analysis"
	"github.com/san-kum/quap/internal/dataset"
	"github.com/san-kum/quap/internal/distributions"
	"github.com/san-kum/quap/internal/precis"
	"github.com/san-kum/quap/internal/viz"
)

// openDataset reads a csv path, or a dataset name under --datasets.
func openDataset(arg string) (*dataset.Dataset, error) {
	if _, err := os.Stat(arg); err == nil {
		return dataset.Load(arg)
	}
	ds, err := dataset.Open(datasetsDir, arg)
	if errors.Is(err, dataset.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s is neither a file nor a dataset in %s", dataset.ErrNotFound, arg, datasetsDir)
	}
	return ds, err
}

func precisFile(cmd *cobra.Command, args []string) error {
	ds, err := openDataset(args[0])
	if err != nil {
		return err
	}
	fmt.Println(precis.FromDataset(ds))
	return nil
}

func histColumn(cmd *cobra.Command, args []string) error {
	ds, err := openDataset(args[0])
	if err != nil {
		return err
	}
	values, err := ds.Floats(args[1])
	if err != nil {
		return err
	}
	fmt.Println(viz.HistogramPlot(analysis.Histogram(values, bins), fmt.Sprintf("%s (%s)", args[1], ds.Name())))
	return nil
}

func listDatasets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return printDataset(args[0])
	}

	names, err := dataset.Available(datasetsDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("no datasets in %s\n", datasetsDir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROWS\tCOLUMNS")
	for _, name := range names {
		ds, err := dataset.Open(datasetsDir, name)
		if err != nil {
			logger.Warn("skipping dataset", zap.Error(err))
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, ds.Len(), strings.Join(ds.Columns(), ", "))
	}
	return w.Flush()
}

func printDataset(name string) error {
	ds, err := openDataset(name)
	if err != nil {
		return err
	}
	for _, cond := range where {
		col, value, ok := strings.Cut(cond, "=")
		if !ok {
			return fmt.Errorf("invalid --where %q, expected column=value", cond)
		}
		if !ds.HasColumn(col) {
			return fmt.Errorf("%w: %s", dataset.ErrNoColumn, col)
		}
		ds = ds.Where(col, value)
	}
	return ds.WriteCSV(os.Stdout)
}

func gridApprox(cmd *cobra.Command, args []string) error {
	grid, post, err := distributions.GridPosterior(water, size, points)
	if err != nil {
		return err
	}

	// quadratic approximation of the same posterior, on the grid
	mean, sd := stat.PopMeanStdDev(grid, post)
	approx := make([]float64, len(grid))
	if sd > 0 {
		for i, p := range grid {
			approx[i] = distributions.Dnorm(p, mean, sd)
		}
	}
	if total := floats.Sum(approx); total > 0 {
		floats.Scale(1/total, approx)
	}

	best := floats.MaxIdx(post)
	caption := fmt.Sprintf("posterior of p, %d of %d, %d points (second series: normal approximation)", water, size, points)
	fmt.Println(asciigraph.PlotMany([][]float64{post, approx},
		asciigraph.Height(viz.PlotHeight),
		asciigraph.Width(viz.PlotWidth),
		asciigraph.Caption(caption),
	))
	fmt.Println()
	fmt.Println(viz.KeyValue("mode", fmt.Sprintf("%.4f", grid[best]), 10))
	fmt.Println(viz.KeyValue("mean", fmt.Sprintf("%.4f", mean), 10))
	fmt.Println(viz.KeyValue("sd", fmt.Sprintf("%.4f", sd), 10))

	if draws <= 0 {
		return nil
	}
	predicted := predictive(grid, post, draws, gridSeed)
	fmt.Println()
	fmt.Println(viz.KeyValue("predicted", viz.Sparkline(predicted, len(predicted)), 10))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("successes 0..%d in %d trials, %d draws", size, size, draws)))
	return nil
}

// predictive draws p from the grid posterior, then a binomial count for each
// draw, and returns how often each count occurred.
func predictive(grid, post []float64, n int, seed uint64) []float64 {
	rng := distributions.NewRand(seed)
	pick := distuv.NewCategorical(post, rng)
	counts := make([]float64, size+1)
	for i := 0; i < n; i++ {
		p := grid[int(pick.Rand())]
		k := distributions.Rbinom(1, size, p, rng)[0]
		counts[k]++
	}
	return counts
}
