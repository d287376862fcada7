package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/quap/internal/analysis"
	"github.com/san-kum/quap/internal/storage"
	"github.com/san-kum/quap/internal/viz"
)

func listFits(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	fits, err := st.List()
	if err != nil {
		return err
	}

	if len(fits) == 0 {
		fmt.Println("no fits found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPARAMS\tAIC\tSAMPLES\tCONVERGED")
	for _, f := range fits {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%d\t%t\n",
			f.ID,
			f.Name,
			f.Timestamp.Local().Format("2006-01-02 15:04:05"),
			strings.Join(f.Params, ","),
			f.AIC,
			f.Samples,
			f.Converged,
		)
	}
	return w.Flush()
}

func showFit(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, _, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintln(&b, viz.KeyValue("id", meta.ID, 10))
	fmt.Fprintln(&b, viz.KeyValue("saved", meta.Timestamp.Local().Format("2006-01-02 15:04:05"), 10))
	fmt.Fprintln(&b, viz.KeyValue("priors", fmt.Sprintf("%t", meta.Priors), 10))
	fmt.Fprintln(&b, viz.KeyValue("loglik", fmt.Sprintf("%.4f", meta.LogLik), 10))
	fmt.Fprintln(&b, viz.KeyValue("aic", fmt.Sprintf("%.4f", meta.AIC), 10))
	fmt.Fprintf(&b, "%s %s (%d iterations)\n", viz.Label.Render("status:"), viz.Status(meta.Converged), meta.Iterations)
	if meta.Fallback {
		fmt.Fprintln(&b, viz.Warn.Render("covariance: diagonal fallback"))
	}
	fmt.Fprintln(&b)
	for _, f := range meta.Formulas {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	fmt.Fprintln(&b)

	width := 0
	for _, p := range meta.Params {
		width = max(width, len(p))
	}
	for _, p := range meta.Params {
		se := "n/a"
		if v, ok := meta.SE[p]; ok {
			se = fmt.Sprintf("%.4f", v)
		}
		line := fmt.Sprintf("%-*s  %10.4f  ± %-10s", width, p, meta.Coef[p], se)
		if s := samples[p]; len(s) > 0 {
			line += "  " + viz.Sparkline(analysis.Counts(analysis.Histogram(s, 20)), 20)
			if lo, hi, err := analysis.HPDI(s, 0.89); err == nil {
				line += fmt.Sprintf("  89%% HPDI [%.4f, %.4f]", lo, hi)
			}
		}
		fmt.Fprintln(&b, line)
	}

	fmt.Println(viz.Box(meta.Name, strings.TrimRight(b.String(), "\n")))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func plotFit(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, order, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return fmt.Errorf("fit %s has no samples", meta.ID)
	}

	if param != "" {
		if _, ok := samples[param]; !ok {
			return fmt.Errorf("unknown parameter: %s", param)
		}
		order = []string{param}
	}

	fmt.Printf("fit: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", meta.Samples)

	for _, p := range order {
		if trace {
			fmt.Println(viz.TracePlot(samples[p], p))
		} else {
			lo, hi, err := analysis.PercentileInterval(samples[p], 0.89)
			if err != nil {
				return err
			}
			caption := fmt.Sprintf("%s  89%% interval [%.4g, %.4g]", p, lo, hi)
			fmt.Println(viz.HistogramPlot(analysis.Histogram(samples[p], bins), caption))
		}
		fmt.Println()
	}
	return nil
}
