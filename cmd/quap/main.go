package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir string
	verbose bool
	logger  = zap.NewNop()

	// fit
	modelPreset string
	dataFile    string
	numSamples  int
	seed        uint64
	noPriors    bool
	strict      bool
	method      string
	saveFit     bool

	// plot, hist
	param string
	bins  int
	trace bool

	// datasets
	datasetsDir string
	where       []string

	// grid
	water    int
	size     int
	points   int
	draws    int
	gridSeed uint64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "quap",
		Short:         "quadratic approximation for small bayesian models",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(verbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", ".quap", "fit store directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&datasetsDir, "datasets", "data", "directory of named csv datasets")

	fitCmd := &cobra.Command{
		Use:   "fit [model.yaml]",
		Short: "fit a model and print its summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  fitModel,
	}
	fitCmd.Flags().StringVar(&modelPreset, "preset", "", "use a built-in model")
	fitCmd.Flags().StringVar(&dataFile, "data", "", "csv data file (overrides the model file)")
	fitCmd.Flags().IntVar(&numSamples, "samples", 0, "posterior samples to draw (default from model)")
	fitCmd.Flags().Uint64Var(&seed, "seed", 0, "sampling seed (default from model)")
	fitCmd.Flags().BoolVar(&noPriors, "no-priors", false, "exclude priors (maximum likelihood)")
	fitCmd.Flags().StringVar(&method, "method", "", "optimizer: nelder-mead or bfgs (default from model)")
	fitCmd.Flags().BoolVar(&strict, "strict", false, "fail on bad start values or non-convergence")
	fitCmd.Flags().BoolVar(&saveFit, "save", false, "store the fit and its samples")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored fits",
		Args:  cobra.NoArgs,
		RunE:  listFits,
	}

	showCmd := &cobra.Command{
		Use:   "show [fit_id]",
		Short: "show a stored fit",
		Args:  cobra.ExactArgs(1),
		RunE:  showFit,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [fit_id]",
		Short: "export a fit and its samples as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [fit_id]",
		Short: "export the samples of a fit as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [fit_id]",
		Short: "plot sample histograms of a stored fit",
		Args:  cobra.ExactArgs(1),
		RunE:  plotFit,
	}
	plotCmd.Flags().StringVar(&param, "param", "", "parameter to plot (default all)")
	plotCmd.Flags().IntVar(&bins, "bins", 30, "histogram bins")
	plotCmd.Flags().BoolVar(&trace, "trace", false, "plot draws in order instead of a histogram")

	precisCmd := &cobra.Command{
		Use:   "precis [file.csv|dataset]",
		Short: "summarize the numeric columns of a csv file",
		Args:  cobra.ExactArgs(1),
		RunE:  precisFile,
	}

	histCmd := &cobra.Command{
		Use:   "hist [file.csv|dataset] [column]",
		Short: "plot a histogram of a csv column",
		Args:  cobra.ExactArgs(2),
		RunE:  histColumn,
	}
	histCmd.Flags().IntVar(&bins, "bins", 30, "histogram bins")

	datasetsCmd := &cobra.Command{
		Use:   "datasets [name]",
		Short: "list named datasets, or print one as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listDatasets,
	}
	datasetsCmd.Flags().StringSliceVar(&where, "where", nil, "keep rows where column=value (repeatable)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in models",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	gridCmd := &cobra.Command{
		Use:   "grid",
		Short: "grid approximation of a binomial proportion",
		Args:  cobra.NoArgs,
		RunE:  gridApprox,
	}
	gridCmd.Flags().IntVar(&water, "water", 6, "successes")
	gridCmd.Flags().IntVar(&size, "size", 9, "trials")
	gridCmd.Flags().IntVar(&points, "points", 20, "grid points")
	gridCmd.Flags().IntVar(&draws, "draws", 1000, "posterior predictive draws (0 to skip)")
	gridCmd.Flags().Uint64Var(&gridSeed, "seed", 42, "predictive sampling seed")

	rootCmd.AddCommand(fitCmd, listCmd, showCmd, exportJSONCmd, exportCSVCmd, plotCmd, precisCmd, histCmd, datasetsCmd, presetsCmd, gridCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
