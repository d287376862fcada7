package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/quap/internal/config"
	"github.com/san-kum/quap/internal/precis"
	"github.com/san-kum/quap/internal/quap"
	"github.com/san-kum/quap/internal/storage"
	"github.com/san-kum/quap/internal/viz"
)

func loadModel(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case modelPreset != "" && len(args) > 0:
		return nil, errors.New("give a model file or --preset, not both")
	case modelPreset != "":
		cfg = config.GetPreset(modelPreset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", modelPreset)
		}
	case len(args) == 1:
		var err error
		cfg, err = config.Load(args[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("a model file or --preset is required")
	}

	if dataFile != "" {
		cfg.Data.File = dataFile
	}
	if cmd.Flags().Changed("samples") {
		cfg.Samples = numSamples
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if method != "" {
		cfg.Optimizer.Method = method
	}
	if noPriors {
		cfg.Priors = false
	}
	return cfg, cfg.Validate()
}

func fitModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadModel(cmd, args)
	if err != nil {
		return err
	}
	data, err := cfg.LoadData()
	if err != nil {
		return err
	}

	q, err := quap.New(cfg.Formulas, data,
		quap.WithStart(cfg.Start),
		quap.WithSettings(cfg.Settings()),
		quap.WithPriors(cfg.Priors),
		quap.WithStrict(strict),
		quap.WithLogger(logger.With(zap.String("model", cfg.Name))),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := q.Estimate(ctx); err != nil {
		return err
	}

	summary, err := q.Summary()
	if err != nil {
		return err
	}
	fmt.Println(viz.Title.Render(cfg.Name))
	fmt.Println(summary)

	res, err := q.Result()
	if err != nil {
		return err
	}

	var samples map[string][]float64
	if cfg.Samples > 0 && res.NPar() > 0 {
		samples = res.Samples(cfg.Samples, cfg.Seed)
		fmt.Println(viz.Header.Render(fmt.Sprintf("samples (seed %d)", cfg.Seed)))
		fmt.Println(precis.FromSamples(samples, res.Params()))
		fmt.Println()
	}

	if !saveFit {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	meta, err := storage.FromResult(cfg.Name, cfg.Formulas, cfg.Priors, res)
	if err != nil {
		return err
	}
	meta.Seed = cfg.Seed
	id, err := st.Save(meta, samples)
	if err != nil {
		return err
	}
	logger.Debug("fit saved", zap.String("id", id), zap.String("dir", dataDir))
	fmt.Println(viz.KeyValue("saved", id, 6))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Println(viz.Title.Render(name))
		for _, f := range cfg.Formulas {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}
