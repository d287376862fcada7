package config

import "sort"

var Presets = map[string]*Config{
	"normal-mean": {
		Name: "normal-mean",
		Formulas: []string{
			"y ~ normal(mu, sigma)",
			"mu ~ normal(0, 10)",
			"sigma ~ exponential(1)",
		},
		Data: DataConfig{Columns: map[string][]float64{
			"y": {-1, 1, 0.5, -0.3, 2.1},
		}},
	},
	"linear-regression": {
		Name: "linear-regression",
		Formulas: []string{
			"weight ~ normal(mu, sigma)",
			"mu ~ a + b*height",
			"a ~ normal(0, 50)",
			"b ~ normal(0, 10)",
			"sigma ~ exponential(1)",
		},
		Data: DataConfig{Columns: map[string][]float64{
			"height": {150, 160, 170, 180, 190},
			"weight": {50, 60, 70, 80, 90},
		}},
	},
	"exponential-rate": {
		Name: "exponential-rate",
		Formulas: []string{
			"t ~ exponential(lambda)",
			"lambda ~ gamma(2, 1)",
		},
		Data: DataConfig{Columns: map[string][]float64{
			"t": {0.5, 1.2, 0.3, 2.1, 0.8, 1.5, 0.4, 0.9},
		}},
	},
	"bounded-proportion": {
		Name: "bounded-proportion",
		Formulas: []string{
			"y ~ normal(p, 0.1)",
			"p ~ beta(2, 2)",
		},
		Data: DataConfig{Columns: map[string][]float64{
			"y": {0.62, 0.71, 0.58, 0.66, 0.69},
		}},
	},
}

// GetPreset returns a copy of the named preset with defaults filled in, or
// nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Clone()
	def := DefaultConfig()
	cfg.Priors = true
	cfg.Optimizer = def.Optimizer
	cfg.Samples = def.Samples
	cfg.Seed = def.Seed
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
