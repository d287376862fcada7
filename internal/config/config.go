package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/quap/internal/dataset"
	"github.com/san-kum/quap/internal/formula"
	"github.com/san-kum/quap/internal/optim"
)

const (
	DefaultSamples = 1000
	DefaultSeed    = 42
)

var ErrInvalidConfig = errors.New("config: invalid model file")

type Config struct {
	Name      string             `yaml:"name" validate:"required"`
	Formulas  []string           `yaml:"formulas" validate:"required,min=1,dive,required"`
	Data      DataConfig         `yaml:"data"`
	Start     map[string]float64 `yaml:"start,omitempty"`
	Priors    bool               `yaml:"priors"`
	Optimizer OptimizerConfig    `yaml:"optimizer"`
	Samples   int                `yaml:"samples" validate:"gte=0,lte=1000000"`
	Seed      uint64             `yaml:"seed"`
}

// DataConfig names a CSV file, row filters and inline columns. Inline
// columns override file columns of the same name.
type DataConfig struct {
	File    string               `yaml:"file,omitempty"`
	Where   map[string]float64   `yaml:"where,omitempty"`
	Columns map[string][]float64 `yaml:"columns,omitempty"`
}

type OptimizerConfig struct {
	Method      string  `yaml:"method" validate:"omitempty,oneof=nelder-mead bfgs"`
	MaxIter     int     `yaml:"max_iter" validate:"gt=0"`
	Tolerance   float64 `yaml:"tolerance" validate:"gt=0"`
	HessianStep float64 `yaml:"hessian_step" validate:"gt=0"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:    "model",
		Priors:  true,
		Samples: DefaultSamples,
		Seed:    DefaultSeed,
		Optimizer: OptimizerConfig{
			Method:      string(optim.MethodNelderMead),
			MaxIter:     optim.DefaultMaxIter,
			Tolerance:   optim.DefaultTolerance,
			HessianStep: optim.DefaultHessianStep,
		},
	}
}

// Load reads a model file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if cfg.Data.File != "" && !filepath.IsAbs(cfg.Data.File) {
		cfg.Data.File = filepath.Join(filepath.Dir(path), cfg.Data.File)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Settings returns optimizer settings with the file's overrides applied.
func (c *Config) Settings() optim.Settings {
	s := optim.DefaultSettings()
	if c.Optimizer.Method != "" {
		s.Method = optim.Method(c.Optimizer.Method)
	}
	s.MaxIter = c.Optimizer.MaxIter
	s.Tolerance = c.Optimizer.Tolerance
	s.HessianStep = c.Optimizer.HessianStep
	return s
}

// LoadData assembles the model data. Where keys ending in _min or _max
// bound a numeric column; any other key must match exactly.
func (c *Config) LoadData() (formula.Data, error) {
	data := make(formula.Data)

	if c.Data.File != "" {
		ds, err := dataset.Load(c.Data.File)
		if err != nil {
			return nil, err
		}
		ds, err = applyWhere(ds, c.Data.Where)
		if err != nil {
			return nil, err
		}
		for k, v := range ds.Data() {
			data[k] = v
		}
	} else if len(c.Data.Where) > 0 {
		return nil, fmt.Errorf("%w: data.where requires data.file", ErrInvalidConfig)
	}

	for k, v := range c.Data.Columns {
		data[k] = append([]float64(nil), v...)
	}
	return data, nil
}

func applyWhere(ds *dataset.Dataset, where map[string]float64) (*dataset.Dataset, error) {
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		bound := where[key]
		col, op := key, "eq"
		switch {
		case strings.HasSuffix(key, "_min"):
			col, op = strings.TrimSuffix(key, "_min"), "min"
		case strings.HasSuffix(key, "_max"):
			col, op = strings.TrimSuffix(key, "_max"), "max"
		}
		if !ds.HasColumn(col) {
			return nil, fmt.Errorf("%w: data.where: unknown column %q", ErrInvalidConfig, col)
		}
		ds = ds.Filter(func(r dataset.Row) bool {
			v := r[col]
			if !v.Numeric {
				return false
			}
			switch op {
			case "min":
				return v.Num >= bound
			case "max":
				return v.Num <= bound
			}
			return v.Num == bound
		})
	}
	return ds, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Formulas = append([]string(nil), c.Formulas...)
	if c.Start != nil {
		out.Start = make(map[string]float64, len(c.Start))
		for k, v := range c.Start {
			out.Start[k] = v
		}
	}
	if c.Data.Where != nil {
		out.Data.Where = make(map[string]float64, len(c.Data.Where))
		for k, v := range c.Data.Where {
			out.Data.Where[k] = v
		}
	}
	if c.Data.Columns != nil {
		out.Data.Columns = make(map[string][]float64, len(c.Data.Columns))
		for k, v := range c.Data.Columns {
			out.Data.Columns[k] = append([]float64(nil), v...)
		}
	}
	return &out
}
