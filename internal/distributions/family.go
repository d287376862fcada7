package distributions

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Family is a parametric distribution addressable from a formula.
type Family struct {
	Name  string
	Arity int
	// Likelihood reports whether observed data may be modelled with this family.
	Likelihood bool
	// Prior reports whether the family may be placed on a continuous parameter.
	Prior bool

	logDensity func(x float64, args []float64) float64
}

// LogDensity evaluates log p(x | args). Invalid parameters, NaN inputs and
// points outside the support all yield -Inf.
func (f *Family) LogDensity(x float64, args []float64) float64 {
	if len(args) != f.Arity || math.IsNaN(x) {
		return math.Inf(-1)
	}
	for _, a := range args {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return math.Inf(-1)
		}
	}
	lp := f.logDensity(x, args)
	if math.IsNaN(lp) {
		return math.Inf(-1)
	}
	return lp
}

type Registry struct {
	families map[string]*Family
}

func NewRegistry() *Registry {
	r := &Registry{families: make(map[string]*Family)}

	r.families["normal"] = &Family{
		Name: "normal", Arity: 2, Likelihood: true, Prior: true,
		logDensity: func(x float64, args []float64) float64 {
			mean, sd := args[0], args[1]
			if sd <= 0 {
				return math.Inf(-1)
			}
			return distuv.Normal{Mu: mean, Sigma: sd}.LogProb(x)
		},
	}
	r.families["exponential"] = &Family{
		Name: "exponential", Arity: 1, Likelihood: true, Prior: true,
		logDensity: func(x float64, args []float64) float64 {
			rate := args[0]
			if rate <= 0 || x < 0 {
				return math.Inf(-1)
			}
			return distuv.Exponential{Rate: rate}.LogProb(x)
		},
	}
	r.families["uniform"] = &Family{
		Name: "uniform", Arity: 2, Prior: true,
		logDensity: func(x float64, args []float64) float64 {
			lo, hi := args[0], args[1]
			if lo >= hi || x < lo || x > hi {
				return math.Inf(-1)
			}
			return distuv.Uniform{Min: lo, Max: hi}.LogProb(x)
		},
	}
	r.families["gamma"] = &Family{
		Name: "gamma", Arity: 2, Prior: true,
		logDensity: func(x float64, args []float64) float64 {
			shape, rate := args[0], args[1]
			if shape <= 0 || rate <= 0 || x <= 0 {
				return math.Inf(-1)
			}
			return distuv.Gamma{Alpha: shape, Beta: rate}.LogProb(x)
		},
	}
	r.families["beta"] = &Family{
		Name: "beta", Arity: 2, Prior: true,
		logDensity: func(x float64, args []float64) float64 {
			a, b := args[0], args[1]
			if a <= 0 || b <= 0 || x < 0 || x > 1 {
				return math.Inf(-1)
			}
			return distuv.Beta{Alpha: a, Beta: b}.LogProb(x)
		},
	}
	// Discrete families are recognised keywords but cannot be fitted.
	r.families["binomial"] = &Family{
		Name: "binomial", Arity: 2,
		logDensity: func(x float64, args []float64) float64 {
			size, p := args[0], args[1]
			if size < 0 || p < 0 || p > 1 || x < 0 || x > size || x != math.Floor(x) {
				return math.Inf(-1)
			}
			if p == 0 || p == 1 {
				if (p == 0 && x == 0) || (p == 1 && x == math.Floor(size)) {
					return 0
				}
				return math.Inf(-1)
			}
			return distuv.Binomial{N: math.Floor(size), P: p}.LogProb(x)
		},
	}
	r.families["poisson"] = &Family{
		Name: "poisson", Arity: 1,
		logDensity: func(x float64, args []float64) float64 {
			lambda := args[0]
			if lambda <= 0 || x < 0 || x != math.Floor(x) {
				return math.Inf(-1)
			}
			return distuv.Poisson{Lambda: lambda}.LogProb(x)
		},
	}

	return r
}

// Families is the registry used by the formula parser.
var Families = NewRegistry()

// Get looks a family up by keyword, ignoring case.
func (r *Registry) Get(name string) (*Family, error) {
	f, ok := r.families[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown distribution: %s", name)
	}
	return f, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.families[strings.ToLower(name)]
	return ok
}

// Names returns the registered keywords in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.families))
	for name := range r.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
