package quap

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/quap/internal/formula"
)

// startValues resolves the initial vector: explicit values first, then a
// default guessed from how each parameter is used.
func (q *Quap) startValues() []float64 {
	params := q.model.Parameters()
	x0 := make([]float64, len(params))
	for i, name := range params {
		if v, ok := q.start[name]; ok {
			x0[i] = v
			continue
		}
		x0[i] = q.defaultStart(name)
	}
	return x0
}

func (q *Quap) defaultStart(name string) float64 {
	for _, f := range q.model.Likelihoods() {
		switch f.Family.Name {
		case "normal":
			if isIdent(f.Args[0], name) {
				if col, _ := q.model.Column(f.LHS); len(col) > 0 {
					return stat.Mean(col, nil)
				}
			}
			if isIdent(f.Args[1], name) {
				return 1
			}
		case "exponential":
			if isIdent(f.Args[0], name) {
				return 1
			}
		}
	}

	for _, f := range q.model.Priors() {
		if f.LHS != name {
			continue
		}
		switch f.Family.Name {
		case "exponential", "gamma":
			return 1
		case "beta":
			return 0.5
		case "uniform":
			if args, ok := q.constArgs(f); ok {
				return (args[0] + args[1]) / 2
			}
		}
	}
	return 0
}

func isIdent(e formula.Expr, name string) bool {
	id, ok := e.(*formula.Ident)
	return ok && id.Name == name
}

// constArgs evaluates prior arguments that reference no parameter.
func (q *Quap) constArgs(f formula.Formula) ([]float64, bool) {
	out := make([]float64, len(f.Args))
	for i, a := range f.Args {
		constant := true
		formula.Walk(a, func(n formula.Expr) bool {
			if _, ok := n.(*formula.Ident); ok {
				constant = false
			}
			return constant
		})
		if !constant {
			return nil, false
		}
		out[i] = q.model.Eval(a, nil, 0)
	}
	return out, true
}
