package formula

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/quap/internal/distributions"
)

// Data maps a variable name to its observations.
type Data map[string][]float64

// Role is the part a name plays in a model.
type Role int

const (
	RoleNone Role = iota
	RoleParameter
	RoleData
	RoleDerived
	RoleKeyword
)

func (r Role) String() string {
	switch r {
	case RoleParameter:
		return "parameter"
	case RoleData:
		return "data"
	case RoleDerived:
		return "derived"
	case RoleKeyword:
		return "keyword"
	}
	return "none"
}

// Kind classifies a formula.
type Kind int

const (
	KindLikelihood Kind = iota + 1
	KindPrior
	KindLinear
)

func (k Kind) String() string {
	switch k {
	case KindLikelihood:
		return "likelihood"
	case KindPrior:
		return "prior"
	case KindLinear:
		return "linear"
	}
	return "unknown"
}

// Formula is a classified formula. Family and Args are set for priors and
// likelihoods only.
type Formula struct {
	Text   string
	LHS    string
	RHS    Expr
	Kind   Kind
	Family *distributions.Family
	Args   []Expr
}

var mathFuncs = map[string]func(float64) float64{
	"log":  math.Log,
	"exp":  math.Exp,
	"sqrt": math.Sqrt,
}

func isMathFunc(name string) bool {
	_, ok := mathFuncs[strings.ToLower(name)]
	return ok
}

// IsKeyword reports whether name is a distribution or math function keyword.
func IsKeyword(name string) bool {
	return distributions.Families.Has(name) || isMathFunc(name)
}

// Model is a validated, immutable model description.
type Model struct {
	formulas   []Formula
	data       Data
	params     []string
	paramIndex map[string]int
	derived    map[string]Expr
	derivedIdx map[string]int
	roles      map[string]Role
}

// Parse validates formulas against data and builds a Model.
func Parse(formulas []string, data Data) (*Model, error) {
	m := &Model{
		formulas:   make([]Formula, 0, len(formulas)),
		data:       make(Data, len(data)),
		paramIndex: make(map[string]int),
		derived:    make(map[string]Expr),
		derivedIdx: make(map[string]int),
		roles:      make(map[string]Role),
	}
	for name, col := range data {
		c := make([]float64, len(col))
		copy(c, col)
		m.data[name] = c
		m.roles[name] = RoleData
	}

	for i, src := range formulas {
		f, err := m.parseFormula(i, src)
		if err != nil {
			return nil, err
		}
		m.formulas = append(m.formulas, f)
	}
	for name := range m.derived {
		m.roles[name] = RoleDerived
	}

	if err := m.classify(); err != nil {
		return nil, err
	}
	if err := m.collectParameters(); err != nil {
		return nil, err
	}
	if err := m.checkCycles(); err != nil {
		return nil, err
	}
	if err := m.checkPriors(); err != nil {
		return nil, err
	}
	if err := m.checkLengths(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Model) parseFormula(i int, src string) (Formula, error) {
	st, err := ParseStatement(src)
	if err != nil {
		return Formula{}, invalid(i, src, "%v", err)
	}
	if IsKeyword(st.LHS) {
		return Formula{}, invalid(i, src, "keyword %q cannot be defined", st.LHS)
	}

	f := Formula{Text: src, LHS: st.LHS, RHS: st.RHS}
	exprs := []Expr{st.RHS}

	if call, ok := st.RHS.(*Call); ok && !isMathFunc(call.Func) {
		fam, err := distributions.Families.Get(call.Func)
		if err != nil {
			return Formula{}, invalid(i, src, "%v", err)
		}
		if len(call.Args) != fam.Arity {
			return Formula{}, invalid(i, src, "%s takes %d arguments, got %d", fam.Name, fam.Arity, len(call.Args))
		}
		f.Family = fam
		f.Args = call.Args
		exprs = call.Args
	} else {
		f.Kind = KindLinear
		if _, dup := m.derived[f.LHS]; dup {
			return Formula{}, invalid(i, src, "%q is defined twice", f.LHS)
		}
		if _, clash := m.data[f.LHS]; clash {
			return Formula{}, invalid(i, src, "derived parameter %q shadows a data column", f.LHS)
		}
		m.derived[f.LHS] = f.RHS
		m.derivedIdx[f.LHS] = i
	}

	for _, e := range exprs {
		if err := checkCalls(e); err != nil {
			return Formula{}, invalid(i, src, "%v", err)
		}
	}
	return f, nil
}

// checkCalls allows only one-argument math functions inside expressions.
func checkCalls(e Expr) error {
	var err error
	Walk(e, func(n Expr) bool {
		call, ok := n.(*Call)
		if !ok || err != nil {
			return err == nil
		}
		switch {
		case distributions.Families.Has(call.Func):
			err = fmt.Errorf("distribution %s cannot appear inside an expression", call.Func)
		case !isMathFunc(call.Func):
			err = fmt.Errorf("unknown function %s", call.Func)
		case len(call.Args) != 1:
			err = fmt.Errorf("%s takes 1 argument, got %d", call.Func, len(call.Args))
		}
		return err == nil
	})
	return err
}

func (m *Model) classify() error {
	for i := range m.formulas {
		f := &m.formulas[i]
		if f.Kind == KindLinear {
			continue
		}

		if _, observed := m.data[f.LHS]; observed {
			if !f.Family.Likelihood {
				return invalid(i, f.Text, "unsupported likelihood family %s", f.Family.Name)
			}
			f.Kind = KindLikelihood
			continue
		}

		if !looksLikePrior(f.Args) {
			return &FormulaError{
				Index:   i,
				Formula: f.Text,
				Reason:  fmt.Sprintf("response variable %q not found in data", f.LHS),
				Wrapped: ErrMissingData,
			}
		}
		if !f.Family.Prior {
			return invalid(i, f.Text, "%s cannot be used as a prior", f.Family.Name)
		}
		f.Kind = KindPrior
	}
	return nil
}

// looksLikePrior holds when the arguments carry at least one numeric literal
// and at most one identifier.
func looksLikePrior(args []Expr) bool {
	literals, idents := 0, 0
	for _, a := range args {
		Walk(a, func(n Expr) bool {
			switch n.(type) {
			case *Literal:
				literals++
			case *Ident:
				idents++
			}
			return true
		})
	}
	return literals > 0 && idents <= 1
}

func (m *Model) rhsExprs(f *Formula) []Expr {
	if f.Kind == KindLinear {
		return []Expr{f.RHS}
	}
	return f.Args
}

// collectParameters gathers the free parameters. A name in a linear
// sub-model is a parameter only when a prior defines it; otherwise it must be
// a data column.
func (m *Model) collectParameters() error {
	withPrior := make(map[string]bool)
	for _, f := range m.formulas {
		if f.Kind == KindPrior {
			withPrior[f.LHS] = true
		}
	}

	set := make(map[string]bool)
	for i := range m.formulas {
		f := &m.formulas[i]
		var err error
		for _, e := range m.rhsExprs(f) {
			Walk(e, func(n Expr) bool {
				id, ok := n.(*Ident)
				if err != nil || !ok {
					return err == nil
				}
				if IsKeyword(id.Name) {
					err = invalid(i, f.Text, "keyword %q used as a name", id.Name)
					return false
				}
				if m.roles[id.Name] != RoleNone {
					return true
				}
				if f.Kind == KindLinear && !withPrior[id.Name] {
					err = &FormulaError{
						Index:   i,
						Formula: f.Text,
						Reason:  fmt.Sprintf("variable %q not found in data and has no prior", id.Name),
						Wrapped: ErrMissingData,
					}
					return false
				}
				set[id.Name] = true
				return true
			})
		}
		if err != nil {
			return err
		}
	}

	m.params = make([]string, 0, len(set))
	for name := range set {
		m.params = append(m.params, name)
	}
	sort.Strings(m.params)
	for i, name := range m.params {
		m.paramIndex[name] = i
		m.roles[name] = RoleParameter
	}
	return nil
}

func (m *Model) checkCycles() error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(m.derived))

	var visit func(name string) error
	visit = func(name string) error {
		color[name] = grey
		var err error
		Walk(m.derived[name], func(n Expr) bool {
			id, ok := n.(*Ident)
			if !ok || err != nil || m.roles[id.Name] != RoleDerived {
				return err == nil
			}
			switch color[id.Name] {
			case grey:
				idx := m.derivedIdx[name]
				err = invalid(idx, m.formulas[idx].Text, "derived parameters %q and %q depend on each other", name, id.Name)
			case white:
				err = visit(id.Name)
			}
			return err == nil
		})
		color[name] = black
		return err
	}

	names := m.Derived()
	for _, name := range names {
		if color[name] == white {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) checkPriors() error {
	seen := make(map[string]bool)
	for i := range m.formulas {
		f := &m.formulas[i]
		if f.Kind != KindPrior {
			continue
		}
		switch m.roles[f.LHS] {
		case RoleParameter:
		case RoleDerived:
			return invalid(i, f.Text, "prior on derived parameter %q", f.LHS)
		default:
			return invalid(i, f.Text, "prior on %q, which no other formula uses", f.LHS)
		}
		if seen[f.LHS] {
			return invalid(i, f.Text, "duplicate prior for %q", f.LHS)
		}
		seen[f.LHS] = true

		for _, a := range f.Args {
			if len(m.dataDeps(a)) > 0 {
				return invalid(i, f.Text, "prior arguments must not depend on data")
			}
		}
	}
	return nil
}

func (m *Model) checkLengths() error {
	for i := range m.formulas {
		f := &m.formulas[i]
		if f.Kind != KindLikelihood {
			continue
		}
		n := len(m.data[f.LHS])
		for _, a := range f.Args {
			for name := range m.dataDeps(a) {
				if len(m.data[name]) != n {
					return &FormulaError{
						Index:   i,
						Formula: f.Text,
						Reason:  fmt.Sprintf("%q has %d observations, %q has %d", f.LHS, n, name, len(m.data[name])),
						Wrapped: ErrDataLength,
					}
				}
			}
		}
	}
	return nil
}

// dataDeps returns the data columns e reads, following derived parameters.
func (m *Model) dataDeps(e Expr) map[string]bool {
	deps := make(map[string]bool)
	visited := make(map[string]bool)

	var walk func(Expr)
	walk = func(e Expr) {
		Walk(e, func(n Expr) bool {
			id, ok := n.(*Ident)
			if !ok {
				return true
			}
			switch m.roles[id.Name] {
			case RoleData:
				deps[id.Name] = true
			case RoleDerived:
				if !visited[id.Name] {
					visited[id.Name] = true
					walk(m.derived[id.Name])
				}
			}
			return true
		})
	}
	walk(e)
	return deps
}

// Parameters returns the free parameter names in vector order.
func (m *Model) Parameters() []string {
	out := make([]string, len(m.params))
	copy(out, m.params)
	return out
}

func (m *Model) NumParams() int { return len(m.params) }

func (m *Model) ParamIndex(name string) (int, bool) {
	i, ok := m.paramIndex[name]
	return i, ok
}

// Derived returns the derived parameter names, sorted.
func (m *Model) Derived() []string {
	out := make([]string, 0, len(m.derived))
	for name := range m.derived {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *Model) DerivedExpr(name string) (Expr, bool) {
	e, ok := m.derived[name]
	return e, ok
}

// RoleOf reports the role of name. Unknown names are RoleNone.
func (m *Model) RoleOf(name string) Role {
	if r, ok := m.roles[name]; ok {
		return r
	}
	if IsKeyword(name) {
		return RoleKeyword
	}
	return RoleNone
}

// Formulas returns every formula in input order.
func (m *Model) Formulas() []Formula {
	out := make([]Formula, len(m.formulas))
	copy(out, m.formulas)
	return out
}

func (m *Model) Likelihoods() []Formula { return m.ofKind(KindLikelihood) }
func (m *Model) Priors() []Formula      { return m.ofKind(KindPrior) }

func (m *Model) ofKind(k Kind) []Formula {
	var out []Formula
	for _, f := range m.formulas {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// Column returns a copy of a data column.
func (m *Model) Column(name string) ([]float64, bool) {
	col, ok := m.data[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// Eval evaluates e for one observation. theta is the parameter vector in
// Parameters order; row selects data values and is ignored by expressions
// that read no data.
func (m *Model) Eval(e Expr, theta []float64, row int) float64 {
	switch n := e.(type) {
	case *Literal:
		return n.Value

	case *Ident:
		switch m.roles[n.Name] {
		case RoleParameter:
			return theta[m.paramIndex[n.Name]]
		case RoleData:
			col := m.data[n.Name]
			if row < 0 || row >= len(col) {
				return math.NaN()
			}
			return col[row]
		case RoleDerived:
			return m.Eval(m.derived[n.Name], theta, row)
		}
		return 0

	case *Unary:
		return -m.Eval(n.X, theta, row)

	case *Binary:
		x := m.Eval(n.X, theta, row)
		y := m.Eval(n.Y, theta, row)
		switch n.Op {
		case '+':
			return x + y
		case '-':
			return x - y
		case '*':
			return x * y
		case '/':
			return x / y
		}

	case *Call:
		if fn, ok := mathFuncs[strings.ToLower(n.Func)]; ok && len(n.Args) == 1 {
			return fn(m.Eval(n.Args[0], theta, row))
		}
	}
	return math.NaN()
}
