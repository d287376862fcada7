package quap

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/quap/internal/formula"
)

const (
	lowerProb = 0.055
	upperProb = 0.945
)

func summarize(model *formula.Model, r *FitResult, priors bool) string {
	var b strings.Builder

	b.WriteString("Quadratic approximation\n\n")
	b.WriteString("Formulas:\n")
	for _, f := range model.Formulas() {
		fmt.Fprintf(&b, "  %-10s  %s\n", f.Kind, f.Text)
	}

	width := 9
	for _, p := range r.params {
		if len(p)+2 > width {
			width = len(p) + 2
		}
	}
	zl := distuv.UnitNormal.Quantile(lowerProb)
	zu := distuv.UnitNormal.Quantile(upperProb)

	b.WriteString("\nParameter estimates:\n")
	fmt.Fprintf(&b, "%-*s %10s %10s %10s %10s\n", width, "", "mean", "sd", "5.5%", "94.5%")
	for i, p := range r.params {
		mu, sd := r.mode[i], r.sd(i)
		fmt.Fprintf(&b, "%-*s %10.4f %10.4f %10.4f %10.4f\n", width, p, mu, sd, mu+zl*sd, mu+zu*sd)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Log-likelihood: %.4f\n", r.logLik)
	fmt.Fprintf(&b, "AIC: %.4f\n", r.AIC())
	fmt.Fprintf(&b, "Parameters: %d\n", r.NPar())
	status := "converged"
	if !r.converged {
		status = "not converged"
	}
	fmt.Fprintf(&b, "Iterations: %d (%s)\n", r.iterations, status)
	if !priors {
		b.WriteString("Priors: excluded (maximum likelihood)\n")
	}
	if r.fallback {
		b.WriteString("Covariance: diagonal fallback\n")
	}
	return b.String()
}
