package posterior

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/quap/internal/formula"
)

func normalLogPDF(x, mean, sd float64) float64 {
	return -0.5*math.Log(2*math.Pi) - math.Log(sd) - 0.5*math.Pow((x-mean)/sd, 2)
}

func mustParse(t *testing.T, formulas []string, data formula.Data) *formula.Model {
	t.Helper()
	m, err := formula.Parse(formulas, data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return m
}

func TestLogLik_Normal(t *testing.T) {
	g := NewWithT(t)
	y := []float64{-1, 1, 0.5, -0.3, 2.1}
	m := mustParse(t, []string{
		"y ~ normal(mu, sigma)",
		"mu ~ normal(0, 10)",
		"sigma ~ exponential(1)",
	}, formula.Data{"y": y})
	e := New(m)

	theta := []float64{0.3, 1.2}
	expected := 0.0
	for _, x := range y {
		expected += normalLogPDF(x, 0.3, 1.2)
	}
	g.Expect(e.LogLik(theta)).To(BeNumerically("~", expected, 1e-10))

	prior := normalLogPDF(0.3, 0, 10) + math.Log(1) - 1.2
	g.Expect(e.LogPrior(theta)).To(BeNumerically("~", prior, 1e-10))
	g.Expect(e.LogPosterior(theta)).To(BeNumerically("~", expected+prior, 1e-10))

	g.Expect(math.IsInf(e.LogLik([]float64{0.3, 0}), -1)).To(BeTrue())
	g.Expect(math.IsInf(e.LogLik([]float64{0.3, -1}), -1)).To(BeTrue())
}

func TestLogLik_WithoutPriors(t *testing.T) {
	g := NewWithT(t)
	m := mustParse(t, []string{
		"y ~ normal(mu, sigma)",
		"mu ~ normal(0, 10)",
		"sigma ~ exponential(1)",
	}, formula.Data{"y": {1, 2, 3}})
	e := New(m, WithPriors(false))

	theta := []float64{2, 1}
	g.Expect(e.PriorsEnabled()).To(BeFalse())
	g.Expect(e.LogPosterior(theta)).To(Equal(e.LogLik(theta)))
	g.Expect(e.Objective()(theta)).To(Equal(-e.LogLik(theta)))
}

func TestLogLik_LinearSubModel(t *testing.T) {
	g := NewWithT(t)
	height := []float64{150, 160, 170, 180, 190}
	weight := []float64{50, 60, 70, 80, 90}
	m := mustParse(t, []string{
		"weight ~ normal(mu, sigma)",
		"mu ~ a + b*height",
		"a ~ normal(0, 50)",
		"b ~ normal(0, 10)",
		"sigma ~ exponential(1)",
	}, formula.Data{"height": height, "weight": weight})
	e := New(m)

	theta := []float64{-90, 0.9, 3} // a, b, sigma
	expected := 0.0
	for i := range height {
		expected += normalLogPDF(weight[i], -90+0.9*height[i], 3)
	}
	g.Expect(e.LogLik(theta)).To(BeNumerically("~", expected, 1e-9))

	// the exact line beats a shifted one
	g.Expect(e.LogLik([]float64{-100, 1, 3})).To(BeNumerically(">", e.LogLik(theta)))
}

func TestLogLik_Exponential(t *testing.T) {
	g := NewWithT(t)
	x := []float64{0.5, 1.5, 0.2, 2.0}
	m := mustParse(t, []string{
		"x ~ exponential(lambda)",
		"lambda ~ gamma(2, 1)",
	}, formula.Data{"x": x})
	e := New(m)

	expected := 0.0
	for _, v := range x {
		expected += math.Log(0.8) - 0.8*v
	}
	g.Expect(e.LogLik([]float64{0.8})).To(BeNumerically("~", expected, 1e-12))
	g.Expect(math.IsInf(e.LogLik([]float64{0}), -1)).To(BeTrue())

	neg := mustParse(t, []string{"x ~ exponential(lambda)"}, formula.Data{"x": {1, -1}})
	g.Expect(math.IsInf(New(neg).LogLik([]float64{1}), -1)).To(BeTrue())
}
