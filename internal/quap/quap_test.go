package quap_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/quap/internal/formula"
	"github.com/san-kum/quap/internal/optim"
	"github.com/san-kum/quap/internal/quap"
)

var normalFormulas = []string{
	"y ~ normal(mu, sigma)",
	"mu ~ normal(0, 10)",
	"sigma ~ exponential(1)",
}

func normalData() quap.Data {
	return quap.Data{"y": {-1, 1, 0.5, -0.3, 2.1}}
}

func estimated(formulas []string, data quap.Data, opts ...quap.Option) *quap.Quap {
	q, err := quap.New(formulas, data, opts...)
	Expect(err).NotTo(HaveOccurred())
	_, err = q.Estimate(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return q
}

var _ = Describe("Quap", func() {
	Describe("New", func() {
		It("builds an unestimated model", func() {
			q, err := quap.New(normalFormulas, normalData())
			Expect(err).NotTo(HaveOccurred())
			Expect(q.Estimated()).To(BeFalse())
			Expect(q.Parameters()).To(Equal([]string{"mu", "sigma"}))
		})

		It("keeps a copy of the start values", func() {
			start := map[string]float64{"mu": 2.0, "sigma": 0.5}
			q, err := quap.New(normalFormulas, normalData(), quap.WithStart(start))
			Expect(err).NotTo(HaveOccurred())
			start["mu"] = 99
			Expect(q.Start()).To(Equal(map[string]float64{"mu": 2.0, "sigma": 0.5}))
		})

		DescribeTable("rejects malformed models",
			func(formulas []string, data quap.Data, want error) {
				_, err := quap.New(formulas, data)
				Expect(err).To(MatchError(want))
			},
			Entry("missing tilde", []string{"y normal(mu, sigma)"}, normalData(), quap.ErrInvalidFormula),
			Entry("unknown distribution", []string{"y ~ invalid_distribution()"}, normalData(), quap.ErrInvalidFormula),
			Entry("response not in data",
				[]string{"y ~ normal(mu, sigma)", "mu ~ normal(0, 1)"},
				quap.Data{"x": {1, 2, 3}},
				quap.ErrMissingData),
			Entry("misspelled data column",
				[]string{"weight ~ normal(mu, 1)", "mu ~ a + b*heigth", "a ~ normal(0, 1)", "b ~ normal(0, 1)"},
				quap.Data{"weight": {1, 2, 3}, "height": {1, 2, 3}},
				quap.ErrMissingData),
			Entry("columns of different length",
				[]string{"weight ~ normal(mu, 1)", "mu ~ a + b*height", "a ~ normal(0, 1)", "b ~ normal(0, 1)"},
				quap.Data{"weight": {1, 2, 3}, "height": {1, 2}},
				quap.ErrDataLength),
		)

		It("exposes formula errors with their position", func() {
			_, err := quap.New([]string{"y ~ normal(mu, sigma)", "mu ~ normal(0,"}, normalData())
			var fe *formula.FormulaError
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Index).To(Equal(1))
		})

		It("ignores start values for unknown parameters", func() {
			_, err := quap.New(normalFormulas, normalData(), quap.WithStart(map[string]float64{"tau": 1}))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects start values for unknown parameters in strict mode", func() {
			_, err := quap.New(normalFormulas, normalData(),
				quap.WithStart(map[string]float64{"tau": 1}),
				quap.WithStrict(true),
			)
			Expect(err).To(MatchError(quap.ErrInvalidStart))
		})
	})

	Describe("before Estimate", func() {
		var q *quap.Quap

		BeforeEach(func() {
			var err error
			q, err = quap.New(normalFormulas, normalData())
			Expect(err).NotTo(HaveOccurred())
		})

		It("fails every result accessor", func() {
			_, err := q.Coef()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.Vcov()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.SE()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.LogLik()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.AIC()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.Summary()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.Samples(10, 1)
			Expect(err).To(MatchError(quap.ErrNotEstimated))
			_, err = q.Result()
			Expect(err).To(MatchError(quap.ErrNotEstimated))
		})
	})

	Describe("simple normal model", func() {
		var q *quap.Quap

		BeforeEach(func() {
			q = estimated(normalFormulas, normalData())
		})

		It("returns itself from Estimate", func() {
			again, err := q.Estimate(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(BeIdenticalTo(q))
			Expect(q.Estimated()).To(BeTrue())
		})

		It("recovers the sample mean", func() {
			coef, err := q.Coef()
			Expect(err).NotTo(HaveOccurred())
			Expect(coef["mu"]).To(BeNumerically("~", 0.46, 0.5))
			Expect(coef["sigma"]).To(BeNumerically(">", 0))
		})

		It("provides a 2x2 covariance", func() {
			vcov, err := q.Vcov()
			Expect(err).NotTo(HaveOccurred())
			r, c := vcov.Dims()
			Expect(r).To(Equal(2))
			Expect(c).To(Equal(2))
		})

		It("returns a covariance copy", func() {
			vcov, _ := q.Vcov()
			vcov.SetSym(0, 0, 1e9)
			again, _ := q.Vcov()
			Expect(again.At(0, 0)).NotTo(Equal(1e9))
		})

		It("provides positive standard errors", func() {
			se, err := q.SE()
			Expect(err).NotTo(HaveOccurred())
			Expect(se["mu"]).To(BeNumerically(">", 0))
			Expect(se["sigma"]).To(BeNumerically(">", 0))
		})

		It("reports AIC from the log-likelihood", func() {
			ll, _ := q.LogLik()
			npar, _ := q.NPar()
			aic, _ := q.AIC()
			Expect(npar).To(Equal(2))
			Expect(aic).To(Equal(-2*ll + 2*float64(npar)))
		})

		It("reports convergence", func() {
			res, err := q.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Converged()).To(BeTrue())
			Expect(res.Iterations()).To(BeNumerically(">", 0))
			Expect(res.Evaluations()).To(BeNumerically(">=", res.Iterations()))
			Expect(res.CovarianceFallback()).To(BeFalse())
		})

		It("summarizes the fit", func() {
			s, err := q.Summary()
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(ContainSubstring("mu"))
			Expect(s).To(ContainSubstring("sigma"))
			Expect(s).To(ContainSubstring("5.5%"))
			Expect(s).To(ContainSubstring("AIC"))
		})
	})

	Describe("linear regression", func() {
		var q *quap.Quap

		BeforeEach(func() {
			q = estimated([]string{
				"weight ~ normal(mu, sigma)",
				"mu ~ a + b * height",
				"a ~ normal(0, 50)",
				"b ~ normal(0, 10)",
				"sigma ~ exponential(1)",
			}, quap.Data{
				"height": {150, 160, 170, 180, 190},
				"weight": {50, 60, 70, 80, 90},
			})
		})

		It("recovers the positive slope", func() {
			coef, _ := q.Coef()
			Expect(coef["b"]).To(BeNumerically(">", 0))
			Expect(coef["sigma"]).To(BeNumerically(">", 0))
		})

		It("fits exactly the free parameters", func() {
			coef, _ := q.Coef()
			Expect(coef).To(HaveLen(3))
			Expect(coef).To(HaveKey("a"))
			Expect(coef).To(HaveKey("b"))
			Expect(coef).To(HaveKey("sigma"))
		})
	})

	Describe("priors", func() {
		It("pulls the mode toward a tight prior", func() {
			formulas := []string{
				"y ~ normal(mu, 1)",
				"mu ~ normal(10, 0.1)",
			}
			data := quap.Data{"y": {0, 0, 0, 0}}

			withPriors, _ := estimated(formulas, data).Coef()
			ml, _ := estimated(formulas, data, quap.WithPriors(false)).Coef()

			Expect(withPriors["mu"]).To(BeNumerically(">", 5))
			Expect(ml["mu"]).To(BeNumerically("~", 0, 0.01))
		})
	})

	Describe("methods", func() {
		It("agrees between simplex and quasi-Newton search", func() {
			s := optim.DefaultSettings()
			s.Method = optim.MethodBFGS
			nm, _ := estimated(normalFormulas, normalData()).Coef()
			bfgs, _ := estimated(normalFormulas, normalData(), quap.WithSettings(s)).Coef()
			Expect(bfgs["mu"]).To(BeNumerically("~", nm["mu"], 0.05))
			Expect(bfgs["sigma"]).To(BeNumerically("~", nm["sigma"], 0.05))
		})
	})

	Describe("convergence", func() {
		It("keeps the best point when iterations run out", func() {
			s := optim.DefaultSettings()
			s.MaxIter = 2
			q := estimated(normalFormulas, normalData(), quap.WithSettings(s))
			res, _ := q.Result()
			Expect(res.Converged()).To(BeFalse())
			Expect(res.Iterations()).To(Equal(2))
		})

		It("fails in strict mode when iterations run out", func() {
			s := optim.DefaultSettings()
			s.MaxIter = 2
			q, err := quap.New(normalFormulas, normalData(), quap.WithSettings(s), quap.WithStrict(true))
			Expect(err).NotTo(HaveOccurred())
			_, err = q.Estimate(context.Background())
			Expect(err).To(MatchError(quap.ErrConvergence))
			Expect(q.Estimated()).To(BeFalse())
		})

		It("fails in strict mode on a non-finite start", func() {
			q, err := quap.New(normalFormulas, normalData(),
				quap.WithStart(map[string]float64{"sigma": -1}),
				quap.WithStrict(true),
			)
			Expect(err).NotTo(HaveOccurred())
			_, err = q.Estimate(context.Background())
			Expect(err).To(MatchError(quap.ErrInvalidStart))
		})

		It("stops on a canceled context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			q, _ := quap.New(normalFormulas, normalData())
			_, err := q.Estimate(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(q.Estimated()).To(BeFalse())
		})
	})

	Describe("Samples", func() {
		var q *quap.Quap

		BeforeEach(func() {
			q = estimated(normalFormulas, normalData())
		})

		It("is deterministic for a fixed seed", func() {
			a, err := q.Samples(100, 42)
			Expect(err).NotTo(HaveOccurred())
			b, _ := q.Samples(100, 42)
			Expect(a).To(Equal(b))
			Expect(a["mu"]).To(HaveLen(100))
			Expect(a["sigma"]).To(HaveLen(100))
		})

		It("differs across seeds", func() {
			a, _ := q.Samples(100, 42)
			b, _ := q.Samples(100, 43)
			Expect(a["mu"]).NotTo(Equal(b["mu"]))
		})

		It("centers on the mode", func() {
			coef, _ := q.Coef()
			se, _ := q.SE()
			s, _ := q.Samples(5000, 7)
			Expect(stat.Mean(s["mu"], nil)).To(BeNumerically("~", coef["mu"], 0.2))
			Expect(stat.StdDev(s["mu"], nil)).To(BeNumerically("~", se["mu"], 0.2*se["mu"]))
		})

		It("returns empty columns for n = 0", func() {
			s, _ := q.Samples(0, 1)
			Expect(s).To(HaveKey("mu"))
			Expect(s["mu"]).To(BeEmpty())
		})

		It("draws marginals deterministically", func() {
			a, _ := q.MarginalSamples(50, 3)
			b, _ := q.MarginalSamples(50, 3)
			Expect(a).To(Equal(b))
		})
	})

	Describe("correlated posterior", func() {
		It("reproduces the covariance in joint draws", func() {
			q := estimated([]string{
				"weight ~ normal(mu, 5)",
				"mu ~ a + b * height",
				"a ~ normal(0, 100)",
				"b ~ normal(0, 10)",
			}, quap.Data{
				"height": {150, 155, 160, 165, 170, 175, 180},
				"weight": {52, 55, 61, 64, 70, 71, 79},
			}, quap.WithPriors(false), quap.WithStart(map[string]float64{"a": -60, "b": 0.8}))

			vcov, _ := q.Vcov()
			want := vcov.At(0, 1) / math.Sqrt(vcov.At(0, 0)*vcov.At(1, 1))
			Expect(want).To(BeNumerically("<", -0.9))

			s, _ := q.Samples(4000, 11)
			got := stat.Correlation(s["a"], s["b"], nil)
			Expect(got).To(BeNumerically("~", want, 0.05))

			m, _ := q.MarginalSamples(4000, 11)
			Expect(math.Abs(stat.Correlation(m["a"], m["b"], nil))).To(BeNumerically("<", 0.1))
		})
	})

	Describe("models without parameters", func() {
		It("estimates to an empty fit", func() {
			q := estimated([]string{"y ~ normal(0, 1)"}, normalData())
			coef, _ := q.Coef()
			Expect(coef).To(BeEmpty())
			vcov, _ := q.Vcov()
			Expect(vcov).To(BeNil())
			ll, _ := q.LogLik()
			Expect(scalar.EqualWithinAbs(ll, -5*0.5*math.Log(2*math.Pi)-0.5*(1+1+0.25+0.09+4.41), 1e-9)).To(BeTrue())
		})
	})
})
