package optim

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
)

func TestBFGS_Quadratic(t *testing.T) {
	g := NewWithT(t)

	res, err := BFGS(context.Background(), quadratic, []float64{0, 0}, DefaultSettings())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.X[0]).To(BeNumerically("~", 3, 1e-2))
	g.Expect(res.X[1]).To(BeNumerically("~", -1, 1e-2))
	g.Expect(res.F).To(BeNumerically("~", 5, 1e-4))
	g.Expect(res.Evaluations).To(BeNumerically(">", 0))
}

func TestBFGS_Canceled(t *testing.T) {
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := BFGS(ctx, quadratic, []float64{1, 1}, DefaultSettings())
	g.Expect(err).To(MatchError(context.Canceled))
	g.Expect(res.X).To(Equal([]float64{1, 1}))
	g.Expect(res.Converged).To(BeFalse())
}

func TestMinimize_Dispatch(t *testing.T) {
	tests := []struct {
		method  Method
		wantErr bool
	}{
		{"", false},
		{MethodNelderMead, false},
		{MethodBFGS, false},
		{"newton", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			g := NewWithT(t)
			s := DefaultSettings()
			s.Method = tt.method
			res, err := Minimize(context.Background(), quadratic, []float64{0, 0}, s)
			if tt.wantErr {
				g.Expect(err).To(HaveOccurred())
				return
			}
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(res.X[0]).To(BeNumerically("~", 3, 1e-2))
		})
	}
}
