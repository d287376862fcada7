package optim

const (
	DefaultMaxIter          = 1000
	DefaultTolerance        = 1e-6
	DefaultRelStep          = 0.05
	DefaultZeroStep         = 0.00025
	DefaultHessianStep      = 1e-5
	DefaultFallbackVariance = 0.1
)

// Settings configures the simplex search and the covariance estimate.
type Settings struct {
	Method    Method
	MaxIter   int
	Tolerance float64

	// Reflection, expansion, contraction and shrink coefficients.
	Alpha float64
	Gamma float64
	Rho   float64
	Sigma float64

	// Initial simplex: each coordinate moves by RelStep of its value, or by
	// ZeroStep when it is zero.
	RelStep  float64
	ZeroStep float64

	HessianStep      float64
	FallbackVariance float64
}

func DefaultSettings() Settings {
	return Settings{
		Method:           MethodNelderMead,
		MaxIter:          DefaultMaxIter,
		Tolerance:        DefaultTolerance,
		Alpha:            1,
		Gamma:            2,
		Rho:              0.5,
		Sigma:            0.5,
		RelStep:          DefaultRelStep,
		ZeroStep:         DefaultZeroStep,
		HessianStep:      DefaultHessianStep,
		FallbackVariance: DefaultFallbackVariance,
	}
}
