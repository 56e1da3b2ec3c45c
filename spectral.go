package unsupervised

import (
	"errors"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ReduceMethod selects how the right singular vectors are computed.
type ReduceMethod string

const (
	// MethodSVD takes the leading columns of V from a thin SVD.
	MethodSVD ReduceMethod = "svd"

	// MethodPower approximates them by power iteration with deflation.
	MethodPower ReduceMethod = "power"
)

// ReduceConfig controls spectral reduction.
// Start with [DefaultReduceConfig] and override the fields you need.
type ReduceConfig struct {
	// Method is MethodSVD or MethodPower. Default: MethodSVD.
	Method ReduceMethod

	// Tolerance is the relative eigenvalue change at which power iteration
	// settles a direction. Ignored for MethodSVD. Must be > 0. Default: 1e-3.
	Tolerance float64

	// MaxIterations caps power iteration per direction. Ignored for
	// MethodSVD. Must be >= 1. Default: 1000.
	MaxIterations int

	// Seed drives the random starting vectors of power iteration.
	// 0 picks a random seed.
	Seed uint64

	// Logger receives warnings. Default: discard.
	Logger *slog.Logger
}

// Reduction is a dataset projected onto its dominant subspace.
type Reduction struct {
	// Projected is n × targetDim; row i is point i in the reduced basis.
	Projected [][]float64

	// Components holds the targetDim right singular vectors as orthonormal
	// rows of length d, strongest first.
	Components [][]float64

	// Mean is the row mean subtracted before decomposition.
	Mean []float64

	// SingularValues of the centered data for each component.
	SingularValues []float64
}

// DefaultReduceConfig returns a ReduceConfig with reasonable defaults.
func DefaultReduceConfig() ReduceConfig {
	return ReduceConfig{
		Method:        MethodSVD,
		Tolerance:     1e-3,
		MaxIterations: 1000,
	}
}

func applyReduceDefaults(cfg *ReduceConfig) {
	if cfg.Method == "" {
		cfg.Method = MethodSVD
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-3
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 1000
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	cfg.Logger = loggerOrDiscard(cfg.Logger)
}

func validateReduceConfig(cfg *ReduceConfig) error {
	if cfg.Method != MethodSVD && cfg.Method != MethodPower {
		return invalidArgf("Method must be %q or %q, got %q", MethodSVD, MethodPower, cfg.Method)
	}
	if cfg.Tolerance <= 0 {
		return invalidArgf("Tolerance must be > 0, got %g", cfg.Tolerance)
	}
	if cfg.MaxIterations < 1 {
		return invalidArgf("MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	return nil
}

// Reduce centers data by subtracting its mean row and projects it onto the
// top targetDim right singular vectors of the centered matrix. targetDim
// must be in [1, min(n, d)].
//
// With MethodPower, directions that hit MaxIterations are still used; the
// reduction is returned together with an error wrapping ErrNonConvergence.
func Reduce(data [][]float64, targetDim int, cfg ReduceConfig) (*Reduction, error) {
	applyReduceDefaults(&cfg)
	if err := validateReduceConfig(&cfg); err != nil {
		return nil, err
	}
	n, dims, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if limit := min(n, dims); targetDim < 1 || targetDim > limit {
		return nil, invalidArgf("targetDim must be in [1, %d], got %d", limit, targetDim)
	}

	x := toDense(data)
	mean := columnMeans(x)
	centered := center(x, mean)

	var components [][]float64
	var values []float64
	var resultErr error
	switch cfg.Method {
	case MethodPower:
		rng := rand.New(rand.NewPCG(cfg.Seed, 0))
		pr := powerIterate(centered, targetDim, cfg.Tolerance, cfg.MaxIterations, rng, cfg.Logger)
		components, values = pr.vectors, pr.values
		if pr.unsettled > 0 {
			resultErr = &NonConvergenceError{Routine: "power iteration", Iterations: cfg.MaxIterations}
		}
	default:
		components, values, err = svdComponents(centered, targetDim)
		if err != nil {
			return nil, err
		}
	}

	basis := mat.NewDense(dims, targetDim, nil)
	for i, v := range components {
		basis.SetCol(i, v)
	}
	var projected mat.Dense
	projected.Mul(centered, basis)

	return &Reduction{
		Projected:      fromDense(&projected),
		Components:     components,
		Mean:           mean,
		SingularValues: values,
	}, resultErr
}

// svdComponents returns the leading k right singular vectors as rows and the
// matching singular values.
func svdComponents(a *mat.Dense, k int) ([][]float64, []float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThinV); !ok {
		return nil, nil, errors.New("unsupervised: SVD factorization failed")
	}
	var v mat.Dense
	svd.VTo(&v)
	values := svd.Values(nil)

	components := make([][]float64, k)
	for i := range components {
		components[i] = mat.Col(nil, i, &v)
	}
	return components, values[:k], nil
}

// columnMeans returns the mean of each column of x.
func columnMeans(x *mat.Dense) []float64 {
	_, dims := x.Dims()
	mean := make([]float64, dims)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	return mean
}

// center returns x with mean subtracted from every row, which equals
// (I − J/n)·x for the all-ones matrix J.
func center(x *mat.Dense, mean []float64) *mat.Dense {
	var c mat.Dense
	c.CloneFrom(x)
	n, _ := c.Dims()
	for i := 0; i < n; i++ {
		floats.Sub(c.RawRowView(i), mean)
	}
	return &c
}

// Transform projects new points with the fitted mean and components.
func (r *Reduction) Transform(points [][]float64) ([][]float64, error) {
	dims := len(r.Mean)
	out := make([][]float64, len(points))
	diff := make([]float64, dims)
	for i, p := range points {
		if len(p) != dims {
			return nil, invalidArgf("point %d has %d dimensions, want %d", i, len(p), dims)
		}
		floats.SubTo(diff, p, r.Mean)
		out[i] = make([]float64, len(r.Components))
		for c, v := range r.Components {
			out[i][c] = floats.Dot(diff, v)
		}
	}
	return out, nil
}

// Reconstruct maps the projected rows back to the original space:
// mean + Σ_i y_i·v_i. With targetDim = rank of the centered data this
// reproduces the input up to rounding.
func (r *Reduction) Reconstruct() [][]float64 {
	out := make([][]float64, len(r.Projected))
	for i, y := range r.Projected {
		out[i] = append([]float64(nil), r.Mean...)
		for c, v := range r.Components {
			floats.AddScaled(out[i], y[c], v)
		}
	}
	return out
}
