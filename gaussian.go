package unsupervised

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultSingularThreshold is the |det Σ| at or below which a component's
// covariance is treated as singular and the component is skipped.
const DefaultSingularThreshold = 1e-5

// Component holds the parameters of one Gaussian in a mixture.
type Component struct {
	// Weight is the component's total responsibility mass, Σ_i r_ij.
	Weight float64

	// Mean is the responsibility-weighted mean.
	Mean []float64

	// Covariance is the responsibility-weighted covariance, normalized by
	// Weight.
	Covariance *mat.SymDense

	// Singular is set when the covariance determinant magnitude is at or
	// below the degeneracy threshold, the covariance could not be inverted,
	// or Weight is zero. Singular components have zero density.
	Singular bool

	inv  mat.Dense
	norm float64 // 1 / sqrt((2π)^d |Σ|)
	diff *mat.VecDense
}

func newComponent(mean []float64) Component {
	d := len(mean)
	return Component{
		Mean:       append([]float64(nil), mean...),
		Covariance: mat.NewSymDense(d, nil),
		diff:       mat.NewVecDense(d, nil),
	}
}

// fit re-estimates the component from column j of resp and prepares the
// inverse and normalizing constant used by Density. A component with zero
// weight keeps its previous mean and is marked singular.
func (c *Component) fit(data [][]float64, resp *mat.Dense, j int, threshold float64) {
	n := len(data)
	c.Weight = 0
	for i := 0; i < n; i++ {
		c.Weight += resp.At(i, j)
	}
	if c.Weight <= 0 {
		c.Singular = true
		return
	}

	clear(c.Mean)
	for i := 0; i < n; i++ {
		if w := resp.At(i, j); w != 0 {
			floats.AddScaled(c.Mean, w, data[i])
		}
	}
	floats.Scale(1/c.Weight, c.Mean)

	c.Covariance.Zero()
	for i := 0; i < n; i++ {
		w := resp.At(i, j)
		if w == 0 {
			continue
		}
		floats.SubTo(c.diff.RawVector().Data, data[i], c.Mean)
		c.Covariance.SymRankOne(c.Covariance, w, c.diff)
	}
	c.Covariance.ScaleSym(1/c.Weight, c.Covariance)

	c.Singular = !c.prepare(threshold)
}

// prepare inverts the covariance and computes the normalizing constant.
// It reports false when the covariance must be treated as singular.
func (c *Component) prepare(threshold float64) bool {
	det := mat.Det(c.Covariance)
	if math.IsNaN(det) || math.Abs(det) <= threshold {
		return false
	}
	if err := c.inv.Inverse(c.Covariance); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return false
		}
	}
	d := float64(len(c.Mean))
	c.norm = 1 / math.Sqrt(math.Pow(2*math.Pi, d)*math.Abs(det))
	return !math.IsInf(c.norm, 0) && !math.IsNaN(c.norm)
}

// Density evaluates the Gaussian at x:
//
//	exp(-½ (x-μ)ᵀ Σ⁻¹ (x-μ)) / sqrt((2π)^d |Σ|)
//
// Singular components and components that were never fitted (such as the
// zero value) return 0. Density reuses scratch space on c, so concurrent
// calls on the same Component are not safe.
func (c *Component) Density(x []float64) float64 {
	if c.Singular || c.norm == 0 {
		return 0
	}
	if c.diff == nil || c.diff.Len() != len(x) {
		c.diff = mat.NewVecDense(len(x), nil)
	}
	floats.SubTo(c.diff.RawVector().Data, x, c.Mean)
	q := mat.Inner(c.diff, &c.inv, c.diff)
	p := math.Exp(-q/2) * c.norm
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}
