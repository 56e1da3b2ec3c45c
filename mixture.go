package unsupervised

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// MixtureConfig controls Gaussian mixture fitting.
// Start with [DefaultMixtureConfig] and override the fields you need.
type MixtureConfig struct {
	// Tolerance is the score change below which EM stops. Must be > 0.
	// Default: 0.1.
	Tolerance float64

	// NormalizeScore divides the negative log-likelihood by the number of
	// points before comparing successive scores, making Tolerance
	// independent of n. Default: false (compare raw scores).
	NormalizeScore bool

	// SingularThreshold is the |det Σ| at or below which a component is
	// skipped for an iteration. Must be >= 0. Default: 1e-5.
	SingularThreshold float64

	// MaxIterations caps the number of EM rounds. Reaching it returns the
	// current fit with an ErrNonConvergence error. Must be >= 1.
	// Default: 500.
	MaxIterations int

	// SeedMethod and Seed are only used by FitMixtureSeeded to choose the
	// initial centers. Seed 0 picks a random seed.
	SeedMethod SeedMethod
	Seed       uint64

	// Logger receives iteration summaries and warnings. Default: discard.
	Logger *slog.Logger
}

// Mixture is a fitted Gaussian mixture.
type Mixture struct {
	// Responsibilities is n×k; row i holds point i's membership weights and
	// sums to 1.
	Responsibilities *mat.Dense

	// Components holds the per-cluster weight, mean and covariance.
	Components []Component

	// Score is the final negative log-likelihood.
	Score float64

	// Iterations is the number of EM rounds performed.
	Iterations int

	// Converged is false when MaxIterations was reached first.
	Converged bool

	// SingularSkips counts (iteration, component) pairs skipped because the
	// covariance was singular.
	SingularSkips int

	// UniformRows counts rows reset to 1/k because every component had zero
	// density at that point.
	UniformRows int
}

// DefaultMixtureConfig returns a MixtureConfig with reasonable defaults.
func DefaultMixtureConfig() MixtureConfig {
	return MixtureConfig{
		Tolerance:         0.1,
		SingularThreshold: DefaultSingularThreshold,
		MaxIterations:     500,
		SeedMethod:        SeedKMeansPlusPlus,
	}
}

func applyMixtureDefaults(cfg *MixtureConfig) {
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 0.1
	}
	if cfg.SingularThreshold == 0 {
		cfg.SingularThreshold = DefaultSingularThreshold
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 500
	}
	if cfg.SeedMethod == "" {
		cfg.SeedMethod = SeedKMeansPlusPlus
	}
	cfg.Logger = loggerOrDiscard(cfg.Logger)
}

func validateMixtureConfig(cfg *MixtureConfig) error {
	if cfg.Tolerance <= 0 {
		return invalidArgf("Tolerance must be > 0, got %g", cfg.Tolerance)
	}
	if cfg.SingularThreshold < 0 {
		return invalidArgf("SingularThreshold must be >= 0, got %g", cfg.SingularThreshold)
	}
	if cfg.MaxIterations < 1 {
		return invalidArgf("MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	return nil
}

// FitMixtureSeeded chooses k initial centers with cfg.SeedMethod and then
// calls FitMixture.
func FitMixtureSeeded(data [][]float64, k int, cfg MixtureConfig) (*Mixture, error) {
	applyMixtureDefaults(&cfg)
	seeder, err := cfg.SeedMethod.Seeder(1)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	initial, err := seeder.Seed(data, k, rand.New(rand.NewPCG(seed, 0)))
	if err != nil {
		return nil, err
	}
	return FitMixture(data, initial, cfg)
}

// FitMixture fits a mixture of len(initial) Gaussians to data by
// Expectation-Maximization.
//
// Responsibilities start as a hard assignment of each point to its nearest
// initial center. Each round re-estimates every component from the current
// responsibilities (M-step), then sets each responsibility to the component
// density at the point and normalizes rows to sum to 1 (E-step). Components
// with a singular covariance contribute zero density for that round; rows
// where every density is zero become uniform. The loop stops once the
// negative log-likelihood changes by less than cfg.Tolerance between rounds.
func FitMixture(data, initial [][]float64, cfg MixtureConfig) (*Mixture, error) {
	applyMixtureDefaults(&cfg)
	if err := validateMixtureConfig(&cfg); err != nil {
		return nil, err
	}
	n, dims, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if err := validateCenters(initial, n, dims); err != nil {
		return nil, err
	}

	k := len(initial)
	resp := mat.NewDense(n, k, nil)
	for i, x := range data {
		j, _ := nearestSq(initial, x)
		resp.Set(i, j, 1)
	}

	comps := make([]Component, k)
	for j := range comps {
		comps[j] = newComponent(initial[j])
	}
	dens := mat.NewDense(n, k, nil)

	m := &Mixture{Responsibilities: resp, Components: comps}
	var prev float64
	for m.Iterations < cfg.MaxIterations {
		m.Iterations++

		for j := range comps {
			comps[j].fit(data, resp, j, cfg.SingularThreshold)
			if comps[j].Singular {
				m.SingularSkips++
				cfg.Logger.Debug("mixture: component skipped", "component", j,
					"iteration", m.Iterations, "weight", comps[j].Weight, "reason", ErrSingularCovariance)
			}
		}

		m.UniformRows += expectation(data, comps, resp, dens)

		score := negLogLikelihood(resp, dens, comps)
		if cfg.NormalizeScore {
			score /= float64(n)
		}
		m.Score = score
		cfg.Logger.Debug("mixture: iteration", "iteration", m.Iterations, "score", score)

		// The first round only establishes a baseline.
		if m.Iterations > 1 && math.Abs(score-prev) < cfg.Tolerance {
			m.Converged = true
			break
		}
		prev = score
	}

	if !m.Converged {
		cfg.Logger.Warn("mixture: iteration cap reached", "iterations", m.Iterations, "score", m.Score)
		return m, &NonConvergenceError{Routine: "mixture", Iterations: m.Iterations}
	}
	return m, nil
}

// expectation overwrites resp with normalized component densities and keeps
// the raw densities in dens. It returns the number of rows that had to be
// reset to uniform.
func expectation(data [][]float64, comps []Component, resp, dens *mat.Dense) int {
	k := len(comps)
	uniform := 0
	for i, x := range data {
		var sum float64
		for j := range comps {
			p := comps[j].Density(x)
			dens.Set(i, j, p)
			sum += p
		}
		row := resp.RawRowView(i)
		if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
			for j := range row {
				row[j] = 1 / float64(k)
			}
			uniform++
			continue
		}
		for j := range row {
			row[j] = dens.At(i, j) / sum
		}
	}
	return uniform
}

// negLogLikelihood sums -log(r_ij · p_ij) over non-singular components,
// skipping terms whose product is not a positive finite number.
func negLogLikelihood(resp, dens *mat.Dense, comps []Component) float64 {
	n, _ := resp.Dims()
	var score float64
	for i := 0; i < n; i++ {
		for j := range comps {
			if comps[j].Singular {
				continue
			}
			t := resp.At(i, j) * dens.At(i, j)
			if t <= 0 || math.IsInf(t, 0) || math.IsNaN(t) {
				continue
			}
			score -= math.Log(t)
		}
	}
	return score
}

// Means returns the component means, one row per cluster.
func (m *Mixture) Means() [][]float64 {
	out := make([][]float64, len(m.Components))
	for j, c := range m.Components {
		out[j] = append([]float64(nil), c.Mean...)
	}
	return out
}

// Covariances returns copies of the component covariance matrices.
func (m *Mixture) Covariances() []*mat.SymDense {
	out := make([]*mat.SymDense, len(m.Components))
	for j, c := range m.Components {
		out[j] = mat.NewSymDense(c.Covariance.SymmetricDim(), nil)
		out[j].CopySym(c.Covariance)
	}
	return out
}

// Labels returns the component with the largest responsibility for each
// point (lowest index on ties).
func (m *Mixture) Labels() []int {
	n, _ := m.Responsibilities.Dims()
	labels := make([]int, n)
	for i := range labels {
		row := m.Responsibilities.RawRowView(i)
		best := 0
		for j, v := range row {
			if v > row[best] {
				best = j
			}
		}
		labels[i] = best
	}
	return labels
}

// Members lists, for each component, the points whose responsibility is at
// least threshold. A point may appear in several components.
func (m *Mixture) Members(threshold float64) [][]int {
	n, k := m.Responsibilities.Dims()
	groups := make([][]int, k)
	for i := 0; i < n; i++ {
		for j, v := range m.Responsibilities.RawRowView(i) {
			if v >= threshold {
				groups[j] = append(groups[j], i)
			}
		}
	}
	return groups
}
