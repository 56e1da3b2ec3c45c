package unsupervised

import (
	"log/slog"
	"math"
	"runtime"

	"gonum.org/v1/gonum/floats"
)

// RefineConfig controls Lloyd refinement.
// Start with [DefaultRefineConfig] and override the fields you need.
type RefineConfig struct {
	// Tolerance is the largest per-coordinate center movement still treated
	// as converged. Must be >= 0. Default: 1e-9.
	Tolerance float64

	// MaxIterations caps the number of assign/update rounds. Reaching it
	// returns the current centers together with an ErrNonConvergence error.
	// Must be >= 1. Default: 300.
	MaxIterations int

	// Workers controls the goroutines used for the assignment pass.
	// 0 means runtime.NumCPU(); 1 runs sequentially. Default: 0.
	Workers int

	// Logger receives iteration summaries and warnings. Default: discard.
	Logger *slog.Logger
}

// Refinement is the outcome of a Lloyd run.
type Refinement struct {
	// Centers are the final cluster means, one row per cluster.
	Centers [][]float64

	// Labels assigns each point to its nearest final center.
	Labels []int

	// Iterations is the number of assign/update rounds performed.
	Iterations int

	// Converged is false when MaxIterations was reached first.
	Converged bool
}

// DefaultRefineConfig returns a RefineConfig with reasonable defaults.
func DefaultRefineConfig() RefineConfig {
	return RefineConfig{
		Tolerance:     1e-9,
		MaxIterations: 300,
	}
}

func applyRefineDefaults(cfg *RefineConfig) {
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-9
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 300
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Logger = loggerOrDiscard(cfg.Logger)
}

func validateRefineConfig(cfg *RefineConfig) error {
	if cfg.Tolerance < 0 {
		return invalidArgf("Tolerance must be >= 0, got %g", cfg.Tolerance)
	}
	if cfg.MaxIterations < 1 {
		return invalidArgf("MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.Workers < 0 {
		return invalidArgf("Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// Refine runs Lloyd's algorithm on data starting from initial: assign each
// point to its nearest center, move each center to the mean of its points,
// and repeat until no coordinate moves by more than cfg.Tolerance.
//
// initial is copied and never modified. A cluster that receives no points
// makes its mean undefined; Refine then stops and returns a
// *DegenerateClusterError. When MaxIterations is reached the latest centers
// are returned along with an error wrapping ErrNonConvergence.
func Refine(data, initial [][]float64, cfg RefineConfig) (*Refinement, error) {
	applyRefineDefaults(&cfg)
	if err := validateRefineConfig(&cfg); err != nil {
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
	centers := copyRows(initial)
	labels := make([]int, n)
	sums := make([][]float64, k)
	for j := range sums {
		sums[j] = make([]float64, dims)
	}
	counts := make([]int, k)

	converged := false
	iter := 0
	for iter < cfg.MaxIterations && !converged {
		iter++
		assignInto(data, centers, labels, nil, cfg.Workers)

		for j := range sums {
			clear(sums[j])
			counts[j] = 0
		}
		for i, l := range labels {
			floats.Add(sums[l], data[i])
			counts[l]++
		}

		shift := 0.0
		for j := range sums {
			if counts[j] == 0 {
				cfg.Logger.Warn("lloyd: empty cluster", "cluster", j, "iteration", iter)
				return nil, &DegenerateClusterError{Cluster: j, Iteration: iter}
			}
			floats.Scale(1/float64(counts[j]), sums[j])
			for c, v := range sums[j] {
				shift = math.Max(shift, math.Abs(v-centers[j][c]))
			}
			copy(centers[j], sums[j])
		}

		cfg.Logger.Debug("lloyd: iteration", "iteration", iter, "max_shift", shift)
		converged = shift <= cfg.Tolerance
	}

	// Labels from the last pass were computed before the final move.
	assignInto(data, centers, labels, nil, cfg.Workers)

	r := &Refinement{
		Centers:    centers,
		Labels:     labels,
		Iterations: iter,
		Converged:  converged,
	}
	if !converged {
		cfg.Logger.Warn("lloyd: iteration cap reached", "iterations", iter, "tolerance", cfg.Tolerance)
		return r, &NonConvergenceError{Routine: "lloyd", Iterations: iter}
	}
	return r, nil
}
