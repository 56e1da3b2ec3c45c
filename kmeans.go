package unsupervised

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// KMeansConfig controls hard clustering with random restarts.
// Start with [DefaultKMeansConfig] and override the fields you need.
type KMeansConfig struct {
	// K is the number of clusters. Must be in [1, n].
	K int

	// Restarts is the number of independent seed-and-refine runs. The run
	// with the lowest Cost is kept. Must be >= 1. Default: 5.
	Restarts int

	// SeedMethod picks the seeding strategy when Seeder is nil.
	// Default: SeedKMeansPlusPlus.
	SeedMethod SeedMethod

	// Seeder overrides SeedMethod with a custom strategy.
	Seeder Seeder

	// Seed makes runs reproducible. Restart r draws from a PCG stream keyed
	// by (Seed, r), so results do not depend on goroutine scheduling.
	// 0 picks a random seed.
	Seed uint64

	// Tolerance and MaxIterations are passed to Refine for every restart.
	// Defaults: 1e-9 and 300.
	Tolerance     float64
	MaxIterations int

	// Workers bounds the goroutines used across restarts; leftover capacity
	// is split among each restart's assignment passes. 0 means
	// runtime.NumCPU(); 1 runs everything sequentially. Default: 0.
	Workers int

	// Logger receives restart summaries and warnings. Default: discard.
	Logger *slog.Logger
}

// KMeansResult is the best restart found by KMeans.
type KMeansResult struct {
	// Centers are the cluster means of the best restart.
	Centers [][]float64

	// Labels assigns each point to its nearest center in Centers.
	Labels []int

	// Cost is the RMS nearest-center distance of the best restart.
	Cost float64

	// Costs holds the final cost of every restart in order; failed
	// restarts are NaN.
	Costs []float64

	// BestRestart is the index of the kept restart.
	BestRestart int

	// Iterations is the Lloyd iteration count of the kept restart.
	Iterations int

	// Converged reports whether the kept restart met its tolerance.
	Converged bool
}

// DefaultKMeansConfig returns a KMeansConfig for k clusters with reasonable
// defaults.
func DefaultKMeansConfig(k int) KMeansConfig {
	return KMeansConfig{
		K:             k,
		Restarts:      5,
		SeedMethod:    SeedKMeansPlusPlus,
		Tolerance:     1e-9,
		MaxIterations: 300,
	}
}

func applyKMeansDefaults(cfg *KMeansConfig) {
	if cfg.Restarts == 0 {
		cfg.Restarts = 5
	}
	if cfg.SeedMethod == "" {
		cfg.SeedMethod = SeedKMeansPlusPlus
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	cfg.Logger = loggerOrDiscard(cfg.Logger)
}

func validateKMeansConfig(cfg *KMeansConfig) error {
	if cfg.Restarts < 1 {
		return invalidArgf("Restarts must be >= 1, got %d", cfg.Restarts)
	}
	if cfg.Workers < 0 {
		return invalidArgf("Workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.Seeder == nil {
		if _, err := cfg.SeedMethod.Seeder(1); err != nil {
			return err
		}
	}
	return nil
}

// restartRun is the self-contained outcome of one seed-and-refine run.
type restartRun struct {
	refinement *Refinement
	cost       float64
	err        error
}

// KMeans clusters data into cfg.K groups. It runs cfg.Restarts independent
// seed → Refine passes concurrently, scores each with Cost and keeps the
// cheapest (lowest restart index on ties).
//
// Restarts that hit an empty cluster are logged and discarded; if all of
// them fail the first failure is returned. If the kept restart did not
// converge, the result is returned together with an error wrapping
// ErrNonConvergence.
func KMeans(data [][]float64, cfg KMeansConfig) (*KMeansResult, error) {
	applyKMeansDefaults(&cfg)
	if err := validateKMeansConfig(&cfg); err != nil {
		return nil, err
	}
	n, _, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if err := validateK(cfg.K, n); err != nil {
		return nil, err
	}

	parallelRestarts := min(cfg.Workers, cfg.Restarts)
	innerWorkers := max(1, cfg.Workers/cfg.Restarts)

	seeder := cfg.Seeder
	if seeder == nil {
		seeder, _ = cfg.SeedMethod.Seeder(innerWorkers)
	}
	refineCfg := RefineConfig{
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
		Workers:       innerWorkers,
		Logger:        cfg.Logger,
	}

	runs := make([]restartRun, cfg.Restarts)
	var g errgroup.Group
	g.SetLimit(parallelRestarts)
	for r := range runs {
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(r)))
			runs[r] = runRestart(data, cfg.K, seeder, rng, refineCfg)
			// Invalid arguments are fatal for every restart alike.
			if errors.Is(runs[r].err, ErrInvalidArgument) {
				return runs[r].err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reduceRestarts(runs, cfg.Logger)
}

// runRestart seeds, refines and scores one candidate. It touches no state
// outside its arguments.
func runRestart(data [][]float64, k int, seeder Seeder, rng *rand.Rand, cfg RefineConfig) restartRun {
	initial, err := seeder.Seed(data, k, rng)
	if err != nil {
		return restartRun{cost: math.NaN(), err: err}
	}
	ref, err := Refine(data, initial, cfg)
	if ref == nil {
		return restartRun{cost: math.NaN(), err: err}
	}
	return restartRun{refinement: ref, cost: Cost(ref.Centers, data), err: err}
}

// reduceRestarts keeps the minimum-cost candidate.
func reduceRestarts(runs []restartRun, logger *slog.Logger) (*KMeansResult, error) {
	costs := make([]float64, len(runs))
	best := -1
	var firstErr error
	for r, run := range runs {
		costs[r] = run.cost
		if run.refinement == nil {
			logger.Warn("kmeans: restart discarded", "restart", r, "error", run.err)
			if firstErr == nil {
				firstErr = run.err
			}
			continue
		}
		logger.Debug("kmeans: restart finished", "restart", r, "cost", run.cost,
			"iterations", run.refinement.Iterations, "converged", run.refinement.Converged)
		if best < 0 || run.cost < runs[best].cost {
			best = r
		}
	}
	if best < 0 {
		return nil, firstErr
	}

	kept := runs[best].refinement
	res := &KMeansResult{
		Centers:     kept.Centers,
		Labels:      kept.Labels,
		Cost:        runs[best].cost,
		Costs:       costs,
		BestRestart: best,
		Iterations:  kept.Iterations,
		Converged:   kept.Converged,
	}
	if !kept.Converged {
		return res, runs[best].err
	}
	return res, nil
}

// Members groups point indices by cluster label, e.g. to list the names
// associated with each cluster. Labels outside [0, k) are ignored.
func Members(labels []int, k int) [][]int {
	groups := make([][]int, k)
	for i, l := range labels {
		if l >= 0 && l < k {
			groups[l] = append(groups[l], i)
		}
	}
	return groups
}
