// Package unsupervised implements three unsupervised-learning routines over
// dense numeric data: k-means hard clustering, Gaussian mixture soft
// clustering, and spectral (PCA) dimensionality reduction.
//
// Data is passed as [][]float64, one row per point, all rows the same
// length. Inputs are never modified.
//
// Hard clustering runs several independent seed-and-refine restarts in
// parallel and keeps the one with the lowest RMS nearest-center distance:
//
//	cfg := unsupervised.DefaultKMeansConfig(3)
//	cfg.Seed = 42
//	result, err := unsupervised.KMeans(data, cfg)
//	// result.Centers[j] is the mean of cluster j
//	// result.Labels[i] is the cluster of point i
//	// result.Cost is sqrt(mean squared distance to nearest center)
//
// The stages are also exported: a [Seeder] ([Gonzalez] or [KMeansPlusPlus])
// picks initial centers, [Refine] runs Lloyd iterations from them, and
// [Cost] scores a center set.
//
// Soft clustering fits a mixture of Gaussians by Expectation-Maximization,
// starting from hard assignments to a set of initial centers:
//
//	mix, err := unsupervised.FitMixture(data, initialCenters, unsupervised.DefaultMixtureConfig())
//	// mix.Responsibilities.At(i, j) is how much point i belongs to cluster j
//	// mix.Components[j].Mean and .Covariance are the fitted parameters
//
// Spectral reduction centers the data and projects it onto its top right
// singular vectors:
//
//	red, err := unsupervised.Reduce(data, 2, unsupervised.DefaultReduceConfig())
//	// red.Projected[i] is point i in the 2-dimensional subspace
//
// # Errors
//
// Invalid input returns an error wrapping [ErrInvalidArgument]. An empty
// cluster during Lloyd refinement returns a [*DegenerateClusterError].
// Iterative routines that hit their iteration cap return their latest result
// together with an error wrapping [ErrNonConvergence], so callers can decide
// whether the approximation is good enough.
//
// # Logging
//
// Every config has a Logger field taking a *slog.Logger. Iteration summaries
// are logged at Debug, iteration caps and discarded restarts at Warn. A nil
// Logger discards everything.
package unsupervised
