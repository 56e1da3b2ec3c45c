package unsupervised

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeCase_SinglePoint(t *testing.T) {
	data := [][]float64{{1.0, 2.0}}

	cfg := DefaultKMeansConfig(1)
	cfg.Seed = 1
	res, err := KMeans(data, cfg)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}}, res.Centers)
	assert.Equal(t, []int{0}, res.Labels)
	assert.Equal(t, 0.0, res.Cost)

	// One point has a zero covariance, so the only component is singular and
	// the row falls back to uniform.
	m, err := FitMixture(data, data, DefaultMixtureConfig())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Responsibilities.At(0, 0))
	assert.Greater(t, m.SingularSkips, 0)

	red, err := Reduce(data, 1, DefaultReduceConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, red.Projected[0][0])
}

func TestEdgeCase_KEqualsN(t *testing.T) {
	data := [][]float64{{0, 0}, {4, 0}, {0, 4}, {4, 4}}
	cfg := DefaultKMeansConfig(4)
	cfg.SeedMethod = SeedGonzalez
	cfg.Seed = 2

	res, err := KMeans(data, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Cost)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, res.Labels)
}

func TestEdgeCase_OneDimensional(t *testing.T) {
	data := [][]float64{{0}, {0.5}, {1}, {50}, {50.5}, {51}}
	cfg := DefaultKMeansConfig(2)
	cfg.Seed = 3

	res, err := KMeans(data, cfg)
	require.NoError(t, err)
	assert.Less(t, closestDistance(res.Centers, []float64{0.5}), 1e-12)
	assert.Less(t, closestDistance(res.Centers, []float64{50.5}), 1e-12)

	red, err := Reduce(data, 1, DefaultReduceConfig())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Abs(red.Components[0][0]), 1e-12)
}

func TestEdgeCase_NonFiniteInputRejected(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		data := [][]float64{{0, 0}, {1, bad}}

		_, err := KMeans(data, DefaultKMeansConfig(1))
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = FitMixture(data, [][]float64{{0, 0}}, DefaultMixtureConfig())
		assert.ErrorIs(t, err, ErrInvalidArgument)
		_, err = Reduce(data, 1, DefaultReduceConfig())
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestEdgeCase_OverflowingCoordinatesRejected(t *testing.T) {
	data := [][]float64{{-1e200}, {1e200}, {0}}

	_, err := Refine(data, [][]float64{{1e200}}, DefaultRefineConfig())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	cfg := DefaultKMeansConfig(1)
	cfg.Seed = 1
	_, err = KMeans(data, cfg)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = FitMixture(data, [][]float64{{0}}, DefaultMixtureConfig())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Reduce(data, 1, DefaultReduceConfig())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEdgeCase_LargeFiniteCoordinates(t *testing.T) {
	data := [][]float64{{-1e150}, {1e150}, {0}}

	cfg := DefaultKMeansConfig(1)
	cfg.Seed = 1
	res, err := KMeans(data, cfg)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, res.Labels)
	assert.False(t, math.IsInf(res.Cost, 0))
}

func TestEdgeCase_ZeroDimensionalPoints(t *testing.T) {
	_, err := KMeans([][]float64{{}, {}}, DefaultKMeansConfig(1))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEdgeCase_InputNotModified(t *testing.T) {
	data := blobs(1, threeBlobMeans, 10, 1)
	snapshot := copyRows(data)

	cfg := DefaultKMeansConfig(3)
	cfg.Seed = 4
	_, _ = KMeans(data, cfg)
	_, _ = FitMixtureSeeded(data, 3, MixtureConfig{Seed: 4})
	_, _ = Reduce(data, 2, ReduceConfig{Method: MethodPower, Seed: 4})

	assert.Equal(t, snapshot, data)
}

func TestErrorTypes(t *testing.T) {
	dce := &DegenerateClusterError{Cluster: 2, Iteration: 5}
	assert.True(t, errors.Is(dce, ErrDegenerateCluster))
	assert.Contains(t, dce.Error(), "cluster 2")

	nce := &NonConvergenceError{Routine: "mixture", Iterations: 9}
	assert.True(t, errors.Is(nce, ErrNonConvergence))
	assert.Contains(t, nce.Error(), "mixture")

	err := invalidArgf("k must be in [1, %d], got %d", 3, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "unsupervised: invalid argument: k must be in [1, 3], got 4", err.Error())
}

func TestLogger_WarnsOnIterationCap(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultRefineConfig()
	cfg.MaxIterations = 1
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	_, err := Refine(twoPairs, [][]float64{{0, 0}, {0, 1}}, cfg)
	require.ErrorIs(t, err, ErrNonConvergence)
	assert.True(t, strings.Contains(buf.String(), "lloyd: iteration cap reached"), buf.String())
}

func TestLogger_Constructors(t *testing.T) {
	assert.NotNil(t, NewTextLogger(slog.LevelDebug))
	assert.NotNil(t, NewJSONLogger(slog.LevelInfo))
	assert.NotNil(t, loggerOrDiscard(nil))

	l := NewTextLogger(slog.LevelInfo)
	assert.Same(t, l, loggerOrDiscard(l))
}
