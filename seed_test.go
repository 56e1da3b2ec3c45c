package unsupervised

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containsRow(data [][]float64, row []float64) bool {
	for _, d := range data {
		if Distance(d, row) == 0 {
			return true
		}
	}
	return false
}

func TestGonzalez_SingleCenterIsDataPoint(t *testing.T) {
	data := blobs(11, threeBlobMeans, 10, 1)
	seen := map[int]bool{}
	for seed := uint64(1); seed <= 50; seed++ {
		centers, err := Gonzalez{}.Seed(data, 1, rand.New(rand.NewPCG(seed, 0)))
		require.NoError(t, err)
		require.Len(t, centers, 1)
		require.True(t, containsRow(data, centers[0]))
		for i, d := range data {
			if Distance(d, centers[0]) == 0 {
				seen[i] = true
			}
		}
	}
	assert.Greater(t, len(seen), 1, "first center should vary with the seed")
}

func TestGonzalez_KEqualsNVisitsEveryPoint(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {9, 1}, {3, 7}}
	centers, err := Gonzalez{}.Seed(data, len(data), rand.New(rand.NewPCG(3, 0)))
	require.NoError(t, err)
	require.Len(t, centers, len(data))
	for i, d := range data {
		assert.True(t, containsRow(centers, d), "point %d never chosen", i)
	}
}

func TestGonzalez_PicksFarthestPoint(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 0}, {2, 0}, {100, 0}}
	for seed := uint64(1); seed <= 20; seed++ {
		centers, err := Gonzalez{}.Seed(data, 2, rand.New(rand.NewPCG(seed, 0)))
		require.NoError(t, err)
		if centers[0][0] == 100 {
			assert.Equal(t, []float64{0, 0}, centers[1])
		} else {
			assert.Equal(t, []float64{100, 0}, centers[1])
		}
	}
}

func TestGonzalez_DeterministicForSeed(t *testing.T) {
	data := blobs(5, threeBlobMeans, 20, 2)
	a, err := Gonzalez{}.Seed(data, 3, rand.New(rand.NewPCG(9, 0)))
	require.NoError(t, err)
	b, err := Gonzalez{Workers: 4}.Seed(data, 3, rand.New(rand.NewPCG(9, 0)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSeeders_CopyRows(t *testing.T) {
	data := [][]float64{{1, 2}, {3, 4}}
	for _, s := range []Seeder{Gonzalez{}, KMeansPlusPlus{}} {
		centers, err := s.Seed(data, 2, rand.New(rand.NewPCG(1, 0)))
		require.NoError(t, err)
		centers[0][0] = -99
		centers[1][0] = -99
		assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, data, "%T aliased the input", s)
	}
}

func TestKMeansPlusPlus_SelectionFrequency(t *testing.T) {
	// Two candidate points at distances 1 and 2 from a fixed first center:
	// selection odds must follow 1² : 2².
	data := [][]float64{{1, 0}, {0, 2}}
	minSq := newMinSq(len(data))
	updateMinSq(data, []float64{0, 0}, minSq, 1)
	require.Equal(t, []float64{1, 4}, minSq)

	rng := rand.New(rand.NewPCG(2024, 0))
	const trials = 10000
	counts := make([]int, 2)
	for i := 0; i < trials; i++ {
		counts[sampleWeighted(minSq, rng)]++
	}
	freq := float64(counts[1]) / trials
	// Binomial standard deviation is 0.004; allow five of them.
	assert.InDelta(t, 0.8, freq, 0.02)
}

func TestKMeansPlusPlus_NeverPicksExistingCenterWhenOthersRemain(t *testing.T) {
	data := [][]float64{{0, 0}, {0, 0}, {5, 5}}
	for seed := uint64(1); seed <= 30; seed++ {
		centers, err := KMeansPlusPlus{}.Seed(data, 2, rand.New(rand.NewPCG(seed, 0)))
		require.NoError(t, err)
		assert.NotEqual(t, centers[0], centers[1], "seed %d", seed)
	}
}

func TestKMeansPlusPlus_AllWeightsZero(t *testing.T) {
	data := [][]float64{{2, 2}, {2, 2}, {2, 2}}
	centers, err := KMeansPlusPlus{}.Seed(data, 3, rand.New(rand.NewPCG(1, 0)))
	require.NoError(t, err)
	require.Len(t, centers, 3)
	for _, c := range centers {
		assert.Equal(t, []float64{2, 2}, c)
	}
}

func TestSampleWeighted_ZeroSumIsUniform(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	counts := make([]int, 4)
	for i := 0; i < 4000; i++ {
		counts[sampleWeighted([]float64{0, 0, 0, 0}, rng)]++
	}
	for i, c := range counts {
		assert.InDelta(t, 1000, c, 150, "bucket %d", i)
	}
}

func TestSeeders_InvalidK(t *testing.T) {
	data := [][]float64{{0}, {1}, {2}}
	for _, s := range []Seeder{Gonzalez{}, KMeansPlusPlus{}} {
		for _, k := range []int{0, -1, 4} {
			_, err := s.Seed(data, k, rand.New(rand.NewPCG(1, 0)))
			assert.ErrorIs(t, err, ErrInvalidArgument, "%T k=%d", s, k)
		}
		_, err := s.Seed(nil, 1, rand.New(rand.NewPCG(1, 0)))
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestParseSeedMethod(t *testing.T) {
	tests := []struct {
		in   string
		want SeedMethod
	}{
		{"", SeedKMeansPlusPlus},
		{"p", SeedKMeansPlusPlus},
		{"kmeans++", SeedKMeansPlusPlus},
		{"g", SeedGonzalez},
		{" Gonzalez ", SeedGonzalez},
	}
	for _, tt := range tests {
		got, err := ParseSeedMethod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSeedMethod("random")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSeedMethod_Seeder(t *testing.T) {
	s, err := SeedGonzalez.Seeder(2)
	require.NoError(t, err)
	assert.Equal(t, Gonzalez{Workers: 2}, s)

	s, err = SeedMethod("").Seeder(1)
	require.NoError(t, err)
	assert.IsType(t, KMeansPlusPlus{}, s)

	_, err = SeedMethod("bogus").Seeder(1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewMinSq(t *testing.T) {
	for _, v := range newMinSq(3) {
		assert.True(t, math.IsInf(v, 1))
	}
}
