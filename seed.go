package unsupervised

import (
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Seeder picks k initial centers from data. Implementations copy the chosen
// rows, so the returned center set never aliases data.
type Seeder interface {
	Seed(data [][]float64, k int, rng *rand.Rand) ([][]float64, error)
}

// SeedMethod names a seeding strategy.
type SeedMethod string

const (
	SeedGonzalez       SeedMethod = "gonzalez"
	SeedKMeansPlusPlus SeedMethod = "kmeans++"
)

// ParseSeedMethod maps a strategy name to a SeedMethod. The one-letter forms
// "g" (Gonzalez) and "p" (k-means++) are accepted; the empty string selects
// k-means++.
func ParseSeedMethod(s string) (SeedMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "p", "kmeans++", "k-means++", "kmeanspp":
		return SeedKMeansPlusPlus, nil
	case "g", "gonzalez", "farthest":
		return SeedGonzalez, nil
	default:
		return "", invalidArgf("unknown seed method %q", s)
	}
}

// Seeder returns the Seeder for m, running its distance passes on up to
// workers goroutines.
func (m SeedMethod) Seeder(workers int) (Seeder, error) {
	switch m {
	case SeedGonzalez:
		return Gonzalez{Workers: workers}, nil
	case SeedKMeansPlusPlus, "":
		return KMeansPlusPlus{Workers: workers}, nil
	default:
		return nil, invalidArgf("unknown seed method %q", string(m))
	}
}

// Gonzalez is the farthest-point heuristic: after a uniformly random first
// center, each further center is the point farthest from its nearest chosen
// center. Ties go to the lowest point index.
type Gonzalez struct {
	// Workers parallelizes the per-point distance pass. <= 1 is sequential.
	Workers int
}

// Seed implements Seeder.
func (g Gonzalez) Seed(data [][]float64, k int, rng *rand.Rand) ([][]float64, error) {
	n, _, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if err := validateK(k, n); err != nil {
		return nil, err
	}

	centers := make([][]float64, 0, k)
	centers = append(centers, copyRow(data[rng.IntN(n)]))

	minSq := newMinSq(n)
	for len(centers) < k {
		updateMinSq(data, centers[len(centers)-1], minSq, g.Workers)

		next, farthest := 0, math.Inf(-1)
		for i, d := range minSq {
			if d > farthest {
				farthest = d
				next = i
			}
		}
		centers = append(centers, copyRow(data[next]))
	}
	return centers, nil
}

// KMeansPlusPlus samples each further center with probability proportional
// to its squared distance from the nearest chosen center. Points coinciding
// with a chosen center have weight zero; when every weight is zero the next
// center is drawn uniformly instead.
type KMeansPlusPlus struct {
	// Workers parallelizes the per-point distance pass. <= 1 is sequential.
	Workers int
}

// Seed implements Seeder.
func (p KMeansPlusPlus) Seed(data [][]float64, k int, rng *rand.Rand) ([][]float64, error) {
	n, _, err := validateData(data)
	if err != nil {
		return nil, err
	}
	if err := validateK(k, n); err != nil {
		return nil, err
	}

	centers := make([][]float64, 0, k)
	centers = append(centers, copyRow(data[rng.IntN(n)]))

	minSq := newMinSq(n)
	for len(centers) < k {
		updateMinSq(data, centers[len(centers)-1], minSq, p.Workers)
		centers = append(centers, copyRow(data[sampleWeighted(minSq, rng)]))
	}
	return centers, nil
}

// sampleWeighted draws an index with probability proportional to weights,
// falling back to a uniform draw when the weights sum to zero.
func sampleWeighted(weights []float64, rng *rand.Rand) int {
	if floats.Sum(weights) <= 0 {
		return rng.IntN(len(weights))
	}
	idx, ok := sampleuv.NewWeighted(weights, rng).Take()
	if !ok {
		return rng.IntN(len(weights))
	}
	return idx
}

func newMinSq(n int) []float64 {
	minSq := make([]float64, n)
	for i := range minSq {
		minSq[i] = math.Inf(1)
	}
	return minSq
}

func copyRow(row []float64) []float64 {
	return append([]float64(nil), row...)
}
