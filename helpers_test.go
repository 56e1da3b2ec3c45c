package unsupervised

import (
	"math"
	"math/rand/v2"
)

// blobs draws perMean points around each mean with the given standard
// deviation per coordinate.
func blobs(seed uint64, means [][]float64, perMean int, stddev float64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, 1))
	data := make([][]float64, 0, len(means)*perMean)
	for _, m := range means {
		for i := 0; i < perMean; i++ {
			p := make([]float64, len(m))
			for j := range p {
				p[j] = m[j] + rng.NormFloat64()*stddev
			}
			data = append(data, p)
		}
	}
	return data
}

// closestDistance returns the distance from want to the nearest of got.
func closestDistance(got [][]float64, want []float64) float64 {
	best := math.Inf(1)
	for _, g := range got {
		best = math.Min(best, Distance(g, want))
	}
	return best
}

var threeBlobMeans = [][]float64{{0, 0}, {20, 0}, {0, 20}}

// twoPairs is the four-point dataset whose 2-means optimum is
// (0, 0.5) and (10, 10.5) with cost 0.5.
var twoPairs = [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}}
