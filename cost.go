package unsupervised

import "math"

// Cost returns the root-mean-square distance from each point to its nearest
// center: sqrt(mean(min_j ||x - c_j||²)). It is used to pick the best of
// several restarts and is not part of any convergence test.
// Returns NaN when either argument is empty.
func Cost(centers, data [][]float64) float64 {
	if len(centers) == 0 || len(data) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range data {
		_, d := nearestSq(centers, x)
		sum += d
	}
	return math.Sqrt(sum / float64(len(data)))
}
