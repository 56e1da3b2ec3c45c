package unsupervised

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Distance returns the Euclidean (L2) distance between a and b.
func Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// squaredDistance returns the squared Euclidean distance (skips sqrt).
func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Nearest returns the center in centers closest to x under Euclidean
// distance, and its index. On ties the first minimum in iteration order wins.
// An empty center set returns (nil, -1).
func Nearest(centers [][]float64, x []float64) (center []float64, index int) {
	index, _ = nearestSq(centers, x)
	if index < 0 {
		return nil, -1
	}
	return centers[index], index
}

// nearestSq returns the index of the closest center and the squared distance
// to it. Squared distances preserve the ordering of distances, so the
// tie-break matches Nearest. A non-empty center set always yields an index,
// even when every distance overflows to +Inf.
func nearestSq(centers [][]float64, x []float64) (int, float64) {
	if len(centers) == 0 {
		return -1, math.Inf(1)
	}
	best, bestSq := 0, squaredDistance(x, centers[0])
	for j := 1; j < len(centers); j++ {
		if d := squaredDistance(x, centers[j]); d < bestSq {
			bestSq = d
			best = j
		}
	}
	return best, bestSq
}
