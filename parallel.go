package unsupervised

import (
	"math"
	"sync"
)

// forEachRowChunk splits [0, n) into contiguous ranges, one per worker, and
// calls fn on each range concurrently. Ranges never overlap, so fn may write
// to per-row output slots without synchronization. With workers <= 1 fn runs
// inline over the whole range.
func forEachRowChunk(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(startRow, endRow)
	}

	wg.Wait()
}

// Assign labels every point with the index of its nearest center.
func Assign(data, centers [][]float64) []int {
	labels, _ := AssignParallel(data, centers, 1)
	return labels
}

// AssignParallel labels every point with its nearest center using up to
// numWorkers goroutines, and also returns each point's squared distance to
// that center. The result is bitwise identical for any worker count.
func AssignParallel(data, centers [][]float64, numWorkers int) ([]int, []float64) {
	labels := make([]int, len(data))
	distSq := make([]float64, len(data))
	assignInto(data, centers, labels, distSq, numWorkers)
	return labels, distSq
}

// assignInto is AssignParallel writing into caller-owned buffers. distSq may
// be nil.
func assignInto(data, centers [][]float64, labels []int, distSq []float64, numWorkers int) {
	forEachRowChunk(len(data), numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			j, d := nearestSq(centers, data[i])
			labels[i] = j
			if distSq != nil {
				distSq[i] = d
			}
		}
	})
}

// updateMinSq lowers minSq[i] to the squared distance between data[i] and
// center when that is smaller. Applied once per newly chosen center it keeps
// minSq equal to the squared distance to the nearest chosen center.
func updateMinSq(data [][]float64, center []float64, minSq []float64, numWorkers int) {
	forEachRowChunk(len(data), numWorkers, func(start, end int) {
		for i := start; i < end; i++ {
			minSq[i] = math.Min(minSq[i], squaredDistance(data[i], center))
		}
	})
}
