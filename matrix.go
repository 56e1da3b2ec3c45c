package unsupervised

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// validateData checks that data is a non-empty rectangular matrix of finite
// values whose squared distances stay finite, and returns its shape.
func validateData(data [][]float64) (n, dims int, err error) {
	n = len(data)
	if n == 0 {
		return 0, 0, invalidArgf("data is empty")
	}
	dims = len(data[0])
	if dims == 0 {
		return 0, 0, invalidArgf("data points have zero dimensions")
	}
	for i, row := range data {
		if len(row) != dims {
			return 0, 0, invalidArgf("point %d has %d dimensions, want %d", i, len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, invalidArgf("point %d coordinate %d is not finite (%v)", i, j, v)
			}
		}
	}

	// The squared bounding-box diagonal bounds every squared distance
	// between points and their means.
	var spread float64
	for j := 0; j < dims; j++ {
		lo, hi := data[0][j], data[0][j]
		for _, row := range data {
			lo = math.Min(lo, row[j])
			hi = math.Max(hi, row[j])
		}
		d := hi - lo
		spread += d * d
	}
	if math.IsInf(spread, 0) {
		return 0, 0, invalidArgf("coordinate range too large: squared distances overflow")
	}
	return n, dims, nil
}

// validateCenters checks that k centers of the given dimensionality can be
// used against n points.
func validateCenters(centers [][]float64, n, dims int) error {
	k := len(centers)
	if k < 1 || k > n {
		return invalidArgf("k must be in [1, %d], got %d", n, k)
	}
	for i, c := range centers {
		if len(c) != dims {
			return invalidArgf("center %d has %d dimensions, want %d", i, len(c), dims)
		}
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalidArgf("center %d is not finite", i)
			}
		}
	}
	return nil
}

// validateK checks 1 <= k <= n.
func validateK(k, n int) error {
	if k < 1 || k > n {
		return invalidArgf("k must be in [1, %d], got %d", n, k)
	}
	return nil
}

// copyRows returns a deep copy of rows so the caller's slices are never
// aliased by a mutable center set.
func copyRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

// toDense copies data into a row-major n×dims gonum matrix.
func toDense(data [][]float64) *mat.Dense {
	n, dims := len(data), len(data[0])
	flat := make([]float64, n*dims)
	for i, row := range data {
		copy(flat[i*dims:], row)
	}
	return mat.NewDense(n, dims, flat)
}

// fromDense copies a gonum matrix back into [][]float64.
func fromDense(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		for j := range out[i] {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
