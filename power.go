package unsupervised

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// powerResult holds the right singular directions found by power iteration.
type powerResult struct {
	vectors   [][]float64 // one unit row per direction
	values    []float64   // singular values, sqrt of the AᵀA eigenvalues
	unsettled int         // directions that hit the iteration cap
}

// powerIterate extracts the top k right singular vectors of a by repeatedly
// applying AᵀA to a random unit vector, rescaling by the largest magnitude
// entry each step, and deflating A ← A − (Au)uᵀ after each direction.
//
// A direction is settled when the eigenvalue estimate ‖AᵀAu‖/‖u‖ changes by
// at most tol relative to itself. Once the residual matrix is numerically
// zero the remaining directions are completed with an orthonormal basis of
// the unexplored subspace. a is not modified.
func powerIterate(a *mat.Dense, k int, tol float64, maxIter int, rng *rand.Rand, logger *slog.Logger) powerResult {
	n, d := a.Dims()
	res := powerResult{
		vectors: make([][]float64, 0, k),
		values:  make([]float64, 0, k),
	}

	var resid mat.Dense
	resid.CloneFrom(a)

	// ‖A‖_F² is the sum of all AᵀA eigenvalues; anything below a tiny
	// fraction of it is treated as zero.
	fro := mat.Norm(a, 2)
	zeroEps := 1e-12 * fro * fro

	av := mat.NewVecDense(n, nil)
	next := mat.NewVecDense(d, nil)
	u := mat.NewVecDense(d, nil)

	for len(res.vectors) < k {
		randomUnit(u.RawVector().Data, rng)
		orthogonalize(u.RawVector().Data, res.vectors)
		if floats.Norm(u.RawVector().Data, 2) == 0 {
			copy(u.RawVector().Data, completion(res.vectors, d))
		}

		var lambda, prev float64
		settled, exhausted := false, false
		for it := 0; it < maxIter; it++ {
			av.MulVec(&resid, u)
			next.MulVec(resid.T(), av)
			orthogonalize(next.RawVector().Data, res.vectors)

			un := floats.Norm(u.RawVector().Data, 2)
			nn := floats.Norm(next.RawVector().Data, 2)
			if nn <= zeroEps*un || nn == 0 {
				exhausted = true
				break
			}
			lambda = nn / un

			scale := maxAbs(next.RawVector().Data)
			u.ScaleVec(1/scale, next)

			if prev > 0 && math.Abs(lambda-prev) <= tol*lambda {
				settled = true
				break
			}
			prev = lambda
		}

		dir := append([]float64(nil), u.RawVector().Data...)
		if exhausted {
			dir = completion(res.vectors, d)
			lambda = 0
			settled = true
		}
		floats.Scale(1/floats.Norm(dir, 2), dir)

		if !settled {
			res.unsettled++
			logger.Warn("spectral: power iteration cap reached",
				"component", len(res.vectors), "iterations", maxIter, "eigenvalue", lambda)
		}

		res.vectors = append(res.vectors, dir)
		res.values = append(res.values, math.Sqrt(lambda))

		// Deflate: remove the found direction from every row.
		dv := mat.NewVecDense(d, dir)
		av.MulVec(&resid, dv)
		resid.RankOne(&resid, -1, av, dv)
	}
	return res
}

// randomUnit fills dst with a standard normal vector scaled to unit length.
// Normal draws give a direction uniformly distributed on the sphere.
func randomUnit(dst []float64, rng *rand.Rand) {
	for i := range dst {
		dst[i] = rng.NormFloat64()
	}
	if norm := floats.Norm(dst, 2); norm > 0 {
		floats.Scale(1/norm, dst)
	}
}

// orthogonalize removes from v its projection onto each unit vector in basis
// (modified Gram–Schmidt).
func orthogonalize(v []float64, basis [][]float64) {
	for _, b := range basis {
		floats.AddScaled(v, -floats.Dot(v, b), b)
	}
}

// completion returns the first standard basis vector, made orthogonal to
// basis, that still has usable length. basis must span fewer than d
// dimensions.
func completion(basis [][]float64, d int) []float64 {
	v := make([]float64, d)
	for e := 0; e < d; e++ {
		clear(v)
		v[e] = 1
		orthogonalize(v, basis)
		orthogonalize(v, basis)
		if norm := floats.Norm(v, 2); norm > 1e-8 {
			floats.Scale(1/norm, v)
			return v
		}
	}
	return v
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}
