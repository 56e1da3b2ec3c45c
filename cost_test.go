package unsupervised

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name    string
		centers [][]float64
		data    [][]float64
		want    float64
	}{
		{"two pairs optimum", [][]float64{{0, 0.5}, {10, 10.5}}, twoPairs, 0.5},
		{"centers on points", [][]float64{{0, 0}, {3, 4}}, [][]float64{{0, 0}, {3, 4}}, 0},
		{"single center", [][]float64{{0, 0}}, [][]float64{{3, 4}, {0, 0}}, math.Sqrt(12.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cost(tt.centers, tt.data), 1e-12)
		})
	}
}

func TestCost_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Cost(nil, twoPairs)))
	assert.True(t, math.IsNaN(Cost([][]float64{{0, 0}}, nil)))
}

func TestCost_NeverBelowOptimumOfSameK(t *testing.T) {
	optimum := Cost([][]float64{{0, 0.5}, {10, 10.5}}, twoPairs)
	for _, centers := range [][][]float64{
		{{0, 0}, {10, 10}},
		{{0, 1}, {10, 11}},
		{{5, 5}, {10, 10.5}},
	} {
		assert.GreaterOrEqual(t, Cost(centers, twoPairs), optimum)
	}
}
