package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, Median([]float64{1, 2, 3, 4}))
}

func TestFit_ConstantDimensionKeepsUnitScale(t *testing.T) {
	r, err := Fit([][]float32{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, r.Center[0])
	assert.Equal(t, 5.0, r.Center[1])
	assert.Equal(t, 1.0, r.Scale[1])
	assert.Greater(t, r.Scale[0], 0.0)

	scaled := r.Apply([]float32{3, 7})
	assert.Equal(t, float32(0), scaled[0])
	assert.Equal(t, float32(2), scaled[1])
}

func TestFit_InconsistentDims(t *testing.T) {
	_, err := Fit([][]float32{{1, 2}, {1}})
	assert.Error(t, err)
}

func TestApply_Unfitted(t *testing.T) {
	var r *Robust
	assert.Equal(t, []float32{1, 2}, r.Apply([]float32{1, 2}))
}
