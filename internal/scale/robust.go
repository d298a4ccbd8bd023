// Package scale provides robust feature scaling: each dimension is centred on
// its median and divided by its interquartile range.
package scale

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Robust holds per-dimension centre and scale fitted on a set of vectors.
type Robust struct {
	Center []float64 `json:"center"`
	Scale  []float64 `json:"scale"`
}

// Fit computes median and IQR per dimension. A zero IQR scales by 1.
func Fit(vectors [][]float32) (*Robust, error) {
	if len(vectors) == 0 {
		return &Robust{}, nil
	}
	dim := len(vectors[0])
	r := &Robust{Center: make([]float64, dim), Scale: make([]float64, dim)}
	column := make([]float64, len(vectors))
	for d := 0; d < dim; d++ {
		for i, v := range vectors {
			if len(v) != dim {
				return nil, fmt.Errorf("scale: inconsistent vector dims %d vs %d", len(v), dim)
			}
			column[i] = float64(v[d])
		}
		sort.Float64s(column)
		r.Center[d] = Median(column)
		iqr := stat.Quantile(0.75, stat.LinInterp, column, nil) - stat.Quantile(0.25, stat.LinInterp, column, nil)
		if iqr == 0 {
			iqr = 1
		}
		r.Scale[d] = iqr
	}
	return r, nil
}

// Apply returns a scaled copy of v.
func (r *Robust) Apply(v []float32) []float32 {
	if r == nil || len(r.Center) == 0 {
		return append([]float32(nil), v...)
	}
	out := make([]float32, len(v))
	for d := range v {
		if d >= len(r.Center) {
			out[d] = v[d]
			continue
		}
		out[d] = float32((float64(v[d]) - r.Center[d]) / r.Scale[d])
	}
	return out
}

// ApplyAll scales every vector.
func (r *Robust) ApplyAll(vectors [][]float32) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = r.Apply(v)
	}
	return out
}

// Median returns the median of sorted, averaging the two middle elements of
// an even-length slice. It returns 0 for an empty slice.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	return (sorted[(n-1)/2] + sorted[n/2]) / 2
}
