// Package distance names the supported vector distance metrics and resolves
// them to callable kernels.
package distance

import (
	"fmt"
	"strings"

	"github.com/viant/vec/search"
)

// Metric enumerates supported distance metrics.
type Metric string

const (
	Manhattan Metric = "manhattan"
	Euclidean Metric = "euclidean"
	Angular   Metric = "angular"
	Dot       Metric = "dot"
	Hamming   Metric = "hamming"
)

// Func computes the distance between two equal-length vectors; smaller is
// closer.
type Func func(a, b []float32) float64

// Parse resolves a metric name, accepting a few common aliases.
func Parse(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "manhattan", "l1", "cityblock":
		return Manhattan, nil
	case "euclidean", "l2":
		return Euclidean, nil
	case "angular", "cos", "cosine":
		return Angular, nil
	case "dot":
		return Dot, nil
	case "hamming":
		return Hamming, nil
	}
	return "", fmt.Errorf("distance: unsupported metric %q", name)
}

// Function resolves the callable distance implementation.
func (m Metric) Function() Func {
	switch m {
	case Manhattan:
		return ManhattanDistance
	case Euclidean:
		return EuclideanDistance
	case Angular:
		return AngularDistance
	case Dot:
		return DotDistance
	case Hamming:
		return HammingDistance
	default:
		return nil
	}
}

// IsTrueMetric reports whether the metric satisfies the triangle inequality,
// which metric-tree pruning relies on.
func (m Metric) IsTrueMetric() bool {
	switch m {
	case Manhattan, Euclidean, Hamming:
		return true
	}
	return false
}

// ManhattanDistance returns the L1 distance.
func ManhattanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum
}

// EuclideanDistance returns the L2 distance.
func EuclideanDistance(a, b []float32) float64 {
	return float64(search.Float32s(a).EuclideanDistance(b))
}

// AngularDistance returns 1 - cosine similarity. Zero vectors are at
// distance 0 from each other and 1 from anything else.
func AngularDistance(a, b []float32) float64 {
	va := search.Float32s(a)
	vb := search.Float32s(b)
	ma, mb := va.Magnitude(), vb.Magnitude()
	switch {
	case ma == 0 && mb == 0:
		return 0
	case ma == 0 || mb == 0:
		return 1
	}
	return float64(va.CosineDistanceWithMagnitude(b, ma, mb))
}

// DotDistance returns the negated inner product.
func DotDistance(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return -s
}

// HammingDistance counts the positions where the vectors differ.
func HammingDistance(a, b []float32) float64 {
	var n float64
	for i := range a {
		if a[i] != b[i] {
			n++
		}
	}
	return n
}
