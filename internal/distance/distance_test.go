package distance

import (
	"math"
	"testing"
)

func TestMetrics(t *testing.T) {
	a := []float32{0, 0, 1}
	b := []float32{3, 4, 1}
	testCases := []struct {
		metric Metric
		want   float64
	}{
		{Manhattan, 7},
		{Euclidean, 5},
		{Hamming, 2},
		{Dot, -1},
	}
	for _, testCase := range testCases {
		fn := testCase.metric.Function()
		if fn == nil {
			t.Fatalf("%s: nil function", testCase.metric)
		}
		if got := fn(a, b); math.Abs(got-testCase.want) > 1e-6 {
			t.Fatalf("%s = %v, want %v", testCase.metric, got, testCase.want)
		}
	}
}

func TestAngularDistance(t *testing.T) {
	if d := AngularDistance([]float32{1, 0}, []float32{2, 0}); math.Abs(d) > 1e-6 {
		t.Fatalf("parallel vectors: %v, want 0", d)
	}
	if d := AngularDistance([]float32{1, 0}, []float32{0, 1}); math.Abs(d-1) > 1e-6 {
		t.Fatalf("orthogonal vectors: %v, want 1", d)
	}
	if d := AngularDistance([]float32{0, 0}, []float32{0, 1}); d != 1 {
		t.Fatalf("zero vector: %v, want 1", d)
	}
}

func TestParse(t *testing.T) {
	for name, want := range map[string]Metric{"": Manhattan, "L2": Euclidean, "cosine": Angular, "hamming": Hamming} {
		got, err := Parse(name)
		if err != nil || got != want {
			t.Fatalf("Parse(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := Parse("chebyshev"); err == nil {
		t.Fatalf("expected error for unsupported metric")
	}
	if Angular.IsTrueMetric() || !Manhattan.IsTrueMetric() {
		t.Fatalf("unexpected IsTrueMetric results")
	}
}
