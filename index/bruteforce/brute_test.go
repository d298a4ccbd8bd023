package bruteforce

import (
	"testing"

	"github.com/viant/kanon/internal/distance"
)

func TestIndex_Query(t *testing.T) {
	idx, err := New(distance.Manhattan)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	vectors := [][]float32{{0, 0}, {5, 5}, {1, 0}, {0, 2}}
	if err := idx.Build(vectors); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ids, dists, err := idx.Query([]float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 0 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("ids = %v, want [0 2 3]", ids)
	}
	if dists[0] != 0 || dists[1] != 1 || dists[2] != 2 {
		t.Fatalf("dists = %v, want [0 1 2]", dists)
	}

	ids, _, err = idx.Query([]float32{0, 0}, 10)
	if err != nil || len(ids) != 4 {
		t.Fatalf("Query(n>len) = %v, %v", ids, err)
	}
	if _, _, err := idx.Query([]float32{0}, 1); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
}

func TestIndex_TiesByID(t *testing.T) {
	idx, _ := New(distance.Hamming)
	if err := idx.Build([][]float32{{1, 1}, {0, 1}, {1, 0}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	ids, _, _ := idx.Query([]float32{0, 0}, 2)
	if ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("ids = %v, want [1 2]", ids)
	}
}

func TestIndex_MarshalRoundTrip(t *testing.T) {
	idx, _ := New(distance.Euclidean)
	if err := idx.Build([][]float32{{0, 0}, {3, 4}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	restored := &Index{}
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if restored.Metric() != distance.Euclidean || restored.Len() != 2 {
		t.Fatalf("restored metric=%s len=%d", restored.Metric(), restored.Len())
	}
	_, dists, _ := restored.Query([]float32{0, 0}, 2)
	if dists[1] != 5 {
		t.Fatalf("dists = %v", dists)
	}
	if err := restored.UnmarshalBinary(data[:3]); err == nil {
		t.Fatalf("expected error for truncated data")
	}
}

func TestNew_UnsupportedMetric(t *testing.T) {
	if _, err := New("chebyshev"); err == nil {
		t.Fatalf("expected error")
	}
}
