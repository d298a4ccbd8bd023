package index

import (
	"container/heap"
	"sort"
)

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	ID       int
	Distance float64
}

// Neighbors implements heap.Interface ordered as a max-heap on distance, with
// the larger id treated as farther on ties.
type Neighbors []Neighbor

func (h Neighbors) Len() int { return len(h) }
func (h Neighbors) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance > h[j].Distance
	}
	return h[i].ID > h[j].ID
}
func (h Neighbors) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *Neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *Neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK keeps the k closest neighbors offered to it.
type TopK struct {
	k int
	h Neighbors
}

// NewTopK creates a collector for k neighbors; k <= 0 keeps everything.
func NewTopK(k int) *TopK { return &TopK{k: k} }

// Offer considers a candidate.
func (t *TopK) Offer(id int, d float64) {
	n := Neighbor{ID: id, Distance: d}
	if t.k <= 0 || t.h.Len() < t.k {
		heap.Push(&t.h, n)
		return
	}
	worst := t.h[0]
	if d < worst.Distance || (d == worst.Distance && id < worst.ID) {
		t.h[0] = n
		heap.Fix(&t.h, 0)
	}
}

// Full reports whether k candidates are held.
func (t *TopK) Full() bool { return t.k > 0 && t.h.Len() >= t.k }

// Worst returns the largest held distance.
func (t *TopK) Worst() float64 {
	if t.h.Len() == 0 {
		return 0
	}
	return t.h[0].Distance
}

// Result returns the held neighbors sorted by ascending distance, then id.
func (t *TopK) Result() ([]int, []float64) {
	out := append(Neighbors(nil), t.h...)
	sort.Slice(out, func(a, b int) bool {
		if out[a].Distance != out[b].Distance {
			return out[a].Distance < out[b].Distance
		}
		return out[a].ID < out[b].ID
	})
	ids := make([]int, len(out))
	dists := make([]float64, len(out))
	for i, n := range out {
		ids[i] = n.ID
		dists[i] = n.Distance
	}
	return ids, dists
}
