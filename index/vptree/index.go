package vptree

import (
	"fmt"
	"math"
	"sort"

	"github.com/viant/kanon/index"
	"github.com/viant/kanon/index/bruteforce"
	"github.com/viant/kanon/internal/distance"
)

// Index implements an exact kNN index using a VP-tree to prune search.
type Index struct {
	metric distance.Metric
	fn     distance.Func
	vecs   [][]float32
	dim    int
	root   *node
}

const slack = 1e-5

type node struct {
	idx   int // index into vecs
	thr   float64
	left  *node
	right *node
}

// New creates a VP-tree index; an empty metric means manhattan.
func New(metric distance.Metric) (*Index, error) {
	if metric == "" {
		metric = distance.Manhattan
	}
	if !metric.IsTrueMetric() {
		return nil, fmt.Errorf("vptree: metric %q does not satisfy the triangle inequality", metric)
	}
	return &Index{metric: metric, fn: metric.Function()}, nil
}

// Build constructs the VP-tree.
func (i *Index) Build(vectors [][]float32) error {
	if i.fn == nil {
		i.metric, i.fn = distance.Manhattan, distance.ManhattanDistance
	}
	i.vecs = append([][]float32(nil), vectors...)
	if len(vectors) == 0 {
		i.dim = 0
		i.root = nil
		return nil
	}
	i.dim = len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != i.dim {
			return fmt.Errorf("vptree: inconsistent vector dims %d vs %d", len(vectors[j]), i.dim)
		}
	}
	idxs := make([]int, len(vectors))
	for k := range idxs {
		idxs[k] = k
	}
	i.root = i.buildVP(idxs)
	return nil
}

func (i *Index) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// pick last as vantage point to avoid extra randomness
	vp := idxs[len(idxs)-1]
	idxs = idxs[:len(idxs)-1]
	if len(idxs) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(idxs))
	for k, j := range idxs {
		dists[k] = i.fn(i.vecs[vp], i.vecs[j])
	}
	mid := len(dists) / 2
	order := make([]int, len(idxs))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
	thr := dists[order[mid]]
	leftIdxs := make([]int, 0, mid+1)
	rightIdxs := make([]int, 0, len(idxs)-(mid+1))
	for rank, k := range order {
		if rank <= mid {
			leftIdxs = append(leftIdxs, idxs[k])
		} else {
			rightIdxs = append(rightIdxs, idxs[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   thr,
		left:  i.buildVP(leftIdxs),
		right: i.buildVP(rightIdxs),
	}
}

// Query returns up to n ids ordered by ascending distance, ties by id.
func (i *Index) Query(query []float32, n int) ([]int, []float64, error) {
	if len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("vptree: query dim %d != index dim %d", len(query), i.dim)
	}
	top := index.NewTopK(n)
	tau := func() float64 {
		if top.Full() {
			return top.Worst()
		}
		return math.Inf(1)
	}
	var search func(nd *node)
	search = func(nd *node) {
		if nd == nil {
			return
		}
		d := i.fn(query, i.vecs[nd.idx])
		top.Offer(nd.idx, d)
		// prune using triangle inequality, with slack for float32 kernels
		eps := slack * (1 + d + nd.thr)
		if d < nd.thr {
			if d-tau() <= nd.thr+eps {
				search(nd.left)
			}
			if d+tau()+eps >= nd.thr {
				search(nd.right)
			}
		} else {
			if d+tau()+eps >= nd.thr {
				search(nd.right)
			}
			if d-tau() <= nd.thr+eps {
				search(nd.left)
			}
		}
	}
	search(i.root)
	ids, dists := top.Result()
	return ids, dists, nil
}

func (i *Index) Len() int { return len(i.vecs) }

// MarshalBinary uses the brute-force format for persistence.
func (i *Index) MarshalBinary() ([]byte, error) {
	bf, err := bruteforce.New(i.metric)
	if err != nil {
		return nil, err
	}
	if err := bf.Build(i.vecs); err != nil {
		return nil, err
	}
	return bf.MarshalBinary()
}

// UnmarshalBinary loads brute-force format and rebuilds the VP-tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	r := index.NewReader(data)
	metric := distance.Metric(r.String())
	vecs := r.Vectors()
	if err := r.Err(); err != nil {
		return fmt.Errorf("vptree: %w", err)
	}
	if !metric.IsTrueMetric() {
		return fmt.Errorf("vptree: metric %q does not satisfy the triangle inequality", metric)
	}
	i.metric, i.fn = metric, metric.Function()
	return i.Build(vecs)
}

var _ index.Index = (*Index)(nil)
