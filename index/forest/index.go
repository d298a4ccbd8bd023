package forest

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/viant/kanon/index"
	"github.com/viant/kanon/internal/distance"
	"github.com/viant/kanon/internal/scale"
)

// Index is a forest of randomized partition trees.
type Index struct {
	trees    int
	metric   distance.Metric
	scale    bool
	leafSize int
	searchK  int
	seed     uint64

	fn     distance.Func
	raw    [][]float32
	vecs   [][]float32
	dim    int
	scaler *scale.Robust
	nodes  []node
	roots  []int
}

type node struct {
	items  []int // leaf items; nil for inner nodes
	normal []float64
	offset float64
	axis   int // coordinate of a hamming split, -1 otherwise
	pivot  float32
	left   int
	right  int
}

func (n *node) isLeaf() bool { return n.items != nil }

// New creates a forest; the default is DefaultTrees trees over manhattan
// distance with robust scaling.
func New(opts ...Option) (*Index, error) {
	i := &Index{
		trees:    DefaultTrees,
		metric:   distance.Manhattan,
		scale:    true,
		leafSize: DefaultLeafSize,
		seed:     DefaultSeed,
	}
	for _, opt := range opts {
		opt(i)
	}
	if err := i.init(); err != nil {
		return nil, err
	}
	return i, nil
}

// Categorical returns a forest for purely categorical vectors: hamming
// distance, no scaling. trees <= 0 means DefaultPresetTrees.
func Categorical(trees int, opts ...Option) (*Index, error) {
	if trees <= 0 {
		trees = DefaultPresetTrees
	}
	return New(append([]Option{WithTrees(trees), WithMetric(distance.Hamming), WithScale(false)}, opts...)...)
}

// Numerical returns a forest for purely numeric vectors. Only continuous
// metrics are accepted. trees <= 0 means DefaultPresetTrees.
func Numerical(trees int, metric distance.Metric, scale bool, opts ...Option) (*Index, error) {
	if trees <= 0 {
		trees = DefaultPresetTrees
	}
	if metric == "" {
		metric = distance.Manhattan
	}
	switch metric {
	case distance.Angular, distance.Euclidean, distance.Manhattan, distance.Dot:
	default:
		return nil, fmt.Errorf("forest: unsupported metric %q, must be one of angular, euclidean, manhattan, dot", metric)
	}
	return New(append([]Option{WithTrees(trees), WithMetric(metric), WithScale(scale)}, opts...)...)
}

func (i *Index) init() error {
	if i.metric == "" {
		i.metric = distance.Manhattan
	}
	i.fn = i.metric.Function()
	if i.fn == nil {
		return fmt.Errorf("forest: unsupported metric %q", i.metric)
	}
	if i.metric == distance.Hamming {
		i.scale = false
	}
	return nil
}

// Build fits the optional scaler and grows the trees.
func (i *Index) Build(vectors [][]float32) error {
	if i.fn == nil {
		if err := i.init(); err != nil {
			return err
		}
	}
	i.raw = append([][]float32(nil), vectors...)
	i.nodes, i.roots, i.scaler, i.vecs, i.dim = nil, nil, nil, nil, 0
	if len(vectors) == 0 {
		return nil
	}
	i.dim = len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != i.dim {
			return fmt.Errorf("forest: inconsistent vector dims %d vs %d", len(vectors[j]), i.dim)
		}
	}
	i.vecs = vectors
	if i.scale {
		scaler, err := scale.Fit(vectors)
		if err != nil {
			return fmt.Errorf("forest: %w", err)
		}
		i.scaler = scaler
		i.vecs = scaler.ApplyAll(vectors)
	}
	rng := rand.New(rand.NewPCG(i.seed, i.seed^0x9e3779b97f4a7c15))
	items := make([]int, len(vectors))
	for k := range items {
		items[k] = k
	}
	for t := 0; t < i.trees; t++ {
		i.roots = append(i.roots, i.grow(append([]int(nil), items...), rng))
	}
	return nil
}

func (i *Index) grow(items []int, rng *rand.Rand) int {
	if len(items) <= i.leafSize {
		i.nodes = append(i.nodes, node{items: items})
		return len(i.nodes) - 1
	}
	nd := i.split(items, rng)
	var left, right []int
	for _, it := range items {
		if i.margin(&nd, i.vecs[it]) > 0 {
			right = append(right, it)
		} else {
			left = append(left, it)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		// degenerate split: all items on one side, assign randomly
		left, right = left[:0:0], right[:0:0]
		for _, it := range items {
			if rng.IntN(2) == 0 {
				left = append(left, it)
			} else {
				right = append(right, it)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			half := len(items) / 2
			left, right = items[:half], items[half:]
		}
		nd.normal, nd.offset, nd.axis = nil, 0, -1
	}
	idx := len(i.nodes)
	i.nodes = append(i.nodes, nd)
	l := i.grow(left, rng)
	r := i.grow(right, rng)
	i.nodes[idx].left, i.nodes[idx].right = l, r
	return idx
}

// split draws a random splitting rule from two random items.
func (i *Index) split(items []int, rng *rand.Rand) node {
	p := items[rng.IntN(len(items))]
	q := items[rng.IntN(len(items))]
	for tries := 0; tries < 8 && (p == q || sameVector(i.vecs[p], i.vecs[q])); tries++ {
		q = items[rng.IntN(len(items))]
	}
	a, b := i.vecs[p], i.vecs[q]
	if i.metric == distance.Hamming {
		var differing []int
		for d := range a {
			if a[d] != b[d] {
				differing = append(differing, d)
			}
		}
		axis := rng.IntN(i.dim)
		if len(differing) > 0 {
			axis = differing[rng.IntN(len(differing))]
		}
		// equal coordinates always fall on the same side
		return node{axis: axis, pivot: (a[axis] + b[axis]) / 2}
	}
	normal := make([]float64, i.dim)
	if i.metric == distance.Angular {
		na, nb := norm(a), norm(b)
		for d := range normal {
			normal[d] = safeDiv(float64(a[d]), na) - safeDiv(float64(b[d]), nb)
		}
		return node{normal: normal, axis: -1}
	}
	var offset float64
	for d := range normal {
		normal[d] = float64(a[d]) - float64(b[d])
		offset -= normal[d] * (float64(a[d]) + float64(b[d])) / 2
	}
	return node{normal: normal, offset: offset, axis: -1}
}

// margin is positive on the right side of an inner node's split.
func (i *Index) margin(nd *node, v []float32) float64 {
	if nd.axis >= 0 && nd.normal == nil {
		return float64(v[nd.axis]) - float64(nd.pivot)
	}
	if nd.normal == nil {
		return 0
	}
	m := nd.offset
	for d, w := range nd.normal {
		m += w * float64(v[d])
	}
	return m
}

// Query returns up to n approximate nearest ids ordered by ascending
// distance; ties are broken by ascending id.
func (i *Index) Query(query []float32, n int) ([]int, []float64, error) {
	if len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("forest: query dim %d != index dim %d", len(query), i.dim)
	}
	if n <= 0 || n > len(i.vecs) {
		n = len(i.vecs)
	}
	q := query
	if i.scaler != nil {
		q = i.scaler.Apply(query)
	}
	searchK := i.searchK
	if searchK <= 0 {
		searchK = n * i.trees
	}
	if searchK < n {
		searchK = n
	}

	seen := make(map[int]bool, searchK)
	var candidates []int
	pq := &nodeQueue{}
	for _, root := range i.roots {
		heap.Push(pq, nodeItem{node: root, priority: math.Inf(1)})
	}
	for pq.Len() > 0 && len(candidates) < searchK {
		top := heap.Pop(pq).(nodeItem)
		nd := &i.nodes[top.node]
		if nd.isLeaf() {
			for _, it := range nd.items {
				if !seen[it] {
					seen[it] = true
					candidates = append(candidates, it)
				}
			}
			continue
		}
		m := i.margin(nd, q)
		if nd.normal == nil && nd.axis < 0 {
			heap.Push(pq, nodeItem{node: nd.right, priority: top.priority})
			heap.Push(pq, nodeItem{node: nd.left, priority: top.priority})
			continue
		}
		heap.Push(pq, nodeItem{node: nd.right, priority: math.Min(top.priority, m)})
		heap.Push(pq, nodeItem{node: nd.left, priority: math.Min(top.priority, -m)})
	}

	top := index.NewTopK(n)
	for _, it := range candidates {
		top.Offer(it, i.fn(q, i.vecs[it]))
	}
	ids, dists := top.Result()
	return ids, dists, nil
}

func (i *Index) Len() int { return len(i.vecs) }

// Trees returns the number of trees.
func (i *Index) Trees() int { return i.trees }

// Metric returns the configured metric.
func (i *Index) Metric() distance.Metric { return i.metric }

// Scaled reports whether robust scaling is applied.
func (i *Index) Scaled() bool { return i.scale }

// MarshalBinary stores options followed by the raw (unscaled) vector block.
func (i *Index) MarshalBinary() ([]byte, error) {
	w := &index.Writer{}
	w.PutString(string(i.metric))
	w.PutU32(uint32(i.trees))
	w.PutU32(uint32(i.leafSize))
	w.PutU32(uint32(i.searchK))
	w.PutU64(i.seed)
	w.PutBool(i.scale)
	w.PutVectors(i.raw)
	return w.Bytes(), nil
}

// UnmarshalBinary restores options and rebuilds the forest, which yields the
// same trees as the original build.
func (i *Index) UnmarshalBinary(data []byte) error {
	r := index.NewReader(data)
	metric := distance.Metric(r.String())
	trees := int(r.U32())
	leafSize := int(r.U32())
	searchK := int(r.U32())
	seed := r.U64()
	scaled := r.Bool()
	vecs := r.Vectors()
	if err := r.Err(); err != nil {
		return fmt.Errorf("forest: %w", err)
	}
	i.metric, i.trees, i.leafSize, i.searchK, i.seed, i.scale = metric, trees, leafSize, searchK, seed, scaled
	if i.trees <= 0 {
		i.trees = DefaultTrees
	}
	if i.leafSize <= 0 {
		i.leafSize = DefaultLeafSize
	}
	if err := i.init(); err != nil {
		return err
	}
	return i.Build(vecs)
}

type nodeItem struct {
	node     int
	priority float64
}

// nodeQueue is a max-heap on priority.
type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].priority > q[j].priority }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

func sameVector(a, b []float32) bool {
	for d := range a {
		if a[d] != b[d] {
			return false
		}
	}
	return true
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

var _ index.Index = (*Index)(nil)
