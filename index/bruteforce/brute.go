package bruteforce

import (
	"fmt"

	"github.com/viant/kanon/index"
	"github.com/viant/kanon/internal/distance"
)

// Index is an exact brute-force vector index.
type Index struct {
	metric distance.Metric
	fn     distance.Func
	vecs   [][]float32
	dim    int
}

// New creates an index using metric; an empty metric means manhattan.
func New(metric distance.Metric) (*Index, error) {
	if metric == "" {
		metric = distance.Manhattan
	}
	fn := metric.Function()
	if fn == nil {
		return nil, fmt.Errorf("bruteforce: unsupported metric %q", metric)
	}
	return &Index{metric: metric, fn: fn}, nil
}

// Build loads vectors.
func (i *Index) Build(vectors [][]float32) error {
	if i.fn == nil {
		i.metric, i.fn = distance.Manhattan, distance.ManhattanDistance
	}
	if len(vectors) == 0 {
		i.vecs, i.dim = nil, 0
		return nil
	}
	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d", len(vectors[j]), dim)
		}
	}
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	return nil
}

// Query returns the n closest ids by ascending distance; ties are broken by
// ascending id. n <= 0 returns every item.
func (i *Index) Query(query []float32, n int) ([]int, []float64, error) {
	if len(i.vecs) == 0 {
		return nil, nil, nil
	}
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	top := index.NewTopK(n)
	for j, v := range i.vecs {
		top.Offer(j, i.fn(query, v))
	}
	ids, dists := top.Result()
	return ids, dists, nil
}

func (i *Index) Len() int { return len(i.vecs) }

// Metric returns the configured metric.
func (i *Index) Metric() distance.Metric { return i.metric }

// MarshalBinary stores: metric(string), then the vector block.
func (i *Index) MarshalBinary() ([]byte, error) {
	w := &index.Writer{}
	w.PutString(string(i.metric))
	w.PutVectors(i.vecs)
	return w.Bytes(), nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	r := index.NewReader(data)
	metric := distance.Metric(r.String())
	vecs := r.Vectors()
	if err := r.Err(); err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	fn := metric.Function()
	if fn == nil {
		return fmt.Errorf("bruteforce: unsupported metric %q", metric)
	}
	i.metric, i.fn = metric, fn
	return i.Build(vecs)
}

var _ index.Index = (*Index)(nil)
