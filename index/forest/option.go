package forest

import "github.com/viant/kanon/internal/distance"

const (
	// DefaultTrees is the forest size of the general index.
	DefaultTrees = 10
	// DefaultPresetTrees is the forest size of the categorical and numerical presets.
	DefaultPresetTrees = 40
	// DefaultLeafSize bounds the number of items held by a leaf.
	DefaultLeafSize = 16
	// DefaultSeed seeds tree construction when no seed is given.
	DefaultSeed uint64 = 0x6b616e6f6e
)

// Option configures an Index.
type Option func(*Index)

// WithTrees sets the number of trees.
func WithTrees(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.trees = n
		}
	}
}

// WithMetric sets the distance metric.
func WithMetric(m distance.Metric) Option {
	return func(i *Index) { i.metric = m }
}

// WithScale toggles robust (median/IQR) pre-scaling. Hamming never scales.
func WithScale(scale bool) Option {
	return func(i *Index) { i.scale = scale }
}

// WithLeafSize sets the maximum leaf size.
func WithLeafSize(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.leafSize = n
		}
	}
}

// WithSearchK sets the minimum number of distinct candidates inspected per
// query; 0 means n * trees.
func WithSearchK(k int) Option {
	return func(i *Index) {
		if k >= 0 {
			i.searchK = k
		}
	}
}

// WithSeed sets the tree construction seed.
func WithSeed(seed uint64) Option {
	return func(i *Index) { i.seed = seed }
}
