package kanon

import (
	"fmt"

	"github.com/viant/kanon/column"
	"github.com/viant/kanon/index"
	"github.com/viant/kanon/index/bruteforce"
	"github.com/viant/kanon/index/forest"
	"github.com/viant/kanon/index/vptree"
	"github.com/viant/kanon/internal/distance"
)

// newIndex creates an unbuilt neighbor index for the configuration. Purely
// categorical vectors without an explicit metric get the hamming preset,
// purely numeric vectors the numerical preset.
func newIndex(c *Config, set *column.Set) (index.Index, error) {
	metric, err := distance.Parse(c.Metric)
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	var idx index.Index
	switch c.Index {
	case "", IndexForest:
		seed := forest.WithSeed(c.Seed)
		trees := c.Trees
		if trees == 0 {
			trees = DefaultTrees
		}
		switch {
		case len(set.IndexNumeric()) == 0 && c.Metric == "":
			idx, err = forest.Categorical(trees, seed)
		case len(set.IndexCategorical()) == 0:
			idx, err = forest.Numerical(trees, metric, !c.NoScale, seed)
		default:
			idx, err = forest.New(seed, forest.WithTrees(trees), forest.WithMetric(metric), forest.WithScale(!c.NoScale))
		}
	case IndexBruteForce:
		idx, err = bruteforce.New(metric)
	case IndexVPTree:
		idx, err = vptree.New(metric)
	default:
		return nil, fmt.Errorf("kanon: unsupported index %q", c.Index)
	}
	if err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	return idx, nil
}

// emptyIndex returns a zero index of the given kind, ready for
// UnmarshalBinary.
func emptyIndex(kind IndexKind) (index.Index, error) {
	switch kind {
	case "", IndexForest:
		return &forest.Index{}, nil
	case IndexBruteForce:
		return &bruteforce.Index{}, nil
	case IndexVPTree:
		return &vptree.Index{}, nil
	}
	return nil, fmt.Errorf("kanon: unsupported index %q", kind)
}
