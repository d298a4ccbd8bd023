package resolver

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/viant/kanon/column"
	"github.com/viant/kanon/dataset"
)

// Variant selects the tie-breaking flavour of the aggregators.
type Variant int

const (
	// Fair breaks ties with the random source.
	Fair Variant = iota
	// Stable breaks ties deterministically.
	Stable
)

// Representative holds the values chosen for one group.
type Representative struct {
	Values map[string]dataset.Value
	// Sources maps a link primary to the dataset row its children come from.
	Sources map[string]int
}

// Resolver computes representatives and rebuilds datasets.
type Resolver struct {
	set     *column.Set
	rng     *rand.Rand
	variant Variant
}

// New creates a resolver; a nil rng is seeded with 0.
func New(set *column.Set, rng *rand.Rand, variant Variant) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	return &Resolver{set: set, rng: rng, variant: variant}
}

// Aggregator returns the aggregator used for column.
func (r *Resolver) Aggregator(column string) Aggregator {
	if r.set.IsCategorical(column) {
		if r.variant == Stable {
			return ModeStable
		}
		return ModeFair
	}
	if r.variant == Stable {
		return MedianStable
	}
	return MedianSingle
}

// Resolve chooses the representative of the given dataset rows.
func (r *Resolver) Resolve(ds *dataset.Dataset, rows []int) (*Representative, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("resolver: empty group")
	}
	rep := &Representative{Values: map[string]dataset.Value{}, Sources: map[string]int{}}
	links := map[string]column.Link{}
	for _, l := range r.set.Links() {
		links[l.Primary] = l
	}
	values := make([]dataset.Value, len(rows))
	for _, name := range r.set.Resolved() {
		col, ok := ds.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("resolver: %w: %q", column.ErrUnknownColumn, name)
		}
		for i, row := range rows {
			values[i] = ds.Value(row, col)
		}
		pick := r.Aggregator(name)(values, r.rng)
		link, linked := links[name]
		if !linked {
			if pick < 0 {
				rep.Values[name] = dataset.Null()
			} else {
				rep.Values[name] = values[pick]
			}
			continue
		}
		if pick < 0 {
			pick = 0
		}
		source := rows[pick]
		rep.Sources[name] = source
		rep.Values[name] = ds.Value(source, col)
		for _, child := range link.Children {
			cc, ok := ds.ColumnIndex(child)
			if !ok {
				return nil, fmt.Errorf("resolver: %w: %q", column.ErrUnknownColumn, child)
			}
			rep.Values[child] = ds.Value(source, cc)
		}
	}
	return rep, nil
}

// Reconstruct returns a copy of ds where every row of a grouped class carries
// its group's representative. classOf maps a row to its class (negative for
// unknown tuples) and groupOf maps a class to its group (negative when
// ungrouped); such rows are copied unchanged.
func (r *Resolver) Reconstruct(ds *dataset.Dataset, classOf, groupOf []int) (*dataset.Dataset, int, error) {
	if len(classOf) != ds.Len() {
		return nil, 0, fmt.Errorf("resolver: %d class assignments for %d rows", len(classOf), ds.Len())
	}
	groups := map[int][]int{}
	var order []int
	for row, c := range classOf {
		if c < 0 || c >= len(groupOf) || groupOf[c] < 0 {
			continue
		}
		g := groupOf[c]
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], row)
	}
	sort.Ints(order)

	out := ds.Clone()
	rewritten := 0
	for _, g := range order {
		rows := groups[g]
		rep, err := r.Resolve(ds, rows)
		if err != nil {
			return nil, 0, err
		}
		for name, v := range rep.Values {
			col, _ := out.ColumnIndex(name)
			for _, row := range rows {
				out.Set(row, col, v)
			}
		}
		rewritten += len(rows)
	}
	return out, rewritten, nil
}
