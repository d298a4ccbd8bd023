package eqclass

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/viant/kanon/dataset"
)

// ErrInsufficientRows is returned when the dataset has fewer rows than the
// anonymity target, so no plan could satisfy it.
var ErrInsufficientRows = errors.New("eqclass: not enough rows to ensure k_target")

// Class is one distinct quasi-identifier tuple.
type Class struct {
	Index       int             `json:"index"`
	Values      []dataset.Value `json:"-"`
	KCount      int             `json:"kCount"`
	Fingerprint uint64          `json:"fingerprint"`
	// Rows holds the positions of member rows in the dataset the table was
	// built from.
	Rows []int `json:"-"`
}

// Table is the ordered set of equivalence classes of one dataset.
type Table struct {
	qids    []string
	classes []*Class
	buckets map[uint64][]int
}

// Build groups ds rows by the qids tuple. When privacyUnit is empty every row
// is its own privacy unit; otherwise KCount is the number of distinct
// non-null privacy unit values in the class.
func Build(ds *dataset.Dataset, qids []string, privacyUnit string, kTarget int) (*Table, error) {
	if ds.Len() < kTarget {
		return nil, fmt.Errorf("%w: %d rows, k_target %d", ErrInsufficientRows, ds.Len(), kTarget)
	}
	positions, err := ds.Positions(qids)
	if err != nil {
		return nil, fmt.Errorf("eqclass: %w", err)
	}
	puPos := -1
	if privacyUnit != "" {
		p, ok := ds.ColumnIndex(privacyUnit)
		if !ok {
			return nil, fmt.Errorf("eqclass: unknown privacy unit column %q", privacyUnit)
		}
		puPos = p
	}

	t := New(qids)
	units := map[int]map[string]bool{}
	var key []byte
	tuple := make([]dataset.Value, len(positions))
	for row := 0; row < ds.Len(); row++ {
		for i, p := range positions {
			tuple[i] = ds.Value(row, p)
		}
		var fp uint64
		key, fp = fingerprint(key[:0], tuple)
		idx, ok := t.find(fp, tuple)
		if !ok {
			idx = t.add(fp, append([]dataset.Value(nil), tuple...))
		}
		c := t.classes[idx]
		c.Rows = append(c.Rows, row)
		if puPos < 0 {
			c.KCount++
			continue
		}
		pu := ds.Value(row, puPos)
		if pu.IsNull() {
			continue
		}
		seen := units[idx]
		if seen == nil {
			seen = map[string]bool{}
			units[idx] = seen
		}
		k := string(pu.AppendKey(nil))
		if !seen[k] {
			seen[k] = true
			c.KCount++
		}
	}
	return t, nil
}

// New creates an empty table for the qids tuple layout.
func New(qids []string) *Table {
	return &Table{qids: append([]string(nil), qids...), buckets: map[uint64][]int{}}
}

// Add appends a class with the given tuple and count, returning its index.
// It is used to rebuild a table from a persisted plan.
func (t *Table) Add(values []dataset.Value, kCount int) (int, error) {
	if len(values) != len(t.qids) {
		return 0, fmt.Errorf("eqclass: tuple has %d values, want %d", len(values), len(t.qids))
	}
	_, fp := fingerprint(nil, values)
	if _, ok := t.find(fp, values); ok {
		return 0, fmt.Errorf("eqclass: duplicate tuple %v", values)
	}
	idx := t.add(fp, append([]dataset.Value(nil), values...))
	t.classes[idx].KCount = kCount
	return idx, nil
}

func (t *Table) add(fp uint64, values []dataset.Value) int {
	idx := len(t.classes)
	t.classes = append(t.classes, &Class{Index: idx, Values: values, Fingerprint: fp})
	t.buckets[fp] = append(t.buckets[fp], idx)
	return idx
}

func (t *Table) find(fp uint64, tuple []dataset.Value) (int, bool) {
	for _, idx := range t.buckets[fp] {
		if sameTuple(t.classes[idx].Values, tuple) {
			return idx, true
		}
	}
	return -1, false
}

// QIDs returns the tuple column layout.
func (t *Table) QIDs() []string { return append([]string(nil), t.qids...) }

func (t *Table) Len() int { return len(t.classes) }

// Class returns the class at index i.
func (t *Table) Class(i int) *Class { return t.classes[i] }

// Tuples returns the representative tuple of every class in index order.
func (t *Table) Tuples() [][]dataset.Value {
	out := make([][]dataset.Value, len(t.classes))
	for i, c := range t.classes {
		out[i] = c.Values
	}
	return out
}

// Counts returns KCount of every class in index order.
func (t *Table) Counts() []int {
	out := make([]int, len(t.classes))
	for i, c := range t.classes {
		out[i] = c.KCount
	}
	return out
}

// Lookup returns the class index for a tuple.
func (t *Table) Lookup(tuple []dataset.Value) (int, bool) {
	_, fp := fingerprint(nil, tuple)
	return t.find(fp, tuple)
}

// Assign maps every row of ds to its class index, or -1 when the row's tuple
// was not seen when the table was built.
func (t *Table) Assign(ds *dataset.Dataset) ([]int, error) {
	positions, err := ds.Positions(t.qids)
	if err != nil {
		return nil, fmt.Errorf("eqclass: %w", err)
	}
	out := make([]int, ds.Len())
	tuple := make([]dataset.Value, len(positions))
	var key []byte
	for row := range out {
		for i, p := range positions {
			tuple[i] = ds.Value(row, p)
		}
		var fp uint64
		key, fp = fingerprint(key[:0], tuple)
		out[row], _ = t.find(fp, tuple)
	}
	return out, nil
}

// Fingerprint returns the content fingerprint of a tuple.
func Fingerprint(tuple []dataset.Value) uint64 {
	_, fp := fingerprint(nil, tuple)
	return fp
}

func fingerprint(buf []byte, tuple []dataset.Value) ([]byte, uint64) {
	for _, v := range tuple {
		buf = v.AppendKey(buf)
	}
	return buf, xxhash.Sum64(buf)
}

func sameTuple(a, b []dataset.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !dataset.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
