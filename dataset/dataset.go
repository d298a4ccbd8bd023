package dataset

import (
	"fmt"
	"strconv"
)

// Dataset is an in-memory table with ordered columns and row identifiers.
type Dataset struct {
	columns []string
	index   map[string]int
	ids     []string
	rows    [][]Value
}

// New creates an empty dataset with the given columns.
func New(columns ...string) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset: no columns")
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; ok {
			return nil, fmt.Errorf("dataset: duplicate column %q", c)
		}
		index[c] = i
	}
	return &Dataset{columns: append([]string(nil), columns...), index: index}, nil
}

// FromRecords builds a dataset from raw text records using Parse for every
// cell. Rows are identified by their 0-based position.
func FromRecords(columns []string, records [][]string) (*Dataset, error) {
	ds, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		if len(rec) != len(columns) {
			return nil, fmt.Errorf("dataset: record %d has %d fields, want %d", i, len(rec), len(columns))
		}
		values := make([]Value, len(rec))
		for j, s := range rec {
			values[j] = Parse(s)
		}
		if err := ds.Append(strconv.Itoa(i), values...); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Append adds a row. An empty id defaults to the row position.
func (d *Dataset) Append(id string, values ...Value) error {
	if len(values) != len(d.columns) {
		return fmt.Errorf("dataset: row has %d values, want %d", len(values), len(d.columns))
	}
	if id == "" {
		id = strconv.Itoa(len(d.rows))
	}
	d.ids = append(d.ids, id)
	d.rows = append(d.rows, append([]Value(nil), values...))
	return nil
}

func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string { return append([]string(nil), d.columns...) }

// ColumnIndex returns the position of the named column.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	i, ok := d.index[name]
	return i, ok
}

// HasColumn reports whether the column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

func (d *Dataset) ID(row int) string { return d.ids[row] }

// IDs returns a copy of the row identifiers.
func (d *Dataset) IDs() []string { return append([]string(nil), d.ids...) }

func (d *Dataset) Value(row, col int) Value { return d.rows[row][col] }

// Get returns the value of the named column in row; missing columns yield null.
func (d *Dataset) Get(row int, column string) Value {
	i, ok := d.index[column]
	if !ok {
		return Null()
	}
	return d.rows[row][i]
}

// Row returns a copy of the row values.
func (d *Dataset) Row(row int) []Value { return append([]Value(nil), d.rows[row]...) }

// Set replaces a single cell.
func (d *Dataset) Set(row, col int, v Value) { d.rows[row][col] = v }

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		columns: append([]string(nil), d.columns...),
		index:   make(map[string]int, len(d.index)),
		ids:     append([]string(nil), d.ids...),
		rows:    make([][]Value, len(d.rows)),
	}
	for k, v := range d.index {
		out.index[k] = v
	}
	for i, r := range d.rows {
		out.rows[i] = append([]Value(nil), r...)
	}
	return out
}

// Positions resolves column names to positions.
func (d *Dataset) Positions(columns []string) ([]int, error) {
	out := make([]int, len(columns))
	for i, c := range columns {
		p, ok := d.index[c]
		if !ok {
			return nil, fmt.Errorf("dataset: unknown column %q", c)
		}
		out[i] = p
	}
	return out, nil
}
