package encoder

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/viant/kanon/dataset"
	"github.com/viant/kanon/internal/scale"
)

// UnseenFrequency is the encoding of a category not observed by Fit.
const UnseenFrequency = 0

var errNotFitted = errors.New("encoder: not fitted")

// Encoder maps tuples laid out as Layout into vectors made of a categorical
// block followed by a numeric block.
type Encoder struct {
	Layout      []string             `json:"layout"`
	Categorical []string             `json:"categorical"`
	Numeric     []string             `json:"numeric"`
	Frequencies []map[string]float64 `json:"frequencies"`
	Medians     []float64            `json:"medians"`
}

// New creates an encoder for the given categorical and numeric columns, which
// must all appear in layout.
func New(layout, categorical, numeric []string) (*Encoder, error) {
	e := &Encoder{
		Layout:      append([]string(nil), layout...),
		Categorical: append([]string(nil), categorical...),
		Numeric:     append([]string(nil), numeric...),
	}
	if e.Dim() == 0 {
		return nil, fmt.Errorf("encoder: no columns to encode")
	}
	if _, _, err := e.positions(); err != nil {
		return nil, err
	}
	return e, nil
}

// Dim returns the output vector length.
func (e *Encoder) Dim() int { return len(e.Categorical) + len(e.Numeric) }

// Fit learns category frequencies and numeric medians from tuples.
func (e *Encoder) Fit(tuples [][]dataset.Value) error {
	catPos, numPos, err := e.positions()
	if err != nil {
		return err
	}
	e.Frequencies = make([]map[string]float64, len(catPos))
	for i, p := range catPos {
		counts := map[string]float64{}
		for _, t := range tuples {
			counts[categoryKey(t[p])]++
		}
		for k := range counts {
			counts[k] /= float64(len(tuples))
		}
		e.Frequencies[i] = counts
	}
	e.Medians = make([]float64, len(numPos))
	for i, p := range numPos {
		var observed []float64
		for _, t := range tuples {
			if f, ok := t[p].Float(); ok {
				observed = append(observed, f)
			}
		}
		sort.Float64s(observed)
		e.Medians[i] = scale.Median(observed)
	}
	return nil
}

// Transform encodes tuples using the fitted parameters.
func (e *Encoder) Transform(tuples [][]dataset.Value) ([][]float32, error) {
	if e.Frequencies == nil && e.Medians == nil {
		return nil, errNotFitted
	}
	catPos, numPos, err := e.positions()
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(tuples))
	for r, t := range tuples {
		if len(t) != len(e.Layout) {
			return nil, fmt.Errorf("encoder: tuple %d has %d values, want %d", r, len(t), len(e.Layout))
		}
		vec := make([]float32, 0, e.Dim())
		for i, p := range catPos {
			f, ok := e.Frequencies[i][categoryKey(t[p])]
			if !ok {
				f = UnseenFrequency
			}
			vec = append(vec, float32(f))
		}
		for i, p := range numPos {
			f, ok := t[p].Float()
			if !ok {
				f = e.Medians[i]
			}
			vec = append(vec, float32(f))
		}
		out[r] = vec
	}
	return out, nil
}

// FitTransform fits on tuples and encodes them.
func (e *Encoder) FitTransform(tuples [][]dataset.Value) ([][]float32, error) {
	if err := e.Fit(tuples); err != nil {
		return nil, err
	}
	return e.Transform(tuples)
}

func (e *Encoder) positions() ([]int, []int, error) {
	index := make(map[string]int, len(e.Layout))
	for i, c := range e.Layout {
		index[c] = i
	}
	resolve := func(cols []string) ([]int, error) {
		out := make([]int, len(cols))
		for i, c := range cols {
			p, ok := index[c]
			if !ok {
				return nil, fmt.Errorf("encoder: column %q not in tuple layout", c)
			}
			out[i] = p
		}
		return out, nil
	}
	catPos, err := resolve(e.Categorical)
	if err != nil {
		return nil, nil, err
	}
	numPos, err := resolve(e.Numeric)
	if err != nil {
		return nil, nil, err
	}
	return catPos, numPos, nil
}

// categoryKey is a JSON-safe, kind-qualified key for a category value.
func categoryKey(v dataset.Value) string {
	switch v.Kind() {
	case dataset.KindNumber:
		f, _ := v.Float()
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	case dataset.KindString:
		return "s:" + v.Text()
	}
	return "null"
}
