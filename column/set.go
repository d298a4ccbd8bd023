package column

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOverlap is returned when a column is both categorical and numeric.
	ErrOverlap = errors.New("column: categorical and numeric columns must be mutually exclusive")
	// ErrNoTransformColumns is returned when every QID is excluded from transform.
	ErrNoTransformColumns = errors.New("column: at least one column must be transformed")
	// ErrNoIndexColumns is returned when every QID is excluded from the neighbor index.
	ErrNoIndexColumns = errors.New("column: at least one column must be indexed")
	// ErrUnknownColumn is returned when a link references a non-QID column.
	ErrUnknownColumn = errors.New("column: unknown column")
)

// Options describes the raw column configuration.
type Options struct {
	Categorical []string `yaml:"categorical" json:"categorical,omitempty"`
	Numeric     []string `yaml:"numeric" json:"numeric,omitempty"`
	// Linked maps a primary column to its dependent columns, listed in
	// descending hierarchy (the last child is closest to the primary).
	Linked           map[string][]string `yaml:"linked" json:"linked,omitempty"`
	TransformExclude []string            `yaml:"transform_exclude" json:"transformExclude,omitempty"`
	IndexExclude     []string            `yaml:"index_exclude" json:"indexExclude,omitempty"`
	// IndexExcludeChildColumns removes every linked child column from the
	// neighbor index, keeping primaries.
	IndexExcludeChildColumns bool `yaml:"index_exclude_child_columns" json:"indexExcludeChildColumns,omitempty"`
}

// Link is a resolved primary column with the children filled from the same
// source row.
type Link struct {
	Primary  string
	Children []string
}

// Set is the validated, immutable column configuration.
type Set struct {
	categorical []string
	numeric     []string
	kinds       map[string]bool // true = categorical
	transform   map[string]bool
	index       map[string]bool
	children    map[string]bool
	promoted    map[string]bool // children standing in for an excluded primary
	links       []Link
}

// New validates opts and builds a Set.
func New(opts Options) (*Set, error) {
	s := &Set{
		categorical: dedupe(opts.Categorical),
		numeric:     dedupe(opts.Numeric),
		kinds:       map[string]bool{},
		transform:   map[string]bool{},
		index:       map[string]bool{},
		children:    map[string]bool{},
		promoted:    map[string]bool{},
	}
	for _, c := range s.categorical {
		s.kinds[c] = true
	}
	for _, c := range s.numeric {
		if s.kinds[c] {
			return nil, fmt.Errorf("%w: %q", ErrOverlap, c)
		}
		s.kinds[c] = false
	}

	transformExclude := toSet(opts.TransformExclude)
	indexExclude := toSet(opts.IndexExclude)

	primaries := make([]string, 0, len(opts.Linked))
	for p := range opts.Linked {
		primaries = append(primaries, p)
	}
	sort.Strings(primaries)
	for _, p := range primaries {
		if _, ok := s.kinds[p]; !ok {
			return nil, fmt.Errorf("%w: linked primary %q is not a quasi-identifier", ErrUnknownColumn, p)
		}
		var kept []string
		for _, c := range opts.Linked[p] {
			if _, ok := s.kinds[c]; !ok {
				return nil, fmt.Errorf("%w: linked column %q is not a quasi-identifier", ErrUnknownColumn, c)
			}
			s.children[c] = true
			if !transformExclude[c] {
				kept = append(kept, c)
			}
		}
		primary := p
		if len(kept) > 0 && transformExclude[primary] {
			primary, kept = kept[len(kept)-1], kept[:len(kept)-1]
			s.promoted[primary] = true
		}
		if len(kept) > 0 {
			s.links = append(s.links, Link{Primary: primary, Children: kept})
		}
	}

	for _, c := range s.QIDs() {
		if !transformExclude[c] {
			s.transform[c] = true
		}
		if indexExclude[c] || (opts.IndexExcludeChildColumns && s.children[c]) {
			continue
		}
		s.index[c] = true
	}
	if len(s.index) == 0 {
		return nil, ErrNoIndexColumns
	}
	if len(s.transform) == 0 {
		return nil, ErrNoTransformColumns
	}
	return s, nil
}

// QIDs returns all quasi-identifier columns, categorical first.
func (s *Set) QIDs() []string {
	out := make([]string, 0, len(s.categorical)+len(s.numeric))
	out = append(out, s.categorical...)
	return append(out, s.numeric...)
}

func (s *Set) Categorical() []string { return append([]string(nil), s.categorical...) }

func (s *Set) Numeric() []string { return append([]string(nil), s.numeric...) }

// IsCategorical reports whether c is a categorical QID.
func (s *Set) IsCategorical(c string) bool { return s.kinds[c] }

// IsChild reports whether c appears as a child in the configured links,
// before exclusions were applied.
func (s *Set) IsChild(c string) bool { return s.children[c] }

// IsTransformed reports whether c is rewritten during transform.
func (s *Set) IsTransformed(c string) bool { return s.transform[c] }

// Transform returns the transformed QIDs in QID order.
func (s *Set) Transform() []string { return s.filter(s.transform) }

// IndexCategorical returns the categorical columns feeding the neighbor index.
func (s *Set) IndexCategorical() []string { return pick(s.categorical, s.index) }

// IndexNumeric returns the numeric columns feeding the neighbor index.
func (s *Set) IndexNumeric() []string { return pick(s.numeric, s.index) }

// Index returns the indexed columns, categorical block first.
func (s *Set) Index() []string { return append(s.IndexCategorical(), s.IndexNumeric()...) }

// Links returns the resolved links ordered by original primary name.
func (s *Set) Links() []Link {
	out := make([]Link, len(s.links))
	for i, l := range s.links {
		out[i] = Link{Primary: l.Primary, Children: append([]string(nil), l.Children...)}
	}
	return out
}

// Resolved returns the transformed columns that receive an independently
// chosen representative: every transformed non-child column plus link
// primaries, including a promoted child left without children of its own.
// Link children are filled from their primary's source row.
func (s *Set) Resolved() []string {
	primary := map[string]bool{}
	for _, l := range s.links {
		primary[l.Primary] = true
	}
	var out []string
	for _, c := range s.Transform() {
		if !s.children[c] || primary[c] || s.promoted[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Set) filter(m map[string]bool) []string { return pick(s.QIDs(), m) }

func pick(cols []string, m map[string]bool) []string {
	var out []string
	for _, c := range cols {
		if m[c] {
			out = append(out, c)
		}
	}
	return out
}

func dedupe(cols []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func toSet(cols []string) map[string]bool {
	m := make(map[string]bool, len(cols))
	for _, c := range cols {
		m[c] = true
	}
	return m
}
