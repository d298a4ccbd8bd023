package kanon

import (
	"errors"
	"fmt"

	"github.com/viant/kanon/column"
	"github.com/viant/kanon/internal/distance"
)

// ErrInvalidTarget is returned when the anonymity target is below 1.
var ErrInvalidTarget = errors.New("kanon: k_target must be at least 1")

// DefaultTrees is the forest size used when Config.Trees is 0.
const DefaultTrees = 80

// IndexKind selects the neighbor index implementation.
type IndexKind string

const (
	// IndexForest is the approximate randomized tree forest (default).
	IndexForest IndexKind = "forest"
	// IndexBruteForce is an exact linear scan.
	IndexBruteForce IndexKind = "bruteforce"
	// IndexVPTree is an exact vantage-point tree; true metrics only.
	IndexVPTree IndexKind = "vptree"
)

// Config holds the engine parameters.
type Config struct {
	Columns column.Options `yaml:"columns" json:"columns"`
	KTarget int            `yaml:"k_target" json:"kTarget"`
	// PrivacyUnit names the column identifying the entity a row belongs to.
	// Empty means every row is its own unit.
	PrivacyUnit string    `yaml:"privacy_unit" json:"privacyUnit,omitempty"`
	Index       IndexKind `yaml:"index" json:"index,omitempty"`
	// Trees is the forest size; 0 means DefaultTrees.
	Trees  int    `yaml:"trees" json:"trees,omitempty"`
	Metric string `yaml:"metric" json:"metric,omitempty"`
	// NoScale disables robust scaling of numeric vectors.
	NoScale bool   `yaml:"no_scale" json:"noScale,omitempty"`
	Seed    uint64 `yaml:"seed" json:"seed,omitempty"`
	// Stable selects deterministic tie-breaking for representatives.
	Stable bool `yaml:"stable" json:"stable,omitempty"`
	// Widen is the number of doubled neighbor queries tried before a class
	// is left unresolved.
	Widen int `yaml:"widen" json:"widen,omitempty"`
}

// Validate checks the configuration and returns the resolved column set.
func (c *Config) Validate() (*column.Set, error) {
	if c.KTarget < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTarget, c.KTarget)
	}
	if c.Widen < 0 {
		return nil, fmt.Errorf("kanon: widen must not be negative: %d", c.Widen)
	}
	if c.Trees < 0 {
		return nil, fmt.Errorf("kanon: trees must not be negative: %d", c.Trees)
	}
	if _, err := distance.Parse(c.Metric); err != nil {
		return nil, fmt.Errorf("kanon: %w", err)
	}
	set, err := column.New(c.Columns)
	if err != nil {
		return nil, fmt.Errorf("kanon: invalid columns: %w", err)
	}
	if c.PrivacyUnit != "" {
		for _, q := range set.QIDs() {
			if q == c.PrivacyUnit {
				return nil, fmt.Errorf("kanon: privacy unit %q must not be a quasi-identifier", q)
			}
		}
	}
	if _, err := newIndex(c, set); err != nil {
		return nil, err
	}
	return set, nil
}
