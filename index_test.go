package kanon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kanon/column"
	"github.com/viant/kanon/index/forest"
)

func TestNewIndex_ForestTrees(t *testing.T) {
	var testCases = []struct {
		description string
		columns     column.Options
		trees       int
		expect      int
	}{
		{description: "categorical default", columns: column.Options{Categorical: []string{"a"}}, expect: DefaultTrees},
		{description: "numerical default", columns: column.Options{Numeric: []string{"a"}}, expect: DefaultTrees},
		{description: "mixed default", columns: column.Options{Categorical: []string{"a"}, Numeric: []string{"b"}}, expect: DefaultTrees},
		{description: "explicit", columns: column.Options{Categorical: []string{"a"}, Numeric: []string{"b"}}, trees: 7, expect: 7},
	}
	for _, tc := range testCases {
		config := &Config{Columns: tc.columns, KTarget: 2, Trees: tc.trees}
		set, err := config.Validate()
		require.NoError(t, err, tc.description)
		idx, err := newIndex(config, set)
		require.NoError(t, err, tc.description)
		f, ok := idx.(*forest.Index)
		require.True(t, ok, tc.description)
		assert.Equal(t, tc.expect, f.Trees(), tc.description)
	}
}
