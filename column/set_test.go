package column

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		description string
		options     Options
		expectErr   error
	}{
		{
			description: "overlapping categorical and numeric",
			options:     Options{Categorical: []string{"a", "b"}, Numeric: []string{"b"}},
			expectErr:   ErrOverlap,
		},
		{
			description: "every column excluded from transform",
			options:     Options{Categorical: []string{"a"}, Numeric: []string{"n"}, TransformExclude: []string{"a", "n"}},
			expectErr:   ErrNoTransformColumns,
		},
		{
			description: "every column excluded from index",
			options:     Options{Categorical: []string{"a"}, IndexExclude: []string{"a"}},
			expectErr:   ErrNoIndexColumns,
		},
		{
			description: "child exclusion empties index",
			options: Options{
				Categorical:              []string{"city", "zip"},
				Linked:                   map[string][]string{"city": {"zip"}},
				IndexExclude:             []string{"city"},
				IndexExcludeChildColumns: true,
			},
			expectErr: ErrNoIndexColumns,
		},
		{
			description: "link to non-QID",
			options:     Options{Categorical: []string{"a"}, Linked: map[string][]string{"a": {"zzz"}}},
			expectErr:   ErrUnknownColumn,
		},
		{
			description: "valid mixed",
			options:     Options{Categorical: []string{"a"}, Numeric: []string{"n"}},
		},
	}
	for _, testCase := range testCases {
		_, err := New(testCase.options)
		if testCase.expectErr == nil {
			assert.NoError(t, err, testCase.description)
			continue
		}
		assert.True(t, errors.Is(err, testCase.expectErr), "%s: got %v", testCase.description, err)
	}
}

func TestNew_Partitions(t *testing.T) {
	s, err := New(Options{
		Categorical:      []string{"color", "city", "zip"},
		Numeric:          []string{"age", "income"},
		TransformExclude: []string{"income"},
		IndexExclude:     []string{"color"},
		Linked:           map[string][]string{"city": {"zip"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "city", "zip", "age", "income"}, s.QIDs())
	assert.Equal(t, []string{"color", "city", "zip", "age"}, s.Transform())
	assert.Equal(t, []string{"city", "zip", "age", "income"}, s.Index())
	assert.Equal(t, []string{"color", "city", "age"}, s.Resolved())
	assert.Equal(t, []Link{{Primary: "city", Children: []string{"zip"}}}, s.Links())
	assert.True(t, s.IsChild("zip"))
	assert.False(t, s.IsTransformed("income"))
}

func TestNew_PromotesLastChildWhenPrimaryExcluded(t *testing.T) {
	s, err := New(Options{
		Categorical:      []string{"country", "state", "city"},
		Linked:           map[string][]string{"country": {"state", "city"}},
		TransformExclude: []string{"country"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Link{{Primary: "city", Children: []string{"state"}}}, s.Links())
	assert.Equal(t, []string{"city"}, s.Resolved())
}

func TestNew_DropsLinkWithoutChildren(t *testing.T) {
	s, err := New(Options{
		Categorical:      []string{"a", "b"},
		Linked:           map[string][]string{"a": {"b"}},
		TransformExclude: []string{"b"},
	})
	require.NoError(t, err)
	assert.Empty(t, s.Links())
	assert.Equal(t, []string{"a"}, s.Resolved())
}

func TestNew_PromotedChildWithoutSiblingsIsResolved(t *testing.T) {
	s, err := New(Options{
		Categorical:      []string{"state", "city"},
		Linked:           map[string][]string{"state": {"city"}},
		TransformExclude: []string{"state"},
	})
	require.NoError(t, err)
	assert.Empty(t, s.Links())
	assert.Equal(t, []string{"city"}, s.Transform())
	assert.Equal(t, []string{"city"}, s.Resolved())
}

func TestNew_IndexExcludeChildColumns(t *testing.T) {
	s, err := New(Options{
		Categorical:              []string{"city", "zip"},
		Numeric:                  []string{"age"},
		Linked:                   map[string][]string{"city": {"zip"}},
		IndexExcludeChildColumns: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, s.IndexCategorical())
	assert.Equal(t, []string{"age"}, s.IndexNumeric())
}
