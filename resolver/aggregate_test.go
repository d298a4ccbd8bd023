package resolver

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kanon/dataset"
)

func nums(values ...interface{}) []dataset.Value {
	out := make([]dataset.Value, len(values))
	for i, v := range values {
		switch actual := v.(type) {
		case nil:
			out[i] = dataset.Null()
		case int:
			out[i] = dataset.Number(float64(actual))
		case string:
			out[i] = dataset.String(actual)
		}
	}
	return out
}

func TestMedian(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var testCases = []struct {
		description string
		values      []dataset.Value
		stable      int
		single      []int
	}{
		{description: "odd count ignores nulls", values: nums(3, 1, nil, 2), stable: 3, single: []int{3}},
		{description: "even count", values: nums(4, 1, 3, 2), stable: 3, single: []int{3, 2}},
		{description: "all null", values: nums(nil, nil), stable: -1, single: []int{-1}},
		{description: "single", values: nums(7), stable: 0, single: []int{0}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.stable, MedianStable(tc.values, rng), tc.description)
		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			got := MedianSingle(tc.values, rng)
			assert.Contains(t, tc.single, got, tc.description)
			seen[got] = true
		}
		assert.Len(t, seen, len(tc.single), tc.description)
	}
}

func TestMode(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	var testCases = []struct {
		description string
		values      []dataset.Value
		stable      int
		fair        []int
	}{
		{description: "clear winner", values: nums("b", "a", "b"), stable: 0, fair: []int{0}},
		{description: "tie", values: nums("b", "a", "b", "a", "c"), stable: 1, fair: []int{0, 1}},
		{description: "null is a category", values: nums(nil, "a", nil), stable: 0, fair: []int{0}},
		{description: "numbers before strings", values: nums("x", 5), stable: 1, fair: []int{0, 1}},
		{description: "empty", values: nil, stable: -1, fair: []int{-1}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.stable, ModeStable(tc.values, rng), tc.description)
		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			got := ModeFair(tc.values, rng)
			assert.Contains(t, tc.fair, got, tc.description)
			seen[got] = true
		}
		assert.Len(t, seen, len(tc.fair), tc.description)
	}
}
