package resolver

import (
	"math/rand/v2"
	"sort"

	"github.com/viant/kanon/dataset"
)

// Aggregator returns the position of the chosen value in values, or -1 when
// nothing can be chosen.
type Aggregator func(values []dataset.Value, rng *rand.Rand) int

// MedianSingle returns the middle non-null value. For an even count one of the
// two middle values is drawn at random; values are never averaged.
func MedianSingle(values []dataset.Value, rng *rand.Rand) int {
	sorted := sortedNonNull(values)
	if len(sorted) == 0 {
		return -1
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 && rng.IntN(2) == 0 {
		mid--
	}
	return sorted[mid]
}

// MedianStable is MedianSingle picking the lower middle for an even count.
func MedianStable(values []dataset.Value, _ *rand.Rand) int {
	sorted := sortedNonNull(values)
	if len(sorted) == 0 {
		return -1
	}
	return sorted[(len(sorted)-1)/2]
}

// ModeFair returns the most frequent value, null included, breaking ties at
// random.
func ModeFair(values []dataset.Value, rng *rand.Rand) int {
	modes := modal(values)
	if len(modes) == 0 {
		return -1
	}
	return modes[rng.IntN(len(modes))]
}

// ModeStable returns the smallest of the most frequent values.
func ModeStable(values []dataset.Value, _ *rand.Rand) int {
	modes := modal(values)
	if len(modes) == 0 {
		return -1
	}
	return modes[0]
}

func sortedNonNull(values []dataset.Value) []int {
	var out []int
	for i, v := range values {
		if !v.IsNull() {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return dataset.Compare(values[out[a]], values[out[b]]) < 0
	})
	return out
}

// modal returns the first position of every modal value, ordered by value.
func modal(values []dataset.Value) []int {
	counts := map[string]int{}
	first := map[string]int{}
	var keys []string
	var buf []byte
	for i, v := range values {
		buf = v.AppendKey(buf[:0])
		k := string(buf)
		if _, ok := counts[k]; !ok {
			first[k] = i
			keys = append(keys, k)
		}
		counts[k]++
	}
	best := 0
	for _, k := range keys {
		if counts[k] > best {
			best = counts[k]
		}
	}
	var out []int
	for _, k := range keys {
		if counts[k] == best {
			out = append(out, first[k])
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return dataset.Compare(values[out[a]], values[out[b]]) < 0
	})
	return out
}
