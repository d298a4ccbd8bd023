// Package resolver picks one representative value per group and column and
// rewrites grouped rows with it.
//
// Every aggregator works in index mode: it returns the position of the chosen
// value within its input, so a representative is always a value that was
// actually observed. Linked columns use the primary's position to copy the
// children from the same source row.
package resolver
