// Package index defines the neighbor-search capability used to find merge
// candidates among equivalence classes: an index is built once from class
// vectors, is read-only afterwards, and answers "n closest classes" queries.
// Implementations in this module include an exact brute-force scan, an exact
// vantage-point tree and an approximate randomized forest.
package index
