// Package column validates and partitions quasi-identifier columns into the
// categorical, numeric, transform, index and linked sets used by the
// anonymizer.
package column
