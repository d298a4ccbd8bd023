// Package dataset defines the tabular model consumed and produced by the
// anonymizer: an ordered set of named columns, rows of typed values where a
// missing value is representable, and a stable identifier per row.
package dataset
