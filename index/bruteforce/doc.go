// Package bruteforce provides an exact vector index that answers kNN queries
// by scanning all vectors with the configured metric. It is the reference
// implementation for small datasets and for testing merge planning without
// approximation effects.
package bruteforce
