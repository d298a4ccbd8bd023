package index

// Index defines a vector index over dense, 0-based item ids. Build must be
// called once before Query; afterwards the index is read-only and Query is
// safe for concurrent use.
type Index interface {
	// Build constructs the index; item i is vectors[i]. Vectors must share a
	// dimension.
	Build(vectors [][]float32) error

	// Query returns up to n item ids ordered by ascending distance to vector,
	// with the matching distances.
	Query(vector []float32, n int) (ids []int, distances []float64, err error)

	// Len returns the number of indexed items.
	Len() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
