package engine

import (
	"math"
	"testing"
)

func TestDistanceFunctions(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()

	zero := EncodeVector([]float32{0, 0})
	threeFour := EncodeVector([]float32{3, 4})
	var testCases = []struct {
		description string
		query       string
		expect      float64
	}{
		{description: "l1", query: `SELECT kanon_l1(?, ?)`, expect: 7},
		{description: "l2", query: `SELECT kanon_l2(?, ?)`, expect: 5},
		{description: "hamming", query: `SELECT kanon_hamming(?, ?)`, expect: 2},
	}
	for _, tc := range testCases {
		var got float64
		if err := db.QueryRow(tc.query, zero, threeFour).Scan(&got); err != nil {
			t.Fatalf("%s: query failed: %v", tc.description, err)
		}
		if math.Abs(got-tc.expect) > 1e-9 {
			t.Fatalf("%s: got %v, want %v", tc.description, got, tc.expect)
		}
	}

	var null *float64
	if err := db.QueryRow(`SELECT kanon_l1(NULL, ?)`, zero).Scan(&null); err != nil {
		t.Fatalf("NULL query failed: %v", err)
	}
	if null != nil {
		t.Fatalf("expected NULL, got %v", *null)
	}
	if err := db.QueryRow(`SELECT kanon_l1(?, ?)`, zero, EncodeVector([]float32{1})).Scan(new(float64)); err == nil {
		t.Fatalf("expected dim mismatch error")
	}
}

func TestSQLOrderByDistance(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE v(id TEXT, vec BLOB)`); err != nil {
		t.Fatalf("CREATE TABLE failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO v(id, vec) VALUES ('far', ?), ('near', ?)`,
		EncodeVector([]float32{9, 9}), EncodeVector([]float32{1, 0})); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}
	var id string
	if err := db.QueryRow(`SELECT id FROM v ORDER BY kanon_l2(vec, ?) LIMIT 1`, EncodeVector([]float32{0, 0})).Scan(&id); err != nil {
		t.Fatalf("ORDER BY query failed: %v", err)
	}
	if id != "near" {
		t.Fatalf("id = %s, want near", id)
	}
}

func TestEncodeDecodeVector(t *testing.T) {
	orig := []float32{0.0, 1.5, -2.25, 3.75}
	decoded, err := DecodeVector(EncodeVector(orig))
	if err != nil {
		t.Fatalf("DecodeVector failed: %v", err)
	}
	if len(decoded) != len(orig) {
		t.Fatalf("decoded length = %d, want %d", len(decoded), len(orig))
	}
	for i := range orig {
		if decoded[i] != orig[i] {
			t.Fatalf("decoded[%d] = %v, want %v", i, decoded[i], orig[i])
		}
	}
	if v, err := DecodeVector(nil); err != nil || v != nil {
		t.Fatalf("DecodeVector(nil) = %v, %v", v, err)
	}
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}
