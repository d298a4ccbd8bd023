package engine

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viant/kanon/internal/distance"
	sqlite "modernc.org/sqlite"
)

// RegisterFunctions registers kanon_l1, kanon_l2 and kanon_hamming with the
// driver. Only connections opened afterwards see them; Open calls it once.
func RegisterFunctions() error {
	functions := map[string]distance.Metric{
		"kanon_l1":      distance.Manhattan,
		"kanon_l2":      distance.Euclidean,
		"kanon_hamming": distance.Hamming,
	}
	for name, metric := range functions {
		if err := sqlite.RegisterDeterministicScalarFunction(name, 2, scalar(name, metric.Function())); err != nil {
			return fmt.Errorf("engine: register %s: %w", name, err)
		}
	}
	return nil
}

func scalar(name string, fn distance.Func) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		a, err := asVector(args[0])
		if err != nil {
			return nil, err
		}
		b, err := asVector(args[1])
		if err != nil {
			return nil, err
		}
		if a == nil || b == nil {
			return nil, nil
		}
		if len(a) != len(b) {
			return nil, fmt.Errorf("%s: dim mismatch %d vs %d", name, len(a), len(b))
		}
		return fn(a, b), nil
	}
}

func asVector(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return DecodeVector(v)
	default:
		return nil, fmt.Errorf("engine: unsupported argument type %T for vector; want BLOB", arg)
	}
}

// EncodeVector encodes a vector as a little-endian sequence of float32
// values; the length is derived from the BLOB size on decode.
func EncodeVector(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// DecodeVector decodes a BLOB produced by EncodeVector.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("engine: invalid vector blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
