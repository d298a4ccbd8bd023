package dataset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the value types a cell may hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

// Value is a single cell. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns a missing value.
func Null() Value { return Value{} }

// Number returns a numeric value; NaN is treated as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// String returns a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Parse converts raw text into a Value: empty text is null, finite numeric
// text is a number, anything else a string.
func Parse(s string) Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return Null()
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	return String(s)
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric content; ok is false for null and string values
// that do not parse as numbers.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Text returns the value rendered as text; null renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	}
	return ""
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Text()
}

// Equal reports whether two values are identical, nulls included.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	}
	return true
}

// Compare orders values: numbers ascending, then strings lexicographically,
// then nulls last.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return rank(a.kind) - rank(b.kind)
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case KindString:
		return strings.Compare(a.str, b.str)
	}
	return 0
}

func rank(k Kind) int {
	switch k {
	case KindNumber:
		return 0
	case KindString:
		return 1
	}
	return 2
}

// AppendKey appends a canonical, unambiguous encoding of v to dst.
func (v Value) AppendKey(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindNumber:
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v.num))
	case KindString:
		dst = binary.LittleEndian.AppendUint32(dst, uint32(len(v.str)))
		dst = append(dst, v.str...)
	}
	return dst
}

// MarshalJSON encodes null, number and string values as the matching JSON
// types.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes values produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch actual := raw.(type) {
	case nil:
		*v = Null()
	case float64:
		*v = Number(actual)
	case string:
		*v = String(actual)
	default:
		return fmt.Errorf("dataset: unsupported JSON value %s", data)
	}
	return nil
}
