package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	assert.True(t, Parse("").IsNull())
	assert.True(t, Parse("  ").IsNull())
	assert.Equal(t, KindNumber, Parse("3.5").Kind())
	assert.Equal(t, KindString, Parse("gray").Kind())
	assert.Equal(t, KindString, Parse("NaN").Kind())
	assert.Equal(t, KindString, Parse("Inf").Kind())
	f, ok := Parse("42").Float()
	require.True(t, ok)
	assert.Equal(t, 42.0, f)
	_, ok = Parse("Inf").Float()
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	values := []Value{Null(), String("b"), Number(2), String("a"), Number(-1)}
	var ordered []string
	for len(values) > 0 {
		min := 0
		for i := range values {
			if Compare(values[i], values[min]) < 0 {
				min = i
			}
		}
		ordered = append(ordered, values[min].String())
		values = append(values[:min], values[min+1:]...)
	}
	assert.Equal(t, []string{"-1", "2", "a", "b", "<null>"}, ordered)
}

func TestEqual_NullIsDistinctCategory(t *testing.T) {
	assert.True(t, Equal(Null(), Null()))
	assert.False(t, Equal(Null(), String("")))
	assert.False(t, Equal(Number(1), String("1")))
}

func TestAppendKey_Unambiguous(t *testing.T) {
	a := String("ab").AppendKey(String("c").AppendKey(nil))
	b := String("a").AppendKey(String("bc").AppendKey(nil))
	assert.NotEqual(t, a, b)
}

func TestFromRecords(t *testing.T) {
	ds, err := FromRecords([]string{"a", "b"}, [][]string{{"1", "x"}, {"", "y"}})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "1", ds.ID(1))
	assert.True(t, ds.Get(1, "a").IsNull())
	assert.Equal(t, "y", ds.Get(1, "b").Text())

	_, err = FromRecords([]string{"a", "b"}, [][]string{{"1"}})
	assert.Error(t, err)
	_, err = New("a", "a")
	assert.Error(t, err)
}

func TestClone_IsDeep(t *testing.T) {
	ds, err := FromRecords([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)
	cp := ds.Clone()
	cp.Set(0, 0, String("z"))
	assert.Equal(t, "1", ds.Value(0, 0).Text())
	assert.Equal(t, "z", cp.Value(0, 0).Text())
}

func TestValue_JSON(t *testing.T) {
	in := []Value{Null(), Number(1.5), String("1.5"), String("")}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `[null,1.5,"1.5",""]`, string(data))
	var out []Value
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, len(in))
	for i := range in {
		assert.True(t, Equal(in[i], out[i]), "value %d", i)
	}
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{}`), &v))
}
