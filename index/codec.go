package index

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated is returned when serialized index data ends prematurely.
var ErrTruncated = errors.New("index: truncated data")

// Writer appends little-endian primitives to a buffer. Vector blocks are
// stored as dim(uint32), n(uint32), then n*dim float32 values.
type Writer struct {
	buf []byte
}

func (w *Writer) PutU32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

func (w *Writer) PutU64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

func (w *Writer) PutF32(v float32) { w.PutU32(math.Float32bits(v)) }

func (w *Writer) PutString(s string) {
	w.PutU32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *Writer) PutBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// PutVectors writes a vector block.
func (w *Writer) PutVectors(vectors [][]float32) {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	w.PutU32(uint32(dim))
	w.PutU32(uint32(len(vectors)))
	for _, v := range vectors {
		for j := 0; j < dim; j++ {
			w.PutF32(v[j])
		}
	}
}

func (w *Writer) Bytes() []byte { return w.buf }

// Reader consumes data written by Writer. The first failure sticks and is
// reported by Err.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader { return &Reader{data: data} }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = ErrTruncated
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

func (r *Reader) String() string {
	n := int(r.U32())
	return string(r.take(n))
}

func (r *Reader) Bool() bool {
	b := r.take(1)
	return b != nil && b[0] == 1
}

// Vectors reads a vector block.
func (r *Reader) Vectors() [][]float32 {
	dim := int(r.U32())
	n := int(r.U32())
	if r.err != nil {
		return nil
	}
	if dim*n*4 > len(r.data)-r.off {
		r.err = ErrTruncated
		return nil
	}
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = r.F32()
		}
		out[i] = v
	}
	return out
}

func (r *Reader) Err() error { return r.err }
