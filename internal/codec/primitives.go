// Package codec implements the bancho binary wire format: little-endian
// integers and floats, ULEB128-prefixed strings, and packet framing.
package codec

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned by any Read* function when the supplied byte
// slice does not contain enough bytes for the requested value. Per the
// spec, a caller that hits this mid-packet treats the request as over:
// it stops decoding and returns whatever response bytes it has already
// built, never a 5xx.
var ErrShortBuffer = errors.New("codec: short buffer")

// Reader consumes bytes from an in-memory buffer, advancing an internal
// cursor. Fixed-width reads decode in place; Bytes, Remaining and String
// copy the bytes they return.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) I8() (int8, error) {
	v, err := r.U8()
	return int8(v), err
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	return int64(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *Reader) F64() (float64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// Bytes consumes the next n raw bytes and returns a copy of them. Used for opaque
// blobs such as SPECTATE_FRAMES bodies.
func (r *Reader) Bytes(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Remaining returns every unread byte without advancing the cursor.
func (r *Reader) Remaining() []byte {
	out := make([]byte, r.Len())
	copy(out, r.buf[r.pos:])
	return out
}

// Writer accumulates bytes for an outbound packet body. The zero value is
// ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer, optionally pre-sizing the backing
// array to reduce reallocation for callers that know roughly how big the
// body will be.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

func (w *Writer) U8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) I8(v int8) *Writer {
	return w.U8(uint8(v))
}

func (w *Writer) U16(v uint16) *Writer {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) I16(v int16) *Writer {
	return w.U16(uint16(v))
}

func (w *Writer) U32(v uint32) *Writer {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) I32(v int32) *Writer {
	return w.U32(uint32(v))
}

func (w *Writer) U64(v uint64) *Writer {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *Writer) I64(v int64) *Writer {
	return w.U64(uint64(v))
}

func (w *Writer) F32(v float32) *Writer {
	return w.U32(math.Float32bits(v))
}

func (w *Writer) F64(v float64) *Writer {
	return w.U64(math.Float64bits(v))
}

// Raw appends b verbatim, unmodified. Used for opaque relay bodies such as
// SPECTATE_FRAMES.
func (w *Writer) Raw(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// String appends s in bancho ULEB128 string form.
func (w *Writer) String(s string) *Writer {
	w.buf = appendString(w.buf, s)
	return w
}

// Bytes returns the accumulated body.
func (w *Writer) Bytes() []byte {
	return w.buf
}
