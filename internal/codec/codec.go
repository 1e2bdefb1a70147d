// Package codec implements the fixed binary record format used by the
// persistence gateway.
//
// On-wire standard: all numerics are little-endian. Strings are an
// int32 byte-length prefix followed by raw bytes, no terminator.
// Timestamps are int64 nanosecond ticks since the Unix epoch.
// Collections are a uint64 count prefix followed by that many records
// in insertion order.
package codec

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/pradipta/bankstore-go/internal/domain"
)

// Writer accumulates an encoded blob.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded blob.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) PutInt32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) PutInt64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) PutUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// PutTime encodes t as nanosecond ticks since the Unix epoch.
func (w *Writer) PutTime(t time.Time) {
	w.PutInt64(t.UnixNano())
}

// PutString writes the int32 length prefix and raw bytes. The byte
// count must fit a signed 32-bit integer.
func (w *Writer) PutString(record, s string) error {
	if len(s) > math.MaxInt32 {
		return &domain.ErrEncoding{Record: record, Message: "string exceeds int32 length"}
	}
	w.PutInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// Reader walks an encoded blob. Every accessor bounds-checks before
// reading; a short or malformed buffer yields *domain.ErrDecoding,
// never a panic or out-of-bounds read.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps a blob for decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Remaining is the number of bytes left to decode.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

func (r *Reader) need(record string, n int) error {
	if r.Remaining() < n {
		return &domain.ErrDecoding{Record: record, Offset: r.off, Message: "truncated buffer"}
	}
	return nil
}

func (r *Reader) Int32(record string) (int32, error) {
	if err := r.need(record, 4); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v, nil
}

func (r *Reader) Int64(record string) (int64, error) {
	if err := r.need(record, 8); err != nil {
		return 0, err
	}
	v := int64(binary.LittleEndian.Uint64(r.buf[r.off:]))
	r.off += 8
	return v, nil
}

func (r *Reader) Uint64(record string) (uint64, error) {
	if err := r.need(record, 8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// Time decodes nanosecond ticks back into a time.Time.
func (r *Reader) Time(record string) (time.Time, error) {
	ticks, err := r.Int64(record)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, ticks), nil
}

func (r *Reader) String(record string) (string, error) {
	n, err := r.Int32(record)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", &domain.ErrDecoding{Record: record, Offset: r.off, Message: "negative string length"}
	}
	if err := r.need(record, int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// Count decodes a collection count prefix. Counts larger than the
// bytes left in the buffer are rejected up front so a corrupt prefix
// cannot drive an unbounded allocation.
func (r *Reader) Count(record string) (int, error) {
	n, err := r.Uint64(record)
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()) {
		return 0, &domain.ErrDecoding{Record: record, Offset: r.off, Message: "implausible collection count"}
	}
	return int(n), nil
}
