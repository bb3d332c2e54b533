// Package binary provides the low-level byte plumbing for the hbc container
// format: a bounds-checked cursor Reader that hands out subslices of the
// underlying buffer without copying, and an append Writer with alignment
// padding. All multi-byte values are little-endian with fixed widths.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read would pass the end of the buffer.
var ErrShortBuffer = errors.New("binary: read past end of buffer")

// Reader is a forward-only cursor over a byte buffer. Slices returned by
// Take alias the underlying buffer; they are views, not copies.
type Reader struct {
	buf []byte
	off int
}

// NewReader creates a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Position returns the current byte offset.
func (r *Reader) Position() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Take returns the next n bytes as a subslice of the underlying buffer
// and advances past them.
func (r *Reader) Take(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, r.wrapError(n)
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

// Skip advances past n bytes without returning them.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Remaining() {
		return r.wrapError(n)
	}
	r.off += n
	return nil
}

// Align advances the cursor to the next multiple of align bytes.
func (r *Reader) Align(align int) error {
	rem := r.off % align
	if rem == 0 {
		return nil
	}
	return r.Skip(align - rem)
}

// U8 reads a single byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// I32 reads a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

func (r *Reader) wrapError(n int) error {
	return fmt.Errorf("at position %d: need %d bytes, %d remain: %w",
		r.off, n, r.Remaining(), ErrShortBuffer)
}
