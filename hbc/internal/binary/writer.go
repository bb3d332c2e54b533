package binary

import "encoding/binary"

// Writer accumulates little-endian binary output. Unlike Reader it owns its
// buffer; offsets recorded during writing can be patched afterwards.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteU32 writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteU64 writes a little-endian uint64 (fixed 8 bytes).
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteI32 writes a little-endian int32 (fixed 4 bytes).
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// Zero writes n zero bytes.
func (w *Writer) Zero(n int) {
	w.buf = append(w.buf, make([]byte, n)...)
}

// Pad writes zero bytes until the length is a multiple of align.
func (w *Writer) Pad(align int) {
	if rem := len(w.buf) % align; rem != 0 {
		w.Zero(align - rem)
	}
}

// PatchU32 overwrites a previously written uint32 at the given offset.
func (w *Writer) PatchU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:off+4], v)
}
