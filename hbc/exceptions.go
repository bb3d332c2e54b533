package hbc

import (
	"encoding/binary"

	"github.com/wippyai/hbc-format/errors"
)

// ExceptionHandlerInfo is one (start, end, target) program-counter range,
// each a byte offset into the owning function's bytecode. Handler depth is
// not represented at this layer; matching a faulting program counter
// against ranges is the interpreter's concern.
type ExceptionHandlerInfo struct {
	Start  uint32
	End    uint32
	Target uint32
}

// ExceptionHandlerTable is a borrowed view over one function's handler
// triples.
type ExceptionHandlerTable struct {
	raw []byte
}

// Count returns the number of handler triples.
func (t ExceptionHandlerTable) Count() int {
	return len(t.raw) / ExceptionHandlerSize
}

// At decodes the i'th handler triple.
func (t ExceptionHandlerTable) At(i int) ExceptionHandlerInfo {
	off := i * ExceptionHandlerSize
	return ExceptionHandlerInfo{
		Start:  binary.LittleEndian.Uint32(t.raw[off:]),
		End:    binary.LittleEndian.Uint32(t.raw[off+4:]),
		Target: binary.LittleEndian.Uint32(t.raw[off+8:]),
	}
}

// ReadExceptionHandlers reads the count-prefixed handler table stored at
// an absolute byte offset, typically a function's info offset when its
// has-exception-handler flag is set.
func ReadExceptionHandlers(buf []byte, off uint32) (ExceptionHandlerTable, error) {
	pos := int(off)
	if pos+4 > len(buf) {
		return ExceptionHandlerTable{}, errors.Truncated("exception handler table", pos, 4, len(buf)-pos)
	}
	count := int(binary.LittleEndian.Uint32(buf[pos:]))
	start := pos + 4
	size := count * ExceptionHandlerSize
	if size < 0 || start+size > len(buf) {
		return ExceptionHandlerTable{}, errors.Truncated("exception handler table", start, size, len(buf)-start)
	}
	return ExceptionHandlerTable{raw: buf[start : start+size : start+size]}, nil
}
