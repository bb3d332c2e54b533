package hbc

import (
	"github.com/wippyai/hbc-format/errors"
)

// FileFields represents direct byte-level access to the structured fields
// of a bytecode file. Every table and buffer is a borrowed view into the
// buffer the fields were populated from; the fields own nothing, and a
// FileFields must not outlive its buffer. Less structured portions of the
// file, such as function bytecode and the function info region, are
// reached through absolute offsets in the function headers.
//
// A FileFields produced by PopulateFromBuffer is read-only by contract
// and safe for concurrent readers. Tools that patch files in place use
// MutableFileFields instead.
type FileFields struct {
	buf []byte // the full backing buffer, for absolute-offset regions

	Header FileHeader

	// FunctionHeaders lists the compact function headers. Some of these
	// may be overflow headers.
	FunctionHeaders FuncHeaderTable

	// StringTableEntries lists the compact string table entries.
	StringTableEntries StringTable

	// IdentifierHashes lists one hash per identifier entry.
	IdentifierHashes IdentifierHashTable

	// StringTableOverflowEntries lists the overflowed string table entries.
	StringTableOverflowEntries OverflowStringTable

	// StringStorage is the character buffer used for string contents.
	StringStorage []byte

	// ArrayBuffer holds serialized array literals.
	ArrayBuffer []byte

	// ObjKeyBuffer and ObjValueBuffer hold serialized object literal
	// keys and values.
	ObjKeyBuffer   []byte
	ObjValueBuffer []byte

	// RegExpTable and RegExpStorage hold compiled regexp literals.
	RegExpTable   RegExpTable
	RegExpStorage []byte

	// CJSModuleTable holds unresolved (moduleId, functionIndex) pairs.
	// Populated when the header's module count is non-negative.
	CJSModuleTable CJSModuleTable

	// CJSModuleTableStatic holds resolved function indices. Populated
	// when the header's module count is negative.
	CJSModuleTableStatic CJSModuleTableStatic
}

// StringEntry resolves the i'th string table entry to its effective
// location, following the overflow indirection when the length sentinel
// is set.
func (f *FileFields) StringEntry(i int) (StringTableEntry, error) {
	if i < 0 || i >= f.StringTableEntries.Count() {
		return StringTableEntry{}, errors.BadOffset("string table", i, "entry index out of range")
	}
	small := f.StringTableEntries.At(i)
	entry := StringTableEntry{
		IsUTF16:      small.IsUTF16,
		IsIdentifier: small.IsIdentifier,
		Offset:       small.Offset,
		Length:       small.Length,
	}
	if small.Overflowed() {
		idx := int(small.Offset)
		if idx >= f.StringTableOverflowEntries.Count() {
			return StringTableEntry{}, errors.BadSentinel("string table", idx, f.StringTableOverflowEntries.Count())
		}
		ov := f.StringTableOverflowEntries.At(idx)
		entry.Offset = ov.Offset
		entry.Length = ov.Length
	}
	return entry, nil
}

// StringBytes returns the storage bytes of the i'th string. For UTF-16
// strings the length counts 16-bit units, so the byte extent is doubled.
func (f *FileFields) StringBytes(i int) ([]byte, error) {
	e, err := f.StringEntry(i)
	if err != nil {
		return nil, err
	}
	size := int64(e.Length)
	if e.IsUTF16 {
		size *= 2
	}
	if int64(e.Offset)+size > int64(len(f.StringStorage)) {
		return nil, errors.BadOffset("string storage", int(e.Offset), "string extends past storage")
	}
	return f.StringStorage[e.Offset : int64(e.Offset)+size], nil
}

// FunctionHeader returns the i'th function header in logical form,
// fetching the full-width record when the compact one is overflowed.
func (f *FileFields) FunctionHeader(i int) (FunctionHeader, error) {
	if i < 0 || i >= f.FunctionHeaders.Count() {
		return FunctionHeader{}, errors.BadOffset("function headers", i, "function index out of range")
	}
	small := f.FunctionHeaders.At(i)
	if !small.Overflowed() {
		return small.Decode(), nil
	}
	off := small.LargeHeaderOffset()
	if int64(off)+LargeFuncHeaderSize > int64(len(f.buf)) {
		return FunctionHeader{}, errors.BadOffset("function headers", int(off), "large header extends past end of file")
	}
	return decodeLargeFuncHeader(f.buf[off:]), nil
}

// FunctionBytecode returns the bytecode bytes of the i'th function. The
// content is opaque here; instructions are validated by the interpreter.
func (f *FileFields) FunctionBytecode(i int) ([]byte, error) {
	h, err := f.FunctionHeader(i)
	if err != nil {
		return nil, err
	}
	end := int64(h.Offset) + int64(h.BytecodeSizeInBytes)
	if end > int64(len(f.buf)) {
		return nil, errors.BadOffset("function bytecode", int(h.Offset), "bytecode extends past end of file")
	}
	return f.buf[h.Offset:end:end], nil
}

// ExceptionHandlers returns the i'th function's exception handler table,
// stored at its info offset. The function must have the
// has-exception-handler flag set.
func (f *FileFields) ExceptionHandlers(i int) (ExceptionHandlerTable, error) {
	h, err := f.FunctionHeader(i)
	if err != nil {
		return ExceptionHandlerTable{}, err
	}
	if !h.Flags.HasExceptionHandler() {
		return ExceptionHandlerTable{}, nil
	}
	return ReadExceptionHandlers(f.buf, h.InfoOffset)
}

// DebugInfo returns bounded views over the debug section. The header's
// debug info offset must be non-zero.
func (f *FileFields) DebugInfo() (*DebugInfo, error) {
	if f.Header.DebugInfoOffset == 0 {
		return nil, errors.BadOffset("debug info", 0, "file has no debug info")
	}
	return parseDebugInfo(f.buf, f.Header.DebugInfoOffset)
}

// MutableFileFields is the write-capable variant of FileFields used by
// offline patch tools. Setters rewrite the backing buffer in place.
// Callers serialize their own access: a buffer being mutated must not be
// concurrently read through any view.
type MutableFileFields struct {
	FileFields
}

// SetSmallFuncHeader rewrites the i'th compact function header in place.
func (f *MutableFileFields) SetSmallFuncHeader(i int, h SmallFuncHeader) error {
	if i < 0 || i >= f.FunctionHeaders.Count() {
		return errors.BadOffset("function headers", i, "function index out of range")
	}
	f.FunctionHeaders.set(i, h)
	return nil
}

// SetStringTableEntry rewrites the i'th compact string entry in place.
func (f *MutableFileFields) SetStringTableEntry(i int, e SmallStringTableEntry) error {
	if i < 0 || i >= f.StringTableEntries.Count() {
		return errors.BadOffset("string table", i, "entry index out of range")
	}
	f.StringTableEntries.set(i, e)
	return nil
}

// SetSourceHash rewrites the header's source hash in place.
func (f *MutableFileFields) SetSourceHash(hash [20]byte) {
	copy(f.buf[headerOffSourceHash:], hash[:])
	f.Header.SourceHash = hash
}

// SetOptions rewrites the header's option flags in place. Unknown bits
// are preserved exactly as given.
func (f *MutableFileFields) SetOptions(o Options) {
	f.buf[headerOffOptions] = byte(o)
	f.Header.Options = o
}
