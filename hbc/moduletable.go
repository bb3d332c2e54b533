package hbc

import "encoding/binary"

// CJSModuleEntry is one unresolved module reference: an opaque module id
// paired with the index of its wrapper function.
type CJSModuleEntry struct {
	ModuleID      uint32
	FunctionIndex uint32
}

// CJSModuleTable is a borrowed view over the unresolved module table,
// used when the header's module count is non-negative.
type CJSModuleTable struct {
	raw []byte
}

// Count returns the number of (moduleId, functionIndex) pairs.
func (t CJSModuleTable) Count() int {
	return len(t.raw) / 8
}

// At decodes the i'th pair.
func (t CJSModuleTable) At(i int) CJSModuleEntry {
	off := i * 8
	return CJSModuleEntry{
		ModuleID:      binary.LittleEndian.Uint32(t.raw[off:]),
		FunctionIndex: binary.LittleEndian.Uint32(t.raw[off+4:]),
	}
}

// CJSModuleTableStatic is a borrowed view over the statically resolved
// module table: a flat array of function indices, selected by a negative
// module count in the header.
type CJSModuleTableStatic struct {
	raw []byte
}

// Count returns the number of resolved modules.
func (t CJSModuleTableStatic) Count() int {
	return len(t.raw) / 4
}

// At returns the i'th resolved function index.
func (t CJSModuleTableStatic) At(i int) uint32 {
	return binary.LittleEndian.Uint32(t.raw[i*4:])
}
