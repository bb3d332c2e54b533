package hbc

import "encoding/binary"

// RegExpTableEntry locates one compiled regular expression's bytecode
// inside the regexp storage section. The bytecode itself is opaque to
// this layer.
type RegExpTableEntry struct {
	Offset uint32
	Length uint32
}

// RegExpTable is a borrowed view over the regexp literal table.
type RegExpTable struct {
	raw []byte
}

// Count returns the number of regexp entries.
func (t RegExpTable) Count() int {
	return len(t.raw) / RegExpEntrySize
}

// At decodes the i'th regexp entry.
func (t RegExpTable) At(i int) RegExpTableEntry {
	off := i * RegExpEntrySize
	return RegExpTableEntry{
		Offset: binary.LittleEndian.Uint32(t.raw[off:]),
		Length: binary.LittleEndian.Uint32(t.raw[off+4:]),
	}
}
