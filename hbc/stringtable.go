package hbc

import (
	"encoding/binary"

	"github.com/wippyai/hbc-format/hbc/internal/bitfield"
)

// stringEntryLayout is the bit layout of a compact string table entry,
// one 32-bit word: flags in the low bits, then offset, then length.
var stringEntryLayout = []bitfield.Field{
	{Name: "isUTF16", Bits: 1},
	{Name: "isIdentifier", Bits: 1},
	{Name: "offset", Bits: 22},
	{Name: "length", Bits: 8},
}

// StringTableEntry is the logical string table entry: a location in
// string storage plus encoding and identifier flags. It has no width
// limits; the compact encoding spills wide entries to the overflow table.
type StringTableEntry struct {
	Offset       uint32
	Length       uint32
	IsUTF16      bool
	IsIdentifier bool
}

// SmallStringTableEntry is the decoded compact entry. When Overflowed
// reports true, Offset is an index into the overflow table and Length is
// the InvalidLength sentinel.
type SmallStringTableEntry struct {
	Offset       uint32
	Length       uint32
	IsUTF16      bool
	IsIdentifier bool
}

// Overflowed reports whether this entry's location lives in the overflow
// table. Overflowed and inline are mutually exclusive states
// distinguished solely by the length sentinel.
func (e SmallStringTableEntry) Overflowed() bool {
	return e.Length == InvalidLength
}

// MakeSmallStringTableEntry builds a compact entry from a logical entry.
// If either the offset or the length exceeds its compact width, the entry
// records overflowOffset (the entry's index in the overflow table) with
// the length sentinel set instead.
func MakeSmallStringTableEntry(entry StringTableEntry, overflowOffset uint32) SmallStringTableEntry {
	small := SmallStringTableEntry{
		IsUTF16:      entry.IsUTF16,
		IsIdentifier: entry.IsIdentifier,
	}
	if entry.Offset < InvalidOffset && entry.Length < InvalidLength {
		small.Offset = entry.Offset
		small.Length = entry.Length
	} else {
		small.Offset = overflowOffset
		small.Length = InvalidLength
	}
	return small
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (e SmallStringTableEntry) pack() uint32 {
	words := bitfield.Pack(stringEntryLayout, []uint32{
		boolBit(e.IsUTF16),
		boolBit(e.IsIdentifier),
		e.Offset,
		e.Length,
	})
	return words[0]
}

func unpackSmallStringTableEntry(word uint32) SmallStringTableEntry {
	v := bitfield.Unpack(stringEntryLayout, []uint32{word})
	return SmallStringTableEntry{
		IsUTF16:      v[0] != 0,
		IsIdentifier: v[1] != 0,
		Offset:       v[2],
		Length:       v[3],
	}
}

// OverflowStringTableEntry is the full-width location record indexed by
// the offset field of an overflowed compact entry.
type OverflowStringTableEntry struct {
	Offset uint32
	Length uint32
}

// StringTable is a borrowed view over the compact string entry section.
type StringTable struct {
	raw []byte
}

// Count returns the number of compact entries.
func (t StringTable) Count() int {
	return len(t.raw) / SmallStringEntrySize
}

// At decodes the i'th compact entry.
func (t StringTable) At(i int) SmallStringTableEntry {
	word := binary.LittleEndian.Uint32(t.raw[i*SmallStringEntrySize:])
	return unpackSmallStringTableEntry(word)
}

func (t StringTable) set(i int, e SmallStringTableEntry) {
	binary.LittleEndian.PutUint32(t.raw[i*SmallStringEntrySize:], e.pack())
}

// OverflowStringTable is a borrowed view over the overflow entry section.
type OverflowStringTable struct {
	raw []byte
}

// Count returns the number of overflow entries.
func (t OverflowStringTable) Count() int {
	return len(t.raw) / OverflowStringEntrySize
}

// At decodes the i'th overflow entry.
func (t OverflowStringTable) At(i int) OverflowStringTableEntry {
	off := i * OverflowStringEntrySize
	return OverflowStringTableEntry{
		Offset: binary.LittleEndian.Uint32(t.raw[off:]),
		Length: binary.LittleEndian.Uint32(t.raw[off+4:]),
	}
}

// IdentifierHashTable is a borrowed view over the identifier hash
// section: one 32-bit hash per identifier entry, in the same relative
// order as the identifier entries in the string table.
type IdentifierHashTable struct {
	raw []byte
}

// Count returns the number of hashes.
func (t IdentifierHashTable) Count() int {
	return len(t.raw) / IdentifierHashSize
}

// At returns the i'th identifier hash.
func (t IdentifierHashTable) At(i int) uint32 {
	return binary.LittleEndian.Uint32(t.raw[i*IdentifierHashSize:])
}
