package hbc

import (
	"encoding/binary"

	"github.com/wippyai/hbc-format/hbc/internal/bitfield"
)

// FunctionHeaderFlags is the 4-bit flag set shared by the compact and
// full-width function header encodings.
type FunctionHeaderFlags uint8

const (
	FlagStrictMode          FunctionHeaderFlags = 1 << 0
	FlagHasExceptionHandler FunctionHeaderFlags = 1 << 1
	FlagHasDebugInfo        FunctionHeaderFlags = 1 << 2
	FlagOverflowed          FunctionHeaderFlags = 1 << 3
)

func (f FunctionHeaderFlags) StrictMode() bool          { return f&FlagStrictMode != 0 }
func (f FunctionHeaderFlags) HasExceptionHandler() bool { return f&FlagHasExceptionHandler != 0 }
func (f FunctionHeaderFlags) HasDebugInfo() bool        { return f&FlagHasDebugInfo != 0 }
func (f FunctionHeaderFlags) Overflowed() bool          { return f&FlagOverflowed != 0 }

// funcHeaderLayout is the single field-descriptor table driving both the
// compact and full-width function header codecs. Widths are the compact
// bit widths; the packing rules in internal/bitfield put these into four
// 32-bit words, so the compact record is 16 bytes and evenly divides a
// 32-byte cache line.
var funcHeaderLayout = []bitfield.Field{
	{Name: "offset", Bits: 25},
	{Name: "paramCount", Bits: 7},
	{Name: "bytecodeSizeInBytes", Bits: 15},
	{Name: "functionName", Bits: 17},
	{Name: "infoOffset", Bits: 25},
	{Name: "frameSize", Bits: 7},
	{Name: "environmentSize", Bits: 8},
	{Name: "highestReadCacheIndex", Bits: 8},
	{Name: "highestWriteCacheIndex", Bits: 8},
}

// FunctionHeader is the logical, full-width per-function metadata record.
type FunctionHeader struct {
	Offset                 uint32 // byte offset of the function's bytecode
	ParamCount             uint32
	BytecodeSizeInBytes    uint32
	FunctionName           uint32 // string table index
	InfoOffset             uint32 // byte offset of auxiliary per-function data
	FrameSize              uint32
	EnvironmentSize        uint32
	HighestReadCacheIndex  uint8
	HighestWriteCacheIndex uint8
	Flags                  FunctionHeaderFlags
}

// fieldValues returns the field values in funcHeaderLayout order.
func (h *FunctionHeader) fieldValues() []uint32 {
	return []uint32{
		h.Offset,
		h.ParamCount,
		h.BytecodeSizeInBytes,
		h.FunctionName,
		h.InfoOffset,
		h.FrameSize,
		h.EnvironmentSize,
		uint32(h.HighestReadCacheIndex),
		uint32(h.HighestWriteCacheIndex),
	}
}

// FitsSmall reports whether every field is representable in its compact
// bit width.
func (h *FunctionHeader) FitsSmall() bool {
	for i, v := range h.fieldValues() {
		if !bitfield.Fits(v, funcHeaderLayout[i].Bits) {
			return false
		}
	}
	return true
}

// SmallFuncHeader is the decoded compact function header. It has two
// states selected by Flags.Overflowed():
//
//	!overflowed: all fields are valid.
//	overflowed:  only Flags and LargeHeaderOffset are valid, and at the
//	             latter is a full-width FunctionHeader.
type SmallFuncHeader struct {
	Offset                 uint32
	ParamCount             uint32
	BytecodeSizeInBytes    uint32
	FunctionName           uint32
	InfoOffset             uint32
	FrameSize              uint32
	EnvironmentSize        uint32
	HighestReadCacheIndex  uint8
	HighestWriteCacheIndex uint8
	Flags                  FunctionHeaderFlags
}

// Overflowed reports whether this record redirects to a full-width header.
func (s SmallFuncHeader) Overflowed() bool {
	return s.Flags.Overflowed()
}

// SetLargeHeaderOffset marks the record overflowed and stores the 32-bit
// byte offset of the full-width header across two repurposed fields: the
// low 16 bits in offset, the high bits in infoOffset.
func (s *SmallFuncHeader) SetLargeHeaderOffset(largeHeaderOffset uint32) {
	s.Flags |= FlagOverflowed
	s.Offset = largeHeaderOffset & 0xffff
	s.InfoOffset = largeHeaderOffset >> 16
}

// LargeHeaderOffset reconstructs the byte offset of the full-width header.
// Only meaningful when Overflowed reports true.
func (s SmallFuncHeader) LargeHeaderOffset() uint32 {
	return s.InfoOffset<<16 | s.Offset
}

// MakeSmallFuncHeader builds a compact header equivalent to large if all
// fields fit their compact widths. Otherwise the result is overflowed,
// with large.InfoOffset taken as the byte offset of the full-width
// record; the caller is responsible for having placed the full-width
// record there. All other compact fields are then unspecified.
func MakeSmallFuncHeader(large FunctionHeader) SmallFuncHeader {
	small := SmallFuncHeader{Flags: large.Flags}
	if !large.FitsSmall() {
		small.SetLargeHeaderOffset(large.InfoOffset)
		return small
	}
	small.Offset = large.Offset
	small.ParamCount = large.ParamCount
	small.BytecodeSizeInBytes = large.BytecodeSizeInBytes
	small.FunctionName = large.FunctionName
	small.InfoOffset = large.InfoOffset
	small.FrameSize = large.FrameSize
	small.EnvironmentSize = large.EnvironmentSize
	small.HighestReadCacheIndex = large.HighestReadCacheIndex
	small.HighestWriteCacheIndex = large.HighestWriteCacheIndex
	return small
}

// Decode expands a non-overflowed compact record to the logical form.
func (s SmallFuncHeader) Decode() FunctionHeader {
	return FunctionHeader{
		Offset:                 s.Offset,
		ParamCount:             s.ParamCount,
		BytecodeSizeInBytes:    s.BytecodeSizeInBytes,
		FunctionName:           s.FunctionName,
		InfoOffset:             s.InfoOffset,
		FrameSize:              s.FrameSize,
		EnvironmentSize:        s.EnvironmentSize,
		HighestReadCacheIndex:  s.HighestReadCacheIndex,
		HighestWriteCacheIndex: s.HighestWriteCacheIndex,
		Flags:                  s.Flags,
	}
}

func (s SmallFuncHeader) pack(dst []byte) {
	words := bitfield.Pack(funcHeaderLayout, []uint32{
		s.Offset,
		s.ParamCount,
		s.BytecodeSizeInBytes,
		s.FunctionName,
		s.InfoOffset,
		s.FrameSize,
		s.EnvironmentSize,
		uint32(s.HighestReadCacheIndex),
		uint32(s.HighestWriteCacheIndex),
	})
	// flags share the fourth word's top byte
	words[3] |= uint32(s.Flags) << 24
	for i, w := range words {
		binary.LittleEndian.PutUint32(dst[i*4:], w)
	}
}

func unpackSmallFuncHeader(raw []byte) SmallFuncHeader {
	var words [4]uint32
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	flags := FunctionHeaderFlags(words[3] >> 24)
	words[3] &= 0x00ffffff
	v := bitfield.Unpack(funcHeaderLayout, words[:])
	return SmallFuncHeader{
		Offset:                 v[0],
		ParamCount:             v[1],
		BytecodeSizeInBytes:    v[2],
		FunctionName:           v[3],
		InfoOffset:             v[4],
		FrameSize:              v[5],
		EnvironmentSize:        v[6],
		HighestReadCacheIndex:  uint8(v[7]),
		HighestWriteCacheIndex: uint8(v[8]),
		Flags:                  flags,
	}
}

// FuncHeaderTable is a borrowed view over the compact function header
// section. Some entries may be overflow headers; callers check the
// overflow flag before reading other fields.
type FuncHeaderTable struct {
	raw []byte
}

// Count returns the number of function headers.
func (t FuncHeaderTable) Count() int {
	return len(t.raw) / SmallFuncHeaderSize
}

// At decodes the i'th compact header.
func (t FuncHeaderTable) At(i int) SmallFuncHeader {
	return unpackSmallFuncHeader(t.raw[i*SmallFuncHeaderSize:])
}

func (t FuncHeaderTable) set(i int, h SmallFuncHeader) {
	h.pack(t.raw[i*SmallFuncHeaderSize:])
}

// encodeLargeFuncHeader writes the full-width record: seven 32-bit fields
// followed by the two cache indices and the flag byte.
func encodeLargeFuncHeader(dst []byte, h FunctionHeader) {
	binary.LittleEndian.PutUint32(dst[0:], h.Offset)
	binary.LittleEndian.PutUint32(dst[4:], h.ParamCount)
	binary.LittleEndian.PutUint32(dst[8:], h.BytecodeSizeInBytes)
	binary.LittleEndian.PutUint32(dst[12:], h.FunctionName)
	binary.LittleEndian.PutUint32(dst[16:], h.InfoOffset)
	binary.LittleEndian.PutUint32(dst[20:], h.FrameSize)
	binary.LittleEndian.PutUint32(dst[24:], h.EnvironmentSize)
	dst[28] = h.HighestReadCacheIndex
	dst[29] = h.HighestWriteCacheIndex
	dst[30] = byte(h.Flags)
}

func decodeLargeFuncHeader(raw []byte) FunctionHeader {
	return FunctionHeader{
		Offset:                 binary.LittleEndian.Uint32(raw[0:]),
		ParamCount:             binary.LittleEndian.Uint32(raw[4:]),
		BytecodeSizeInBytes:    binary.LittleEndian.Uint32(raw[8:]),
		FunctionName:           binary.LittleEndian.Uint32(raw[12:]),
		InfoOffset:             binary.LittleEndian.Uint32(raw[16:]),
		FrameSize:              binary.LittleEndian.Uint32(raw[20:]),
		EnvironmentSize:        binary.LittleEndian.Uint32(raw[24:]),
		HighestReadCacheIndex:  raw[28],
		HighestWriteCacheIndex: raw[29],
		Flags:                  FunctionHeaderFlags(raw[30]),
	}
}
