package hbc

import (
	"github.com/wippyai/hbc-format/hbc/internal/binary"
)

// Byte offsets of header fields patched in place by tooling.
const (
	headerOffSourceHash      = 12
	headerOffFileLength      = 32
	headerOffGlobalCodeIndex = 36
	headerOffDebugInfoOffset = 84
	headerOffOptions         = 88
)

// FileHeader is the fixed-size record at byte 0 of every bytecode file.
// Counts and sizes here drive the section walk in PopulateFromBuffer.
type FileHeader struct {
	Magic              uint64
	Version            uint32
	SourceHash         [20]byte
	FileLength         uint32
	GlobalCodeIndex    uint32
	FunctionCount      uint32
	StringCount        uint32 // number of strings in the string table
	IdentifierCount    uint32 // number of strings which are identifiers
	StringTableBytes   uint32 // bytes of table entries, including overflow
	StringStorageSize  uint32 // bytes in the blob of string contents
	RegExpCount        uint32
	RegExpStorageSize  uint32
	ArrayBufferSize    uint32
	ObjKeyBufferSize   uint32
	ObjValueBufferSize uint32
	CJSModuleCount     int32 // number of modules, negative if already resolved
	DebugInfoOffset    uint32
	Options            Options
}

// ModulesResolved reports whether the CJS module table is in its
// statically resolved (flat function index) form.
func (h *FileHeader) ModulesResolved() bool {
	return h.CJSModuleCount < 0
}

// ModuleCount returns the magnitude of the signed module count.
func (h *FileHeader) ModuleCount() int {
	if h.CJSModuleCount < 0 {
		return int(-int64(h.CJSModuleCount))
	}
	return int(h.CJSModuleCount)
}

// Form returns the form this header's magic declares, and whether the
// magic matches either known constant at all.
func (h *FileHeader) Form() (Form, bool) {
	switch h.Magic {
	case Magic:
		return FormExecution, true
	case DeltaMagic:
		return FormDelta, true
	}
	return FormExecution, false
}

// decodeFileHeader reads the header fields. The caller has already
// verified that HeaderSize bytes are available.
func decodeFileHeader(r *binary.Reader) FileHeader {
	var h FileHeader
	h.Magic, _ = r.U64()
	h.Version, _ = r.U32()
	hash, _ := r.Take(len(h.SourceHash))
	copy(h.SourceHash[:], hash)
	h.FileLength, _ = r.U32()
	h.GlobalCodeIndex, _ = r.U32()
	h.FunctionCount, _ = r.U32()
	h.StringCount, _ = r.U32()
	h.IdentifierCount, _ = r.U32()
	h.StringTableBytes, _ = r.U32()
	h.StringStorageSize, _ = r.U32()
	h.RegExpCount, _ = r.U32()
	h.RegExpStorageSize, _ = r.U32()
	h.ArrayBufferSize, _ = r.U32()
	h.ObjKeyBufferSize, _ = r.U32()
	h.ObjValueBufferSize, _ = r.U32()
	h.CJSModuleCount, _ = r.I32()
	h.DebugInfoOffset, _ = r.U32()
	opts, _ := r.U8()
	h.Options = Options(opts)
	_ = r.Skip(7) // padding, always zero on write
	return h
}

// encode writes the header in wire layout, including the zero padding
// that brings the size to a multiple of 32 bytes.
func (h *FileHeader) encode(w *binary.Writer) {
	w.WriteU64(h.Magic)
	w.WriteU32(h.Version)
	w.WriteBytes(h.SourceHash[:])
	w.WriteU32(h.FileLength)
	w.WriteU32(h.GlobalCodeIndex)
	w.WriteU32(h.FunctionCount)
	w.WriteU32(h.StringCount)
	w.WriteU32(h.IdentifierCount)
	w.WriteU32(h.StringTableBytes)
	w.WriteU32(h.StringStorageSize)
	w.WriteU32(h.RegExpCount)
	w.WriteU32(h.RegExpStorageSize)
	w.WriteU32(h.ArrayBufferSize)
	w.WriteU32(h.ObjKeyBufferSize)
	w.WriteU32(h.ObjValueBufferSize)
	w.WriteI32(h.CJSModuleCount)
	w.WriteU32(h.DebugInfoOffset)
	w.Byte(byte(h.Options))
	w.Zero(7)
}
