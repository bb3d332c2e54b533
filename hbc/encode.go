package hbc

import (
	"github.com/wippyai/hbc-format/errors"
	"github.com/wippyai/hbc-format/hbc/internal/binary"
)

// BuilderFunction is one function handed to the Builder. Offset,
// BytecodeSizeInBytes, InfoOffset, and the has-exception-handler flag of
// the header are assigned during layout; the remaining header fields are
// taken as given.
type BuilderFunction struct {
	Header            FunctionHeader
	Bytecode          []byte
	ExceptionHandlers []ExceptionHandlerInfo
}

// DebugInfoSource is the debug section content for the Builder.
type DebugInfoSource struct {
	Filenames         []string
	FileRegions       []DebugFileRegion
	Data              []byte
	LexicalDataOffset uint32
}

// Builder assembles a complete bytecode file. It is the producer half of
// the byte-buffer contract: Encode lays the sections out in the canonical
// order PopulateFromBuffer walks them, spilling wide records to overflow
// tables as needed.
type Builder struct {
	SourceHash      [20]byte
	GlobalCodeIndex uint32
	Options         Options

	Functions []BuilderFunction

	Strings          []StringTableEntry
	IdentifierHashes []uint32
	StringStorage    []byte

	ArrayBuffer    []byte
	ObjKeyBuffer   []byte
	ObjValueBuffer []byte

	RegExps       []RegExpTableEntry
	RegExpStorage []byte

	// Exactly one of the two module forms is emitted: CJSModulesStatic
	// when ResolvedModules is set, CJSModules otherwise.
	CJSModules       []CJSModuleEntry
	CJSModulesStatic []uint32
	ResolvedModules  bool

	Debug *DebugInfoSource
}

func alignUp(x int) int {
	return (x + sectionAlign - 1) &^ (sectionAlign - 1)
}

// Encode serializes the file in the requested form. The two forms differ
// only in their magic number; delta-form output is suitable for binary
// diffing but not execution.
func (b *Builder) Encode(form Form) ([]byte, error) {
	identifierCount := 0
	for _, s := range b.Strings {
		if s.IsIdentifier {
			identifierCount++
		}
	}
	if identifierCount != len(b.IdentifierHashes) {
		return nil, errors.New(errors.ReasonBadSentinel).
			Section("identifier hashes").
			Detail("%d identifier entries but %d hashes", identifierCount, len(b.IdentifierHashes)).
			Build()
	}

	// Compact string entries, spilling wide locations to the overflow table.
	smallStrings := make([]SmallStringTableEntry, len(b.Strings))
	var overflow []OverflowStringTableEntry
	for i, s := range b.Strings {
		if s.Offset < InvalidOffset && s.Length < InvalidLength {
			smallStrings[i] = MakeSmallStringTableEntry(s, 0)
			continue
		}
		idx := uint32(len(overflow))
		if idx >= InvalidOffset {
			return nil, errors.FieldOverflow("string overflow table", "offset", idx, 22)
		}
		smallStrings[i] = MakeSmallStringTableEntry(s, idx)
		overflow = append(overflow, OverflowStringTableEntry{Offset: s.Offset, Length: s.Length})
	}
	stringTableBytes := len(smallStrings)*SmallStringEntrySize + len(overflow)*OverflowStringEntrySize

	// Layout pass: assign every section and region its final offset.
	n := len(b.Functions)
	off := HeaderSize
	off += n * SmallFuncHeaderSize
	off = alignUp(off) + len(smallStrings)*SmallStringEntrySize
	off = alignUp(off) + len(b.IdentifierHashes)*IdentifierHashSize
	off = alignUp(off) + len(overflow)*OverflowStringEntrySize
	off = alignUp(off) + len(b.StringStorage)
	off = alignUp(off) + len(b.ArrayBuffer)
	off = alignUp(off) + len(b.ObjKeyBuffer)
	off = alignUp(off) + len(b.ObjValueBuffer)
	off = alignUp(off) + len(b.RegExps)*RegExpEntrySize
	off = alignUp(off) + len(b.RegExpStorage)
	off = alignUp(off)
	if b.ResolvedModules {
		off += len(b.CJSModulesStatic) * 4
	} else {
		off += len(b.CJSModules) * 8
	}

	// Function info region: exception handler tables.
	infoOffs := make([]uint32, n)
	for i, fn := range b.Functions {
		if len(fn.ExceptionHandlers) == 0 {
			continue
		}
		off = alignUp(off)
		infoOffs[i] = uint32(off)
		off += 4 + len(fn.ExceptionHandlers)*ExceptionHandlerSize
	}

	// Bytecode region.
	bcOffs := make([]uint32, n)
	for i, fn := range b.Functions {
		off = alignUp(off)
		bcOffs[i] = uint32(off)
		off += len(fn.Bytecode)
	}

	// Finalize headers now that their offsets are known, then place
	// full-width records for any that no longer fit the compact widths.
	final := make([]FunctionHeader, n)
	largeOffs := make([]uint32, n)
	needLarge := make([]bool, n)
	for i, fn := range b.Functions {
		h := fn.Header
		h.Offset = bcOffs[i]
		h.BytecodeSizeInBytes = uint32(len(fn.Bytecode))
		h.InfoOffset = infoOffs[i]
		if len(fn.ExceptionHandlers) > 0 {
			h.Flags |= FlagHasExceptionHandler
		}
		final[i] = h
		needLarge[i] = !h.FitsSmall()
	}
	for i := range b.Functions {
		if !needLarge[i] {
			continue
		}
		off = alignUp(off)
		largeOffs[i] = uint32(off)
		off += LargeFuncHeaderSize
	}

	debugOff := 0
	if b.Debug != nil {
		off = alignUp(off)
		debugOff = off
		filenameStorage := 0
		for _, name := range b.Debug.Filenames {
			filenameStorage += len(name)
		}
		off += DebugInfoHeaderSize + len(b.Debug.Filenames)*SmallStringEntrySize
		off = alignUp(off+filenameStorage) +
			len(b.Debug.FileRegions)*DebugFileRegionSize + len(b.Debug.Data)
	}
	fileLength := off

	header := FileHeader{
		Magic:              form.Magic(),
		Version:            BytecodeVersion,
		SourceHash:         b.SourceHash,
		FileLength:         uint32(fileLength),
		GlobalCodeIndex:    b.GlobalCodeIndex,
		FunctionCount:      uint32(n),
		StringCount:        uint32(len(b.Strings)),
		IdentifierCount:    uint32(identifierCount),
		StringTableBytes:   uint32(stringTableBytes),
		StringStorageSize:  uint32(len(b.StringStorage)),
		RegExpCount:        uint32(len(b.RegExps)),
		RegExpStorageSize:  uint32(len(b.RegExpStorage)),
		ArrayBufferSize:    uint32(len(b.ArrayBuffer)),
		ObjKeyBufferSize:   uint32(len(b.ObjKeyBuffer)),
		ObjValueBufferSize: uint32(len(b.ObjValueBuffer)),
		DebugInfoOffset:    uint32(debugOff),
		Options:            b.Options,
	}
	if b.ResolvedModules {
		header.CJSModuleCount = -int32(len(b.CJSModulesStatic))
	} else {
		header.CJSModuleCount = int32(len(b.CJSModules))
	}

	// Write pass.
	w := binary.NewWriter()
	header.encode(w)

	for i := range b.Functions {
		var small SmallFuncHeader
		if needLarge[i] {
			small = SmallFuncHeader{Flags: final[i].Flags}
			small.SetLargeHeaderOffset(largeOffs[i])
			// Defensive round-trip check on the split offset.
			if small.LargeHeaderOffset() != largeOffs[i] {
				return nil, errors.BadOffset("function headers", int(largeOffs[i]), "large header offset does not survive reconstruction")
			}
		} else {
			small = MakeSmallFuncHeader(final[i])
		}
		var rec [SmallFuncHeaderSize]byte
		small.pack(rec[:])
		w.WriteBytes(rec[:])
	}

	w.Pad(sectionAlign)
	for _, e := range smallStrings {
		w.WriteU32(e.pack())
	}
	w.Pad(sectionAlign)
	for _, h := range b.IdentifierHashes {
		w.WriteU32(h)
	}
	w.Pad(sectionAlign)
	for _, e := range overflow {
		w.WriteU32(e.Offset)
		w.WriteU32(e.Length)
	}
	w.Pad(sectionAlign)
	w.WriteBytes(b.StringStorage)
	w.Pad(sectionAlign)
	w.WriteBytes(b.ArrayBuffer)
	w.Pad(sectionAlign)
	w.WriteBytes(b.ObjKeyBuffer)
	w.Pad(sectionAlign)
	w.WriteBytes(b.ObjValueBuffer)
	w.Pad(sectionAlign)
	for _, e := range b.RegExps {
		w.WriteU32(e.Offset)
		w.WriteU32(e.Length)
	}
	w.Pad(sectionAlign)
	w.WriteBytes(b.RegExpStorage)
	w.Pad(sectionAlign)
	if b.ResolvedModules {
		for _, idx := range b.CJSModulesStatic {
			w.WriteU32(idx)
		}
	} else {
		for _, m := range b.CJSModules {
			w.WriteU32(m.ModuleID)
			w.WriteU32(m.FunctionIndex)
		}
	}

	for i, fn := range b.Functions {
		if len(fn.ExceptionHandlers) == 0 {
			continue
		}
		w.Pad(sectionAlign)
		if w.Len() != int(infoOffs[i]) {
			return nil, errors.BadOffset("function info", w.Len(), "layout and write pass disagree")
		}
		w.WriteU32(uint32(len(fn.ExceptionHandlers)))
		for _, eh := range fn.ExceptionHandlers {
			w.WriteU32(eh.Start)
			w.WriteU32(eh.End)
			w.WriteU32(eh.Target)
		}
	}

	for i, fn := range b.Functions {
		w.Pad(sectionAlign)
		if w.Len() != int(bcOffs[i]) {
			return nil, errors.BadOffset("function bytecode", w.Len(), "layout and write pass disagree")
		}
		w.WriteBytes(fn.Bytecode)
	}

	for i := range b.Functions {
		if !needLarge[i] {
			continue
		}
		w.Pad(sectionAlign)
		var rec [LargeFuncHeaderSize]byte
		encodeLargeFuncHeader(rec[:], final[i])
		w.WriteBytes(rec[:])
	}

	if b.Debug != nil {
		if err := b.encodeDebugInfo(w, debugOff); err != nil {
			return nil, err
		}
	}

	if w.Len() != fileLength {
		return nil, errors.BadOffset("file", w.Len(), "layout and write pass disagree on file length")
	}
	return w.Bytes(), nil
}

func (b *Builder) encodeDebugInfo(w *binary.Writer, debugOff int) error {
	w.Pad(sectionAlign)
	if w.Len() != debugOff {
		return errors.BadOffset("debug info", w.Len(), "layout and write pass disagree")
	}

	storageSize := 0
	for _, name := range b.Debug.Filenames {
		storageSize += len(name)
	}

	w.WriteU32(uint32(len(b.Debug.Filenames)))
	w.WriteU32(uint32(storageSize))
	w.WriteU32(uint32(len(b.Debug.FileRegions)))
	w.WriteU32(b.Debug.LexicalDataOffset)
	w.WriteU32(uint32(len(b.Debug.Data)))

	pos := uint32(0)
	for _, name := range b.Debug.Filenames {
		e := StringTableEntry{Offset: pos, Length: uint32(len(name))}
		if e.Length >= InvalidLength {
			return errors.FieldOverflow("debug filename table", "length", e.Length, 8)
		}
		if e.Offset >= InvalidOffset {
			return errors.FieldOverflow("debug filename table", "offset", e.Offset, 22)
		}
		w.WriteU32(MakeSmallStringTableEntry(e, 0).pack())
		pos += e.Length
	}
	for _, name := range b.Debug.Filenames {
		w.WriteBytes([]byte(name))
	}
	w.Pad(sectionAlign)
	for _, r := range b.Debug.FileRegions {
		w.WriteU32(r.FromAddress)
		w.WriteU32(r.FilenameID)
		w.WriteU32(r.SourceMappingURLID)
	}
	w.WriteBytes(b.Debug.Data)
	return nil
}
