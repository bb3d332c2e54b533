package hbc

import (
	"go.uber.org/zap"

	"github.com/wippyai/hbc-format/errors"
	"github.com/wippyai/hbc-format/hbc/internal/binary"
)

// PopulateFromBuffer walks a bytecode buffer once, in canonical section
// order, and constructs borrowed views over every section. The fields
// point directly into the buffer; it is the caller's responsibility to
// ensure the result does not outlive the buffer.
//
// form is the expected bytecode form. Validation is eager and total for
// all declared sections and fails fast on the first malformed, truncated,
// or inconsistent one, returning a *errors.FormatError and no partial
// result. The opaque bytecode inside each function is not validated here.
func PopulateFromBuffer(buf []byte, form Form) (*FileFields, error) {
	f := &FileFields{}
	if err := populate(f, buf, form); err != nil {
		return nil, err
	}
	return f, nil
}

// PopulateFromBufferMutable is PopulateFromBuffer for patch tools: the
// same walk and validation, but the returned views permit in-place
// rewrites. Callers must ensure no concurrent reader holds a view over
// the buffer while mutating it.
func PopulateFromBufferMutable(buf []byte, form Form) (*MutableFileFields, error) {
	f := &MutableFileFields{}
	if err := populate(&f.FileFields, buf, form); err != nil {
		return nil, err
	}
	return f, nil
}

func populate(f *FileFields, buf []byte, form Form) error {
	if len(buf) < HeaderSize {
		return errors.Truncated("header", 0, HeaderSize, len(buf))
	}

	r := binary.NewReader(buf)
	h := decodeFileHeader(r)

	// The magic gate comes before any other byte is interpreted: exactly
	// one of the two constants is valid for the expected form.
	if h.Magic != form.Magic() {
		return errors.MagicMismatch(h.Magic, form.Magic())
	}
	if h.Version != BytecodeVersion {
		return errors.VersionMismatch(h.Version, BytecodeVersion)
	}
	if int64(h.FileLength) != int64(len(buf)) {
		return errors.New(errors.ReasonTruncated).
			Section("header").
			Detail("declared file length %d does not match buffer size %d", h.FileLength, len(buf)).
			Build()
	}

	take := func(section string, n int) ([]byte, error) {
		if err := r.Align(sectionAlign); err != nil {
			return nil, errors.Truncated(section, r.Position(), sectionAlign, r.Remaining())
		}
		b, err := r.Take(n)
		if err != nil {
			return nil, errors.Truncated(section, r.Position(), n, r.Remaining())
		}
		return b, nil
	}

	raw, err := take("function headers", int(h.FunctionCount)*SmallFuncHeaderSize)
	if err != nil {
		return err
	}
	funcHeaders := FuncHeaderTable{raw: raw}

	raw, err = take("string table", int(h.StringCount)*SmallStringEntrySize)
	if err != nil {
		return err
	}
	stringTable := StringTable{raw: raw}

	raw, err = take("identifier hashes", int(h.IdentifierCount)*IdentifierHashSize)
	if err != nil {
		return err
	}
	identifierHashes := IdentifierHashTable{raw: raw}

	// The string table byte size covers small and overflow entries both;
	// whatever it declares beyond the small entries is the overflow table.
	smallBytes := int64(h.StringCount) * SmallStringEntrySize
	overflowBytes := int64(h.StringTableBytes) - smallBytes
	if overflowBytes < 0 || overflowBytes%OverflowStringEntrySize != 0 {
		return errors.New(errors.ReasonBadOffset).
			Section("string overflow table").
			Detail("string table bytes %d inconsistent with %d small entries", h.StringTableBytes, h.StringCount).
			Build()
	}
	raw, err = take("string overflow table", int(overflowBytes))
	if err != nil {
		return err
	}
	overflowTable := OverflowStringTable{raw: raw}

	stringStorage, err := take("string storage", int(h.StringStorageSize))
	if err != nil {
		return err
	}
	arrayBuffer, err := take("array buffer", int(h.ArrayBufferSize))
	if err != nil {
		return err
	}
	objKeyBuffer, err := take("object key buffer", int(h.ObjKeyBufferSize))
	if err != nil {
		return err
	}
	objValueBuffer, err := take("object value buffer", int(h.ObjValueBufferSize))
	if err != nil {
		return err
	}
	raw, err = take("regexp table", int(h.RegExpCount)*RegExpEntrySize)
	if err != nil {
		return err
	}
	regExpTable := RegExpTable{raw: raw}
	regExpStorage, err := take("regexp storage", int(h.RegExpStorageSize))
	if err != nil {
		return err
	}

	// The sign of the module count selects which physical table follows.
	var moduleTable CJSModuleTable
	var moduleTableStatic CJSModuleTableStatic
	if h.ModulesResolved() {
		raw, err = take("cjs module table", h.ModuleCount()*4)
		if err != nil {
			return err
		}
		moduleTableStatic = CJSModuleTableStatic{raw: raw}
	} else {
		raw, err = take("cjs module table", h.ModuleCount()*8)
		if err != nil {
			return err
		}
		moduleTable = CJSModuleTable{raw: raw}
	}

	// Eager sentinel checks, so a successfully populated view never
	// trips over an out-of-range overflow index later.
	for i := 0; i < stringTable.Count(); i++ {
		e := stringTable.At(i)
		if e.Overflowed() && int(e.Offset) >= overflowTable.Count() {
			return errors.BadSentinel("string table", int(e.Offset), overflowTable.Count())
		}
	}
	for i := 0; i < funcHeaders.Count(); i++ {
		small := funcHeaders.At(i)
		if !small.Overflowed() {
			continue
		}
		off := small.LargeHeaderOffset()
		if int64(off)+LargeFuncHeaderSize > int64(len(buf)) {
			return errors.BadOffset("function headers", int(off), "large header extends past end of file")
		}
	}
	if h.DebugInfoOffset != 0 {
		if int64(h.DebugInfoOffset)+DebugInfoHeaderSize > int64(len(buf)) {
			return errors.BadOffset("debug info", int(h.DebugInfoOffset), "debug info header extends past end of file")
		}
	}

	f.buf = buf
	f.Header = h
	f.FunctionHeaders = funcHeaders
	f.StringTableEntries = stringTable
	f.IdentifierHashes = identifierHashes
	f.StringTableOverflowEntries = overflowTable
	f.StringStorage = stringStorage
	f.ArrayBuffer = arrayBuffer
	f.ObjKeyBuffer = objKeyBuffer
	f.ObjValueBuffer = objValueBuffer
	f.RegExpTable = regExpTable
	f.RegExpStorage = regExpStorage
	f.CJSModuleTable = moduleTable
	f.CJSModuleTableStatic = moduleTableStatic

	Logger().Debug("populated bytecode file",
		zap.String("form", form.String()),
		zap.Uint32("functions", h.FunctionCount),
		zap.Uint32("strings", h.StringCount),
		zap.Int("modules", h.ModuleCount()),
		zap.Uint32("fileLength", h.FileLength),
	)
	return nil
}
