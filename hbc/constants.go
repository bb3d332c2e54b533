package hbc

// Magic identifies a bytecode file in execution form.
const Magic uint64 = 0x1F1903C103BC1FC6

// DeltaMagic identifies the delta-prepped form: the file is laid out to
// minimize binary diff size and is not directly executable.
const DeltaMagic = ^Magic

// BytecodeVersion is the bytecode version produced and understood by this
// implementation.
const BytecodeVersion uint32 = 41

// PropertyCachingDisabled is the cache index which indicates no caching.
const PropertyCachingDisabled uint8 = 0

// Form selects which of the two physical encodings a buffer follows.
type Form int

const (
	// FormExecution is the default form, prepared for execution.
	FormExecution Form = iota

	// FormDelta is the form prepared to minimize binary diff size.
	FormDelta
)

// Magic returns the magic number expected for this form.
func (f Form) Magic() uint64 {
	if f == FormDelta {
		return DeltaMagic
	}
	return Magic
}

func (f Form) String() string {
	if f == FormDelta {
		return "delta"
	}
	return "execution"
}

// Options is the header's single-byte option flag set. Unknown bits are
// tolerated on parse and preserved on rewrite.
type Options uint8

// OptStaticBuiltins marks a file compiled with static builtins enabled.
const OptStaticBuiltins Options = 1 << 0

// StaticBuiltins reports whether the static-builtins bit is set.
func (o Options) StaticBuiltins() bool {
	return o&OptStaticBuiltins != 0
}

// Record and section sizes. HeaderSize must be a multiple of 32 and
// SmallFuncHeaderSize must evenly divide 32 so headers do not cross cache
// lines; both are hard format invariants.
const (
	HeaderSize = 96

	SmallFuncHeaderSize     = 16
	LargeFuncHeaderSize     = 31
	SmallStringEntrySize    = 4
	OverflowStringEntrySize = 8
	IdentifierHashSize      = 4
	RegExpEntrySize         = 8
	ExceptionHandlerSize    = 12
	DebugInfoHeaderSize     = 20
	DebugFileRegionSize     = 12

	// Sections are padded to this alignment.
	sectionAlign = 4
)

// Sentinels for the compact string table entry.
const (
	// InvalidOffset is the reserved invalid value for the 22-bit offset field.
	InvalidOffset uint32 = 1 << 22

	// InvalidLength in the length field marks an overflowed entry whose
	// offset field indexes the overflow table instead.
	InvalidLength uint32 = (1 << 8) - 1
)
