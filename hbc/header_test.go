package hbc

import (
	"bytes"
	"testing"

	"github.com/wippyai/hbc-format/hbc/internal/binary"
)

func TestMagicComplement(t *testing.T) {
	if DeltaMagic != ^Magic {
		t.Errorf("delta magic 0x%016x is not the complement of 0x%016x", DeltaMagic, Magic)
	}
	if FormExecution.Magic() != Magic {
		t.Error("execution form must use the execution magic")
	}
	if FormDelta.Magic() != DeltaMagic {
		t.Error("delta form must use the delta magic")
	}
}

func TestHeaderCacheLineInvariant(t *testing.T) {
	if HeaderSize%32 != 0 {
		t.Errorf("HeaderSize %d must be a multiple of 32", HeaderSize)
	}
}

func TestFileHeaderRoundTrip(t *testing.T) {
	h := FileHeader{
		Magic:              Magic,
		Version:            BytecodeVersion,
		FileLength:         4096,
		GlobalCodeIndex:    2,
		FunctionCount:      17,
		StringCount:        240,
		IdentifierCount:    31,
		StringTableBytes:   240*4 + 2*8,
		StringStorageSize:  9000,
		RegExpCount:        3,
		RegExpStorageSize:  128,
		ArrayBufferSize:    64,
		ObjKeyBufferSize:   32,
		ObjValueBufferSize: 48,
		CJSModuleCount:     -5,
		DebugInfoOffset:    3000,
		Options:            OptStaticBuiltins,
	}
	copy(h.SourceHash[:], bytes.Repeat([]byte{0xab}, 20))

	w := binary.NewWriter()
	h.encode(w)
	if w.Len() != HeaderSize {
		t.Fatalf("encoded header size: got %d, want %d", w.Len(), HeaderSize)
	}

	// Padding bytes are always zero.
	for i, b := range w.Bytes()[HeaderSize-7:] {
		if b != 0 {
			t.Errorf("padding byte %d: got 0x%02x, want 0", i, b)
		}
	}

	got := decodeFileHeader(binary.NewReader(w.Bytes()))
	if got != h {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, h)
	}
}

func TestFileHeaderModuleCount(t *testing.T) {
	tests := []struct {
		count    int32
		resolved bool
		want     int
	}{
		{0, false, 0},
		{7, false, 7},
		{-1, true, 1},
		{-42, true, 42},
	}

	for _, tt := range tests {
		h := FileHeader{CJSModuleCount: tt.count}
		if h.ModulesResolved() != tt.resolved {
			t.Errorf("ModulesResolved(%d) = %v, want %v", tt.count, h.ModulesResolved(), tt.resolved)
		}
		if h.ModuleCount() != tt.want {
			t.Errorf("ModuleCount(%d) = %d, want %d", tt.count, h.ModuleCount(), tt.want)
		}
	}
}

func TestFileHeaderForm(t *testing.T) {
	tests := []struct {
		magic uint64
		form  Form
		known bool
	}{
		{Magic, FormExecution, true},
		{DeltaMagic, FormDelta, true},
		{0xdeadbeef, FormExecution, false},
	}

	for _, tt := range tests {
		h := FileHeader{Magic: tt.magic}
		form, known := h.Form()
		if known != tt.known {
			t.Errorf("Form(0x%x) known = %v, want %v", tt.magic, known, tt.known)
		}
		if known && form != tt.form {
			t.Errorf("Form(0x%x) = %v, want %v", tt.magic, form, tt.form)
		}
	}
}

func TestOptionsUnknownBitsTolerated(t *testing.T) {
	o := Options(0xF1) // unknown high bits plus static builtins
	if !o.StaticBuiltins() {
		t.Error("static builtins bit not reported")
	}

	h := FileHeader{Magic: Magic, Version: BytecodeVersion, Options: o}
	w := binary.NewWriter()
	h.encode(w)
	got := decodeFileHeader(binary.NewReader(w.Bytes()))
	if got.Options != o {
		t.Errorf("unknown option bits not preserved: got 0x%02x, want 0x%02x", got.Options, o)
	}
}
