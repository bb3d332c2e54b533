package hbc

import "testing"

func maxedFunctionHeader() FunctionHeader {
	return FunctionHeader{
		Offset:                 1<<25 - 1,
		ParamCount:             1<<7 - 1,
		BytecodeSizeInBytes:    1<<15 - 1,
		FunctionName:           1<<17 - 1,
		InfoOffset:             1<<25 - 1,
		FrameSize:              1<<7 - 1,
		EnvironmentSize:        1<<8 - 1,
		HighestReadCacheIndex:  255,
		HighestWriteCacheIndex: 255,
		Flags:                  FlagStrictMode | FlagHasDebugInfo,
	}
}

func TestSmallFuncHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		h    FunctionHeader
	}{
		{"zero", FunctionHeader{}},
		{"typical", FunctionHeader{
			Offset:              1024,
			ParamCount:          3,
			BytecodeSizeInBytes: 200,
			FunctionName:        17,
			InfoOffset:          4096,
			FrameSize:           12,
			EnvironmentSize:     2,
			Flags:               FlagStrictMode,
		}},
		{"all fields at max compact width", maxedFunctionHeader()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			small := MakeSmallFuncHeader(tt.h)
			if small.Overflowed() {
				t.Fatal("header within compact widths must not overflow")
			}

			var rec [SmallFuncHeaderSize]byte
			small.pack(rec[:])
			got := unpackSmallFuncHeader(rec[:]).Decode()
			if got != tt.h {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tt.h)
			}
		})
	}
}

func TestSmallFuncHeaderOverflow(t *testing.T) {
	// Each case pushes exactly one field past its compact width.
	tests := []struct {
		name   string
		mutate func(*FunctionHeader)
	}{
		{"offset", func(h *FunctionHeader) { h.Offset = 1 << 25 }},
		{"paramCount", func(h *FunctionHeader) { h.ParamCount = 1 << 7 }},
		{"bytecodeSizeInBytes", func(h *FunctionHeader) { h.BytecodeSizeInBytes = 1 << 15 }},
		{"functionName", func(h *FunctionHeader) { h.FunctionName = 1 << 17 }},
		{"frameSize", func(h *FunctionHeader) { h.FrameSize = 1 << 7 }},
		{"environmentSize", func(h *FunctionHeader) { h.EnvironmentSize = 1 << 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := maxedFunctionHeader()
			h.InfoOffset = 0x00BC614E // stands in for the large header offset
			tt.mutate(&h)
			if h.FitsSmall() {
				t.Fatal("mutated header should not fit compact widths")
			}

			small := MakeSmallFuncHeader(h)
			if !small.Overflowed() {
				t.Fatal("expected overflowed compact header")
			}
			if got := small.LargeHeaderOffset(); got != h.InfoOffset {
				t.Errorf("LargeHeaderOffset = 0x%x, want 0x%x", got, h.InfoOffset)
			}
			if small.Flags&^FlagOverflowed != h.Flags&^FlagOverflowed {
				t.Errorf("flags not preserved: got %08b, want %08b", small.Flags, h.Flags)
			}
		})
	}
}

func TestLargeHeaderOffsetSplitJoin(t *testing.T) {
	// reconstruct(split(x)) == x must hold for any 32-bit offset.
	offsets := []uint32{
		0, 1, 0xffff, 0x10000, 0x12345678, 0xdeadbeef, 0xffffffff,
	}
	for _, off := range offsets {
		var s SmallFuncHeader
		s.SetLargeHeaderOffset(off)
		if !s.Overflowed() {
			t.Fatalf("SetLargeHeaderOffset(0x%x) did not set the overflow flag", off)
		}
		if got := s.LargeHeaderOffset(); got != off {
			t.Errorf("split/join 0x%x: got 0x%x", off, got)
		}

		// The split must survive the wire encoding too.
		var rec [SmallFuncHeaderSize]byte
		s.pack(rec[:])
		decoded := unpackSmallFuncHeader(rec[:])
		if got := decoded.LargeHeaderOffset(); got != off {
			t.Errorf("split/join through wire 0x%x: got 0x%x", off, got)
		}
	}
}

func TestLargeFuncHeaderRoundTrip(t *testing.T) {
	h := FunctionHeader{
		Offset:                 0x04000000, // past the 25-bit compact limit
		ParamCount:             200,
		BytecodeSizeInBytes:    1 << 20,
		FunctionName:           1 << 18,
		InfoOffset:             0x05000000,
		FrameSize:              190,
		EnvironmentSize:        300,
		HighestReadCacheIndex:  9,
		HighestWriteCacheIndex: 11,
		Flags:                  FlagStrictMode | FlagHasExceptionHandler,
	}

	var rec [LargeFuncHeaderSize]byte
	encodeLargeFuncHeader(rec[:], h)
	if got := decodeLargeFuncHeader(rec[:]); got != h {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, h)
	}
}

func TestFuncHeaderCacheLineInvariants(t *testing.T) {
	if 32%SmallFuncHeaderSize != 0 {
		t.Errorf("SmallFuncHeaderSize %d must evenly divide 32", SmallFuncHeaderSize)
	}
}

func TestFunctionHeaderFlags(t *testing.T) {
	f := FlagStrictMode | FlagHasExceptionHandler
	if !f.StrictMode() || !f.HasExceptionHandler() {
		t.Error("set flags not reported")
	}
	if f.HasDebugInfo() || f.Overflowed() {
		t.Error("unset flags reported")
	}
}
