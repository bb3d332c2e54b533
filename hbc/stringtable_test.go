package hbc

import "testing"

func TestMakeSmallStringTableEntryInline(t *testing.T) {
	tests := []struct {
		name  string
		entry StringTableEntry
	}{
		{"zero", StringTableEntry{}},
		{"ascii identifier", StringTableEntry{Offset: 100, Length: 10, IsIdentifier: true}},
		{"utf16", StringTableEntry{Offset: 2048, Length: 32, IsUTF16: true}},
		{"offset at limit", StringTableEntry{Offset: InvalidOffset - 1, Length: 5}},
		{"length at limit", StringTableEntry{Offset: 7, Length: InvalidLength - 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			small := MakeSmallStringTableEntry(tt.entry, 99)
			if small.Overflowed() {
				t.Fatal("in-width entry must be stored inline")
			}
			if small.Offset != tt.entry.Offset || small.Length != tt.entry.Length {
				t.Errorf("location: got (%d,%d), want (%d,%d)",
					small.Offset, small.Length, tt.entry.Offset, tt.entry.Length)
			}
			if small.IsUTF16 != tt.entry.IsUTF16 || small.IsIdentifier != tt.entry.IsIdentifier {
				t.Error("flags not preserved")
			}
		})
	}
}

func TestMakeSmallStringTableEntryOverflow(t *testing.T) {
	tests := []struct {
		name  string
		entry StringTableEntry
	}{
		{"offset too wide", StringTableEntry{Offset: InvalidOffset, Length: 4}},
		{"length too wide", StringTableEntry{Offset: 12, Length: InvalidLength}},
		{"both too wide", StringTableEntry{Offset: 1 << 30, Length: 1 << 16, IsUTF16: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			small := MakeSmallStringTableEntry(tt.entry, 42)
			if !small.Overflowed() {
				t.Fatal("out-of-width entry must overflow")
			}
			if small.Length != InvalidLength {
				t.Errorf("length: got %d, want sentinel %d", small.Length, InvalidLength)
			}
			if small.Offset != 42 {
				t.Errorf("offset: got %d, want overflow index 42", small.Offset)
			}
			if small.IsUTF16 != tt.entry.IsUTF16 || small.IsIdentifier != tt.entry.IsIdentifier {
				t.Error("flags not preserved")
			}
		})
	}
}

func TestSmallStringTableEntryPackUnpack(t *testing.T) {
	entries := []SmallStringTableEntry{
		{},
		{Offset: 1234, Length: 56, IsUTF16: true},
		{Offset: InvalidOffset - 1, Length: InvalidLength - 1, IsIdentifier: true},
		{Offset: 7, Length: InvalidLength, IsUTF16: true, IsIdentifier: true},
	}

	for _, e := range entries {
		got := unpackSmallStringTableEntry(e.pack())
		if got != e {
			t.Errorf("round trip: got %+v, want %+v", got, e)
		}
	}
}

func TestSmallStringTableEntryBitLayout(t *testing.T) {
	// isUTF16 bit 0, isIdentifier bit 1, offset bits 2..23, length bits 24..31.
	e := SmallStringTableEntry{Offset: 1, Length: 1, IsUTF16: true}
	want := uint32(1) | 1<<2 | 1<<24
	if got := e.pack(); got != want {
		t.Errorf("packed word: got 0x%08x, want 0x%08x", got, want)
	}
}
