package bitfield

import "testing"

func TestFits(t *testing.T) {
	tests := []struct {
		v    uint32
		bits uint
		want bool
	}{
		{0, 1, true},
		{1, 1, true},
		{2, 1, false},
		{127, 7, true},
		{128, 7, false},
		{1<<25 - 1, 25, true},
		{1 << 25, 25, false},
		{0xFFFFFFFF, 32, true},
	}

	for _, tt := range tests {
		if got := Fits(tt.v, tt.bits); got != tt.want {
			t.Errorf("Fits(%d, %d) = %v, want %v", tt.v, tt.bits, got, tt.want)
		}
	}
}

func TestMax(t *testing.T) {
	if Max(7) != 127 {
		t.Errorf("Max(7) = %d, want 127", Max(7))
	}
	if Max(32) != 0xFFFFFFFF {
		t.Errorf("Max(32) = %d, want 0xFFFFFFFF", Max(32))
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		want   int
	}{
		{"empty", nil, 0},
		{"single word exact", []Field{{"a", 25}, {"b", 7}}, 1},
		{"straddle opens new word", []Field{{"a", 25}, {"b", 8}}, 2},
		{"function header layout", []Field{
			{"offset", 25}, {"paramCount", 7},
			{"bytecodeSizeInBytes", 15}, {"functionName", 17},
			{"infoOffset", 25}, {"frameSize", 7},
			{"environmentSize", 8}, {"highestReadCacheIndex", 8}, {"highestWriteCacheIndex", 8},
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.fields); got != tt.want {
				t.Errorf("WordCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPackLowBitsFirst(t *testing.T) {
	// Earliest field must land in the low-order bits.
	fields := []Field{{"lo", 4}, {"hi", 4}}
	words := Pack(fields, []uint32{0x3, 0x5})
	if len(words) != 1 {
		t.Fatalf("words: got %d, want 1", len(words))
	}
	if words[0] != 0x53 {
		t.Errorf("packed word: got 0x%x, want 0x53", words[0])
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	fields := []Field{
		{"offset", 25}, {"paramCount", 7},
		{"bytecodeSizeInBytes", 15}, {"functionName", 17},
		{"infoOffset", 25}, {"frameSize", 7},
		{"environmentSize", 8}, {"readCache", 8}, {"writeCache", 8},
	}

	cases := [][]uint32{
		{0, 0, 0, 0, 0, 0, 0, 0, 0},
		{1, 2, 3, 4, 5, 6, 7, 8, 9},
		// every field at its max width
		{1<<25 - 1, 127, 1<<15 - 1, 1<<17 - 1, 1<<25 - 1, 127, 255, 255, 255},
	}

	for _, values := range cases {
		words := Pack(fields, values)
		if len(words) != 4 {
			t.Fatalf("words: got %d, want 4", len(words))
		}
		got := Unpack(fields, words)
		for i := range values {
			if got[i] != values[i] {
				t.Errorf("field %s: got %d, want %d", fields[i].Name, got[i], values[i])
			}
		}
	}
}

func TestPackMasksOversizedValues(t *testing.T) {
	fields := []Field{{"a", 4}, {"b", 4}}
	words := Pack(fields, []uint32{0xFF, 0x1})
	got := Unpack(fields, words)
	if got[0] != 0xF {
		t.Errorf("oversized value should be masked: got 0x%x, want 0xF", got[0])
	}
	if got[1] != 0x1 {
		t.Errorf("neighbor corrupted: got 0x%x, want 0x1", got[1])
	}
}

func TestPackValueCountMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on value count mismatch")
		}
	}()
	Pack([]Field{{"a", 4}}, []uint32{1, 2})
}
