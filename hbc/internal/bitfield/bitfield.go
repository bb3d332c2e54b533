// Package bitfield packs sequences of narrow unsigned fields into 32-bit
// little-endian words with a fixed, compiler-independent layout:
//
//   - the earliest-declared field occupies the lowest-order bits
//   - a field never straddles a word boundary; if it does not fit in the
//     bits remaining in the current word, it starts the next word
//
// This reproduces the layout the original C++ bit-field records have on
// little-endian targets, and it is the single source of truth shared by the
// compact and full-width record codecs.
package bitfield

// WordBits is the size of one packing word.
const WordBits = 32

// Field describes one packed field: a name for diagnostics and its width
// in bits within the compact encoding.
type Field struct {
	Name string
	Bits uint
}

// Fits reports whether v is representable in bits.
func Fits(v uint32, bits uint) bool {
	if bits >= WordBits {
		return true
	}
	return v <= (uint32(1)<<bits)-1
}

// Max returns the largest value representable in bits.
func Max(bits uint) uint32 {
	if bits >= WordBits {
		return ^uint32(0)
	}
	return (uint32(1) << bits) - 1
}

// WordCount returns the number of words the field sequence occupies.
func WordCount(fields []Field) int {
	words := 0
	used := uint(WordBits) // force first field to open a word
	for _, f := range fields {
		if used+f.Bits > WordBits {
			words++
			used = 0
		}
		used += f.Bits
	}
	return words
}

// Pack packs values into words following the layout rules. It panics if
// the number of values does not match the number of fields; callers check
// value widths with Fits before packing, out-of-width bits are masked.
func Pack(fields []Field, values []uint32) []uint32 {
	if len(values) != len(fields) {
		panic("bitfield: value count does not match field count")
	}
	words := make([]uint32, 0, WordCount(fields))
	var cur uint32
	used := uint(0)
	open := false
	for i, f := range fields {
		if open && used+f.Bits > WordBits {
			words = append(words, cur)
			cur, used = 0, 0
		}
		open = true
		cur |= (values[i] & Max(f.Bits)) << used
		used += f.Bits
	}
	if open {
		words = append(words, cur)
	}
	return words
}

// Unpack extracts the field values from words packed by Pack.
func Unpack(fields []Field, words []uint32) []uint32 {
	values := make([]uint32, len(fields))
	word := -1
	used := uint(WordBits)
	for i, f := range fields {
		if used+f.Bits > WordBits {
			word++
			used = 0
		}
		values[i] = (words[word] >> used) & Max(f.Bits)
		used += f.Bits
	}
	return values
}
