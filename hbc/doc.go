// Package hbc implements the binary container format for compiled script
// bytecode consumed by a register-based virtual machine.
//
// A bytecode file is a dense, bit-packed wire format: a fixed 96-byte
// header whose counts and sizes describe every section that follows, a
// compact string table and compact per-function headers that each spill
// to full-width overflow records when a value exceeds its bit width, and
// a set of raw buffer sections for literal and regexp data. The same
// logical content has two physical forms selected by magic number:
// execution form, and a delta form suitable for binary diffing whose
// magic is the bitwise complement of the execution magic.
//
// # Parsing
//
// Populate borrowed views over a buffer already in memory:
//
//	data, _ := os.ReadFile("bundle.hbc")
//	fields, err := hbc.PopulateFromBuffer(data, hbc.FormExecution)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h, _ := fields.FunctionHeader(int(fields.Header.GlobalCodeIndex))
//
// Population is a single forward pass: each section's extent is computed
// from the header, checked against the remaining buffer, and exposed as a
// subslice view. Nothing is copied and nothing is read lazily; the first
// malformed or truncated section fails the whole parse with a
// *errors.FormatError and no partial result. Views must not outlive the
// buffer they borrow from.
//
// # Compact records and overflow
//
// String table entries and function headers are bit-packed to widths that
// fit the overwhelming majority of values. An entry that cannot fit sets
// a sentinel (the string entry's max length, or the function header's
// overflowed flag) and redirects to a full-width record: string entries
// index a dedicated overflow table, function headers repurpose two of
// their own fields to hold the byte offset of a full-width header. The
// bit layout is fixed and compiler-independent; see internal/bitfield.
//
// # Encoding
//
// Builder assembles a complete file from logical content:
//
//	b := &hbc.Builder{ ... }
//	data, err := b.Encode(hbc.FormExecution)
//
// # Patching
//
// Offline tools may rewrite files in place through the mutable variant:
//
//	fields, err := hbc.PopulateFromBufferMutable(data, hbc.FormDelta)
//	fields.SetSourceHash(newHash)
//
// Mutation is single-writer-or-many-readers, enforced by the caller.
package hbc
