package errors

import (
	"fmt"
	"strings"
)

// Reason categorizes a format error.
type Reason string

const (
	ReasonMagicMismatch   Reason = "magic_mismatch"   // wrong form or corrupt file
	ReasonVersionMismatch Reason = "version_mismatch" // incompatible compiler/runtime pairing
	ReasonTruncated       Reason = "truncated"        // declared section extends past remaining bytes
	ReasonBadSentinel     Reason = "bad_sentinel"     // overflow index out of range
	ReasonBadOffset       Reason = "bad_offset"       // offset reconstruction or placement failure
	ReasonMisaligned      Reason = "misaligned"       // section start violates alignment
	ReasonFieldOverflow   Reason = "field_overflow"   // value does not fit its declared bit width
)

// FormatError is the structured error type used throughout the library.
type FormatError struct {
	Cause   error
	Reason  Reason
	Section string
	Detail  string
	Offset  int
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	var b strings.Builder

	b.WriteString("hbc: ")
	b.WriteString(string(e.Reason))

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
	}
	if e.Offset > 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two FormatErrors match
// when their Reasons are equal.
func (e *FormatError) Is(target error) bool {
	if t, ok := target.(*FormatError); ok {
		return e.Reason == t.Reason
	}
	return false
}

// Builder provides structured error construction.
type Builder struct {
	err FormatError
}

// New creates a new error builder.
func New(reason Reason) *Builder {
	return &Builder{
		err: FormatError{
			Reason: reason,
		},
	}
}

// Section sets the name of the section being processed.
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the byte offset at which the failure was detected.
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *FormatError {
	return &b.err
}

// Convenience constructors for common error patterns

// MagicMismatch creates an error for a magic number that does not match the
// expected form.
func MagicMismatch(got, want uint64) *FormatError {
	return &FormatError{
		Reason:  ReasonMagicMismatch,
		Section: "header",
		Detail:  fmt.Sprintf("magic 0x%016x, want 0x%016x", got, want),
	}
}

// VersionMismatch creates an error for an unsupported bytecode version.
func VersionMismatch(got, want uint32) *FormatError {
	return &FormatError{
		Reason:  ReasonVersionMismatch,
		Section: "header",
		Detail:  fmt.Sprintf("bytecode version %d, want %d", got, want),
	}
}

// Truncated creates an error for a section extending past the buffer end.
func Truncated(section string, offset, need, remain int) *FormatError {
	return &FormatError{
		Reason:  ReasonTruncated,
		Section: section,
		Offset:  offset,
		Detail:  fmt.Sprintf("need %d bytes, %d remain", need, remain),
	}
}

// BadSentinel creates an error for an overflow index past its table bounds.
func BadSentinel(section string, index, length int) *FormatError {
	return &FormatError{
		Reason:  ReasonBadSentinel,
		Section: section,
		Detail:  fmt.Sprintf("overflow index %d out of bounds (table length %d)", index, length),
	}
}

// BadOffset creates an error for an absolute offset outside the file.
func BadOffset(section string, offset int, detail string) *FormatError {
	return &FormatError{
		Reason:  ReasonBadOffset,
		Section: section,
		Offset:  offset,
		Detail:  detail,
	}
}

// FieldOverflow creates an error for a value exceeding its bit width.
func FieldOverflow(section, field string, value uint32, bits uint) *FormatError {
	return &FormatError{
		Reason:  ReasonFieldOverflow,
		Section: section,
		Detail:  fmt.Sprintf("field %s value %d does not fit %d bits", field, value, bits),
	}
}

// Wrap wraps an existing error with a reason and section context.
func Wrap(reason Reason, section string, cause error) *FormatError {
	return &FormatError{
		Reason:  reason,
		Section: section,
		Cause:   cause,
	}
}
