// Package errors provides the structured error type for the hbc-format library.
//
// Every parse, encode, or patch failure is reported as a *FormatError
// categorized by Reason. The error carries the section being processed and
// the byte offset at which the failure was detected.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.ReasonTruncated).
//		Section("function headers").
//		Offset(96).
//		Detail("need %d bytes, %d remain", 1600, 32).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated("string storage", off, need, remain)
//	err := errors.MagicMismatch(got, want)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two FormatErrors match under errors.Is when their Reasons are equal, so
// callers can classify a failure without string matching.
package errors
