package hbc

import (
	enc "encoding/binary"

	"github.com/wippyai/hbc-format/errors"
)

// ConvertForm rewrites a buffer's magic number in place so the file reads
// as the given form. The two forms share every other byte, so this is the
// whole conversion. Converting to the form the buffer already has is a
// no-op; any other magic value is rejected.
//
// This is an offline patch operation: the caller must ensure no reader
// holds a view over the buffer.
func ConvertForm(buf []byte, to Form) error {
	if len(buf) < 8 {
		return errors.Truncated("header", 0, 8, len(buf))
	}
	cur := enc.LittleEndian.Uint64(buf)
	if cur == to.Magic() {
		return nil
	}
	var from Form
	if to == FormExecution {
		from = FormDelta
	} else {
		from = FormExecution
	}
	if cur != from.Magic() {
		return errors.MagicMismatch(cur, from.Magic())
	}
	enc.LittleEndian.PutUint64(buf, to.Magic())
	return nil
}
