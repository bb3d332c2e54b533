package hbc

import (
	enc "encoding/binary"

	"github.com/wippyai/hbc-format/errors"
	"github.com/wippyai/hbc-format/hbc/internal/binary"
)

// DebugInfoHeader sizes the debug section stored at the file header's
// debug info offset.
type DebugInfoHeader struct {
	FilenameCount       uint32 // number of filenames stored in the table
	FilenameStorageSize uint32 // bytes in the filename storage contents
	FileRegionCount     uint32
	LexicalDataOffset   uint32 // byte offset of the lexical data within the debug data
	DebugDataSize       uint32 // size in bytes of the debug data
}

// DebugFileRegion maps a range of bytecode addresses (from FromAddress up
// to the next region) back to a source file and its source map URL.
type DebugFileRegion struct {
	FromAddress        uint32
	FilenameID         uint32
	SourceMappingURLID uint32
}

// DebugInfo is a borrowed view over the debug section: the filename
// table, the address-ordered file regions, and the raw debug data. File
// regions are producer-sorted ascending by address; lookup by address
// (e.g. binary search) is the consumer's responsibility.
type DebugInfo struct {
	Header          DebugInfoHeader
	filenames       StringTable
	filenameStorage []byte
	regions         []byte
	data            []byte
}

// Filename returns the i'th filename from the table.
func (d *DebugInfo) Filename(i int) string {
	e := d.filenames.At(i)
	return string(d.filenameStorage[e.Offset : e.Offset+e.Length])
}

// RegionCount returns the number of file regions.
func (d *DebugInfo) RegionCount() int {
	return len(d.regions) / DebugFileRegionSize
}

// Region decodes the i'th file region.
func (d *DebugInfo) Region(i int) DebugFileRegion {
	off := i * DebugFileRegionSize
	return DebugFileRegion{
		FromAddress:        enc.LittleEndian.Uint32(d.regions[off:]),
		FilenameID:         enc.LittleEndian.Uint32(d.regions[off+4:]),
		SourceMappingURLID: enc.LittleEndian.Uint32(d.regions[off+8:]),
	}
}

// Data returns the raw debug data blob.
func (d *DebugInfo) Data() []byte {
	return d.data
}

// LexicalData returns the lexical portion of the debug data.
func (d *DebugInfo) LexicalData() []byte {
	return d.data[d.Header.LexicalDataOffset:]
}

// parseDebugInfo builds the debug views from an absolute offset in the
// file buffer, validating every extent before constructing a view.
func parseDebugInfo(buf []byte, off uint32) (*DebugInfo, error) {
	if int64(off) >= int64(len(buf)) {
		return nil, errors.BadOffset("debug info", int(off), "offset past end of file")
	}
	r := binary.NewReader(buf)
	if err := r.Skip(int(off)); err != nil {
		return nil, errors.Wrap(errors.ReasonBadOffset, "debug info", err)
	}

	d := &DebugInfo{}
	hdr, err := r.Take(DebugInfoHeaderSize)
	if err != nil {
		return nil, errors.Truncated("debug info header", r.Position(), DebugInfoHeaderSize, r.Remaining())
	}
	d.Header = DebugInfoHeader{
		FilenameCount:       enc.LittleEndian.Uint32(hdr[0:]),
		FilenameStorageSize: enc.LittleEndian.Uint32(hdr[4:]),
		FileRegionCount:     enc.LittleEndian.Uint32(hdr[8:]),
		LexicalDataOffset:   enc.LittleEndian.Uint32(hdr[12:]),
		DebugDataSize:       enc.LittleEndian.Uint32(hdr[16:]),
	}

	take := func(section string, n int) ([]byte, error) {
		b, err := r.Take(n)
		if err != nil {
			return nil, errors.Truncated(section, r.Position(), n, r.Remaining())
		}
		return b, nil
	}

	raw, err := take("debug filename table", int(d.Header.FilenameCount)*SmallStringEntrySize)
	if err != nil {
		return nil, err
	}
	d.filenames = StringTable{raw: raw}

	if d.filenameStorage, err = take("debug filename storage", int(d.Header.FilenameStorageSize)); err != nil {
		return nil, err
	}
	if err = r.Align(sectionAlign); err != nil {
		return nil, errors.Truncated("debug file regions", r.Position(), sectionAlign, r.Remaining())
	}
	if d.regions, err = take("debug file regions", int(d.Header.FileRegionCount)*DebugFileRegionSize); err != nil {
		return nil, err
	}
	if d.data, err = take("debug data", int(d.Header.DebugDataSize)); err != nil {
		return nil, err
	}

	// Filename entries index filename storage directly; the debug table
	// has no overflow table to redirect to.
	for i := 0; i < d.filenames.Count(); i++ {
		e := d.filenames.At(i)
		if e.Overflowed() {
			return nil, errors.BadSentinel("debug filename table", int(e.Offset), 0)
		}
		if int64(e.Offset)+int64(e.Length) > int64(len(d.filenameStorage)) {
			return nil, errors.BadOffset("debug filename table", int(e.Offset), "filename extends past storage")
		}
	}
	if d.Header.LexicalDataOffset > d.Header.DebugDataSize {
		return nil, errors.BadOffset("debug data", int(d.Header.LexicalDataOffset), "lexical data offset past end of debug data")
	}

	return d, nil
}
