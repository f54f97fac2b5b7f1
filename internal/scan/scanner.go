// Package scan walks a LIF container and builds its memory-block offset
// table.
//
// A LIF file is a 4-byte magic, a UTF-16 XML header, then a sequence of
// length-prefixed raw pixel payloads ("memory blocks"). The scanner
// validates the framing, decodes the header text, and records one
// (offset, length) pair per payload without touching the pixel data.
package scan

import (
	"math"

	"golang.org/x/text/encoding/unicode"

	"github.com/Arcadia-Science/readlif/internal/binary"
	"github.com/Arcadia-Science/readlif/internal/types"
)

const (
	// lifMagic is the little-endian value of the fixed signature
	// 70 00 00 00 that opens the file and every block header.
	lifMagic uint32 = 0x70

	// memMarker is the single byte that precedes every length field.
	memMarker uint8 = 0x2A

	// truncationProbeLen is how many bytes before a failed validation are
	// probed for zeros before declaring the file truncated.
	truncationProbeLen = 100
)

// Result is the outcome of scanning a container.
type Result struct {
	// XMLHeader is the decoded metadata document text.
	XMLHeader string

	// Ranges locates each memory block's pixel payload, in file order.
	Ranges []types.ByteRange

	// Truncated is set when the block loop ran into a zero-filled region
	// instead of a valid block header. Payloads past TruncatedAt are
	// missing from Ranges.
	Truncated bool

	// TruncatedAt is the offset of the block header that failed
	// validation, when Truncated is set.
	TruncatedAt int64
}

// Scan validates the container signature, extracts the XML header text,
// and walks the remaining blocks to build the offset table.
//
// A malformed signature or block framing yields a *types.FormatError. A
// trailing zero-filled region is not an error: scanning stops and the
// result is marked truncated.
func Scan(sr *binary.SafeReader) (*Result, error) {
	r := binary.NewReader(sr, 0)

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	res := &Result{XMLHeader: header}
	for r.Offset() < sr.Size() {
		blockStart := r.Offset()
		rng, failOff, err := readBlockHeader(r)
		if err != nil {
			if zeroFilledBefore(sr, failOff) {
				res.Truncated = true
				res.TruncatedAt = blockStart
				return res, nil
			}
			return nil, err
		}
		if rng.Length > 0 {
			res.Ranges = append(res.Ranges, rng)
		}
	}
	return res, nil
}

// ReadHeader decodes just the XML header text, without walking the memory
// blocks. Used by the debugging utilities.
func ReadHeader(sr *binary.SafeReader) (string, error) {
	return readHeader(binary.NewReader(sr, 0))
}

// readHeader validates the leading signature and decodes the header text,
// leaving the reader positioned at the first memory block.
func readHeader(r *binary.Reader) (string, error) {
	magic, err := binary.ReadValue[uint32](r, "LIF magic bytes")
	if err != nil || magic != lifMagic {
		return "", &types.FormatError{Path: r.Path(), Offset: 0, Reason: "missing LIF magic bytes"}
	}

	r.Seek(8)
	marker, err := binary.ReadValue[uint8](r, "memory marker")
	if err != nil || marker != memMarker {
		return "", &types.FormatError{Path: r.Path(), Offset: 8, Reason: "missing memory marker byte"}
	}

	return readHeaderText(r)
}

// readHeaderText reads the 4-byte header length (a UTF-16 code-unit count)
// and decodes that many code units as the XML header.
func readHeaderText(r *binary.Reader) (string, error) {
	units, err := binary.ReadValue[uint32](r, "XML header length")
	if err != nil {
		return "", &types.FormatError{Path: r.Path(), Offset: 9, Reason: "unreadable XML header length"}
	}
	textLen := int64(units) * 2
	// The length field is untrusted; bound it before allocating.
	if r.Offset()+textLen > r.Size() {
		return "", &types.FormatError{Path: r.Path(), Offset: 13, Reason: "XML header extends past end of file"}
	}
	raw := make([]byte, textLen)
	if err := r.ReadBytes(raw, "XML header text"); err != nil {
		return "", &types.FormatError{Path: r.Path(), Offset: 13, Reason: "XML header extends past end of file"}
	}
	return decodeUTF16(r.Path(), raw, "XML header")
}

// readBlockHeader parses one block header at the reader's position and
// advances the reader past the block's description text and payload.
//
// On a validation failure it returns the offset just past the failed read
// so the caller can run the truncation probe against the preceding bytes.
func readBlockHeader(r *binary.Reader) (types.ByteRange, int64, error) {
	fail := func(reason string) (types.ByteRange, int64, error) {
		off := r.Offset()
		return types.ByteRange{}, off, &types.FormatError{Path: r.Path(), Offset: off, Reason: reason}
	}

	magic, err := binary.ReadValue[uint32](r, "block magic bytes")
	if err != nil || magic != lifMagic {
		return fail("missing block magic bytes")
	}

	// 4-byte block identifier, unused
	r.Skip(4)

	marker, err := binary.ReadValue[uint8](r, "block memory marker")
	if err != nil || marker != memMarker {
		return fail("missing block memory marker")
	}

	blockLen, err := readBlockLength(r)
	if err != nil {
		return fail("unreadable block length")
	}

	descUnits, err := binary.ReadValue[uint32](r, "description length")
	if err != nil {
		return fail("unreadable description length")
	}
	descLen := int64(descUnits) * 2

	rng := types.ByteRange{Offset: r.Offset() + descLen, Length: blockLen}
	r.Skip(descLen + blockLen)
	return rng, 0, nil
}

// readBlockLength decodes the variable-width block length: try the narrow
// 32-bit form first, and if the byte that should be the next memory marker
// is something else, the field was actually 64 bits wide and is re-read
// at full width. The marker byte is consumed either way.
//
// The wide form has never been observed in a real file; it is kept for
// parity with other LIF readers.
func readBlockLength(r *binary.Reader) (int64, error) {
	fieldStart := r.Offset()
	narrow, err := binary.ReadValue[uint32](r, "block length")
	if err != nil {
		return 0, err
	}
	marker, err := binary.ReadValue[uint8](r, "post-length memory marker")
	if err != nil {
		return 0, err
	}
	if marker == memMarker {
		return int64(narrow), nil
	}

	r.Seek(fieldStart)
	wide, err := binary.ReadValue[uint64](r, "wide block length")
	if err != nil {
		return 0, err
	}
	marker, err = binary.ReadValue[uint8](r, "post-length memory marker")
	if err != nil || marker != memMarker {
		return 0, &types.FormatError{Path: r.Path(), Offset: r.Offset(), Reason: "missing memory marker after wide block length"}
	}
	if wide > math.MaxInt64 {
		// A length in the sign bit would walk the cursor backwards and
		// stall the block loop.
		return 0, &types.FormatError{Path: r.Path(), Offset: fieldStart, Reason: "wide block length out of range"}
	}
	return int64(wide), nil
}

// zeroFilledBefore reports whether the bytes immediately preceding off are
// all zero, the signature of a file that was cut off mid-write and padded.
func zeroFilledBefore(sr *binary.SafeReader, off int64) bool {
	start := off - truncationProbeLen
	if start < 0 {
		start = 0
	}
	if off <= start {
		return false
	}
	buf := make([]byte, off-start)
	if err := sr.ReadAt(buf, start, "truncation probe"); err != nil {
		return false
	}
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// decodeUTF16 converts little-endian UTF-16 bytes (with an optional BOM)
// to a Go string.
func decodeUTF16(path string, raw []byte, what string) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", &types.FormatError{Path: path, Reason: what + " is not valid UTF-16"}
	}
	return string(out), nil
}
