// Package binary provides type-safe binary reading primitives with bounds checking
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SafeReader wraps io.ReaderAt with bounds checking and helpful error messages.
//
// All reads are positioned, so a single SafeReader may be shared by
// concurrent callers without cursor coordination.
type SafeReader struct {
	r    io.ReaderAt
	path string
	size int64
}

// NewSafeReader creates a new SafeReader.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{
		r:    r,
		size: size,
		path: path,
	}
}

// Path returns the file path associated with this reader.
func (sr *SafeReader) Path() string {
	return sr.path
}

// Size returns the total length of the underlying byte source.
func (sr *SafeReader) Size() int64 {
	return sr.size
}

// ReadAt reads bytes at the given offset with context for error messages.
func (sr *SafeReader) ReadAt(b []byte, off int64, what string) error {
	// Check bounds
	if off < 0 || off >= sr.size {
		return fmt.Errorf("%s: offset %d out of bounds (file size: %d) while reading %s",
			sr.path, off, sr.size, what)
	}

	if off+int64(len(b)) > sr.size {
		return fmt.Errorf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
			sr.path, len(b), off, sr.size, what)
	}

	n, err := sr.r.ReadAt(b, off)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%s: failed to read %s at offset %d: %w", sr.path, what, off, err)
	}

	if n < len(b) {
		return fmt.Errorf("%s: short read for %s at offset %d: got %d bytes, expected %d",
			sr.path, what, off, n, len(b))
	}

	return nil
}

// Read reads a value of type T from the given offset.
// T must be uint8, uint16, uint32, or uint64.
func Read[T uint8 | uint16 | uint32 | uint64](sr *SafeReader, off int64, what string) (T, error) {
	var zero T
	var size int

	// Determine size based on type
	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	default:
		return zero, fmt.Errorf("unsupported type for Read")
	}

	buf := make([]byte, size)
	if err := sr.ReadAt(buf, off, what); err != nil {
		return zero, err
	}

	// Convert bytes to value (little-endian, LIF standard)
	var val T
	switch any(zero).(type) {
	case uint8:
		val = T(buf[0])
	case uint16:
		val = T(binary.LittleEndian.Uint16(buf))
	case uint32:
		val = T(binary.LittleEndian.Uint32(buf))
	case uint64:
		val = T(binary.LittleEndian.Uint64(buf))
	}

	return val, nil
}

// Reader provides sequential reading with automatic offset tracking.
type Reader struct {
	*SafeReader
	offset int64
}

// NewReader creates a new Reader starting at the given offset.
func NewReader(sr *SafeReader, offset int64) *Reader {
	return &Reader{
		SafeReader: sr,
		offset:     offset,
	}
}

// ReadValue reads a numeric value and advances the offset.
func ReadValue[T uint8 | uint16 | uint32 | uint64](r *Reader, what string) (T, error) {
	val, err := Read[T](r.SafeReader, r.offset, what)
	if err != nil {
		var zero T
		return zero, err
	}

	// Advance offset based on type size
	var size int64
	var zero T
	switch any(zero).(type) {
	case uint8:
		size = 1
	case uint16:
		size = 2
	case uint32:
		size = 4
	case uint64:
		size = 8
	}

	r.offset += size
	return val, nil
}

// ReadBytes reads exactly len(b) bytes and advances the offset.
func (r *Reader) ReadBytes(b []byte, what string) error {
	if err := r.SafeReader.ReadAt(b, r.offset, what); err != nil {
		return err
	}
	r.offset += int64(len(b))
	return nil
}

// Skip advances the offset by n bytes.
func (r *Reader) Skip(n int64) {
	r.offset += n
}

// Seek moves the offset to an absolute position.
func (r *Reader) Seek(off int64) {
	r.offset = off
}

// Offset returns the current offset.
func (r *Reader) Offset() int64 {
	return r.offset
}
