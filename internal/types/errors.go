package types

import "fmt"

// FormatError is returned when the container structure is invalid: a
// magic/marker mismatch, a header that cannot be decoded, an
// offset/descriptor count mismatch, or an unsupported bit depth.
//
// FormatError is always fatal to the operation that produced it; retrying
// with the same bytes cannot succeed.
type FormatError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *FormatError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s: invalid LIF container at offset %d: %s", e.Path, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s: invalid LIF container: %s", e.Path, e.Reason)
}

// RangeError is returned when a requested index falls outside the valid
// span of a named axis. It is a caller error: supplying a valid index
// always succeeds.
type RangeError struct {
	Axis  string // "x", "y", "z", "t", "channel", "mosaic", "image", "item", ...
	Index int
	Count int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("requested %s index %d out of range [0, %d)", e.Axis, e.Index, e.Count)
}

// UnsupportedLayoutError is returned when an operation is not valid for the
// image's dimension layout, e.g. GetFrame on an image whose display axes
// are not (x, y). The caller should use GetPlane instead.
type UnsupportedLayoutError struct {
	DisplayDims [2]int
	Reason      string
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("unsupported layout with display dimensions (%d, %d): %s",
		e.DisplayDims[0], e.DisplayDims[1], e.Reason)
}

// NotImplementedError is returned for operations the format could express
// but this reader does not support, e.g. materializing a 2-D plane over a
// display-axis pair other than the image's native one.
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s", e.Feature)
}

// Warning represents a non-fatal issue encountered while opening a
// container. The canonical example is truncation: the file ends early, the
// open still succeeds, and frames past the truncation point read as zeros.
//
// Warnings are collected in LifFile.Warnings.
type Warning struct {
	// Stage where the warning occurred
	Stage string // "scan", "metadata", "reconcile"

	// Warning message
	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
