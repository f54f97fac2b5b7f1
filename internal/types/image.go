// Package types provides core data structures for LIF container metadata.
//
// This package defines the ImageDescriptor, DimensionSpec, and ByteRange
// types that represent one parsed image inside a Leica Image File, along
// with the error taxonomy shared by the scanner, the metadata walker, and
// the extraction engine.
package types

import "strconv"

// Recognized LIF dimension identifiers. The format addresses up to ten
// axes; 6-8 are reserved and never carry data in files seen in the wild.
const (
	DimX            = 1
	DimY            = 2
	DimZ            = 3
	DimT            = 4
	DimWavelength   = 5 // detection wavelength
	DimIllumination = 9 // illumination wavelength
	DimMosaic       = 10
	MaxDimID        = 10
)

// AxisName returns the conventional short name for a dimension id, used in
// RangeError messages.
func AxisName(dimID int) string {
	switch dimID {
	case DimX:
		return "x"
	case DimY:
		return "y"
	case DimZ:
		return "z"
	case DimT:
		return "t"
	case DimWavelength:
		return "detection wavelength"
	case DimIllumination:
		return "illumination wavelength"
	case DimMosaic:
		return "mosaic"
	default:
		return "dim" + strconv.Itoa(dimID)
	}
}

// ByteRange locates one raw pixel payload inside the container.
//
// Length == 0 is the truncation sentinel: the payload is missing and reads
// against it synthesize zero-filled data of the size implied by the
// descriptor's dimensions.
type ByteRange struct {
	Offset int64
	Length int64
}

// DimensionSpec holds, for each recognized dimension id, the element count
// and the optional physical scale derived from the declared length.
//
// The zero-value policy is centralized here: an axis that never appeared in
// the XML has element count 1 (never 0) and no scale.
type DimensionSpec struct {
	counts  [MaxDimID + 1]int
	scales  [MaxDimID + 1]float64
	scaleOK [MaxDimID + 1]bool
	present [MaxDimID + 1]bool
}

// SetCount records the declared element count for a dimension id. Counts
// below 1 are clamped to 1.
func (d *DimensionSpec) SetCount(dimID, count int) {
	if dimID < 1 || dimID > MaxDimID {
		return
	}
	if count < 1 {
		count = 1
	}
	d.counts[dimID] = count
	d.present[dimID] = true
}

// SetScale records the derived physical scale for a dimension id.
func (d *DimensionSpec) SetScale(dimID int, scale float64) {
	if dimID < 1 || dimID > MaxDimID {
		return
	}
	d.scales[dimID] = scale
	d.scaleOK[dimID] = true
}

// Count returns the element count for a dimension id. Absent axes report 1.
func (d *DimensionSpec) Count(dimID int) int {
	if dimID < 1 || dimID > MaxDimID || d.counts[dimID] == 0 {
		return 1
	}
	return d.counts[dimID]
}

// Scale returns the physical scale for a dimension id (px/µm for spatial
// axes, frames/sec for time). The second result is false when the source
// length metadata was absent or degenerate.
func (d *DimensionSpec) Scale(dimID int) (float64, bool) {
	if dimID < 1 || dimID > MaxDimID {
		return 0, false
	}
	return d.scales[dimID], d.scaleOK[dimID]
}

// Present reports whether the dimension id was declared in the XML.
func (d *DimensionSpec) Present(dimID int) bool {
	if dimID < 1 || dimID > MaxDimID {
		return false
	}
	return d.present[dimID]
}

// MosaicTile is one positioned sub-image of a stitched acquisition.
type MosaicTile struct {
	FieldX int
	FieldY int
	PosX   float64
	PosY   float64
}

// ImageDescriptor is the parsed metadata for one logical image. Descriptors
// are built once during tree walking and are immutable afterward.
type ImageDescriptor struct {
	// Path is the slash-joined chain of ancestor element names with a
	// trailing slash; the image's own name is not part of it.
	Path string

	// Name is the image element's own Name attribute.
	Name string

	// Dims holds per-axis element counts and physical scales.
	Dims DimensionSpec

	// DisplayDims is the pair of dimension ids materialized as a 2-D plane
	// in a single extraction call: the first two DimensionDescription
	// entries in document order, defaulting to (x, y).
	DisplayDims [2]int

	// Channels is the number of ChannelDescription entries.
	Channels int

	// BitDepth is the declared Resolution of each channel, in bits.
	BitDepth []int

	// MosaicTiles is the tile layout when the mosaic axis has more than one
	// element; nil otherwise.
	MosaicTiles []MosaicTile

	// Settings holds the acquisition-settings attributes attached to the
	// image (ATLConfocalSettingDefinition), as raw key/value strings.
	Settings map[string]string
}

// NX returns the x-axis element count.
func (d *ImageDescriptor) NX() int { return d.Dims.Count(DimX) }

// NY returns the y-axis element count.
func (d *ImageDescriptor) NY() int { return d.Dims.Count(DimY) }

// NZ returns the z-axis element count.
func (d *ImageDescriptor) NZ() int { return d.Dims.Count(DimZ) }

// NT returns the time-axis element count.
func (d *ImageDescriptor) NT() int { return d.Dims.Count(DimT) }

// NMosaic returns the mosaic-axis element count.
func (d *ImageDescriptor) NMosaic() int { return d.Dims.Count(DimMosaic) }
