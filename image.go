package readlif

import (
	"encoding/binary"
	"fmt"
	"iter"

	bin "github.com/Arcadia-Science/readlif/internal/binary"
	"github.com/Arcadia-Science/readlif/internal/types"
)

// Dimension ids used by the LIF format. Axes 6-8 are reserved.
const (
	DimX            = types.DimX
	DimY            = types.DimY
	DimZ            = types.DimZ
	DimT            = types.DimT
	DimWavelength   = types.DimWavelength
	DimIllumination = types.DimIllumination
	DimMosaic       = types.DimMosaic
)

// Dims holds the element counts of the five commonly used axes.
type Dims struct {
	X int
	Y int
	Z int
	T int
	M int
}

// String renders the counts in the conventional order.
func (d Dims) String() string {
	return fmt.Sprintf("Dims(x=%d, y=%d, z=%d, t=%d, m=%d)", d.X, d.Y, d.Z, d.T, d.M)
}

// Frame is one decoded 2-D plane of pixel data.
//
// Pix holds the samples row-major in the image's display-axis order, one
// byte per sample for 8-bit data and two little-endian bytes per sample
// otherwise. Declared depths below 16 bits (for example 12-bit detectors)
// still occupy two bytes per sample; the values simply fit within the
// 16-bit container.
type Frame struct {
	Width          int
	Height         int
	BitsPerSample  int
	BytesPerSample int
	Pix            []byte
}

// At returns the sample value at (x, y). Out-of-range coordinates or
// coordinates past the end of a short buffer return 0.
func (f *Frame) At(x, y int) uint16 {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	i := (y*f.Width + x) * f.BytesPerSample
	if i+f.BytesPerSample > len(f.Pix) {
		return 0
	}
	if f.BytesPerSample == 1 {
		return uint16(f.Pix[i])
	}
	return binary.LittleEndian.Uint16(f.Pix[i:])
}

// LifImage is a lightweight view of one image in an open container: its
// descriptor, its payload byte range, and the shared byte source.
//
// Views read with positioned I/O and keep no cursor, so any number of
// views (including copies of the same image) may extract frames
// concurrently.
type LifImage struct {
	desc   types.ImageDescriptor
	rng    types.ByteRange
	reader *bin.SafeReader
}

// PlaneRequest selects a 2-D plane for GetPlane.
//
// The zero value requests channel 0 of the image's native display axes
// with every other axis at index 0.
type PlaneRequest struct {
	// Channel to extract.
	Channel int

	// DisplayDims overrides the pair of axes materialized as the plane.
	// Leave zero to use the image's native pair. Only the native pair is
	// currently supported; any other pair returns NotImplementedError.
	DisplayDims [2]int

	// DimIndex fixes the position along each non-display axis, keyed by
	// dimension id. Absent axes default to index 0.
	DimIndex map[int]int
}

// Name returns the image element's name.
func (img *LifImage) Name() string { return img.desc.Name }

// ImagePath returns the slash-joined ancestor path of the image within the
// container's element tree (with a trailing slash).
func (img *LifImage) ImagePath() string { return img.desc.Path }

// Dims returns the element counts of the x, y, z, t, and mosaic axes.
func (img *LifImage) Dims() Dims {
	return Dims{
		X: img.desc.NX(),
		Y: img.desc.NY(),
		Z: img.desc.NZ(),
		T: img.desc.NT(),
		M: img.desc.NMosaic(),
	}
}

// DimCount returns the element count of an arbitrary dimension id. Absent
// axes report 1, never 0.
func (img *LifImage) DimCount(dimID int) int { return img.desc.Dims.Count(dimID) }

// Scale returns the physical scale of an axis: px/µm for spatial axes,
// frames/sec for time. The second result is false when the container did
// not declare a usable physical length for the axis.
func (img *LifImage) Scale(dimID int) (float64, bool) { return img.desc.Dims.Scale(dimID) }

// Channels returns the declared channel count.
func (img *LifImage) Channels() int { return img.desc.Channels }

// BitDepth returns the declared per-channel bit depths.
func (img *LifImage) BitDepth() []int {
	out := make([]int, len(img.desc.BitDepth))
	copy(out, img.desc.BitDepth)
	return out
}

// DisplayDims returns the pair of dimension ids materialized as a 2-D
// plane in a single extraction call.
func (img *LifImage) DisplayDims() [2]int { return img.desc.DisplayDims }

// MosaicTiles returns the tile layout of a stitched acquisition, or nil
// for single-tile images. The returned slice should not be modified.
func (img *LifImage) MosaicTiles() []MosaicTile { return img.desc.MosaicTiles }

// Settings returns the acquisition-settings attributes attached to the
// image, as raw key/value strings. The returned map should not be
// modified.
func (img *LifImage) Settings() map[string]string { return img.desc.Settings }

// String returns a human-readable summary of the image.
func (img *LifImage) String() string {
	return "LifImage object with dimensions: " + img.Dims().String()
}

// channelCount is the channel count used for addressing. Containers
// without ChannelDescription entries behave as single-channel.
func (img *LifImage) channelCount() int {
	if img.desc.Channels > 0 {
		return img.desc.Channels
	}
	return 1
}

// bytesPerSample maps the first channel's declared bit depth onto the two
// supported sample encodings.
func (img *LifImage) bytesPerSample() (int, error) {
	depth := 8
	if len(img.desc.BitDepth) > 0 {
		depth = img.desc.BitDepth[0]
	}
	switch {
	case depth == 8:
		return 1, nil
	case depth > 1 && depth <= 16:
		return 2, nil
	default:
		return 0, &FormatError{
			Path:   img.reader.Path(),
			Reason: fmt.Sprintf("unsupported bit depth %d", depth),
		}
	}
}

// bitDepth returns the first channel's declared depth, defaulting to 8.
func (img *LifImage) bitDepth() int {
	if len(img.desc.BitDepth) > 0 {
		return img.desc.BitDepth[0]
	}
	return 8
}

// GetFrame extracts the XY plane at the given z, t, channel, and mosaic
// tile coordinates.
//
// GetFrame is valid only for images whose display axes are (x, y) - the
// common case. Images acquired over other axis pairs (for example XZ
// scans) return UnsupportedLayoutError; use GetPlane for those.
//
// Each coordinate is validated against its axis; a violation returns
// RangeError naming the axis.
func (img *LifImage) GetFrame(z, t, c, m int) (*Frame, error) {
	if img.desc.DisplayDims != [2]int{DimX, DimY} {
		return nil, &UnsupportedLayoutError{
			DisplayDims: img.desc.DisplayDims,
			Reason:      "GetFrame requires x/y display axes; use GetPlane",
		}
	}

	channels := img.channelCount()
	nz := img.desc.NZ()
	nt := img.desc.NT()
	nm := img.desc.NMosaic()

	if z < 0 || z >= nz {
		return nil, &RangeError{Axis: "z", Index: z, Count: nz}
	}
	if t < 0 || t >= nt {
		return nil, &RangeError{Axis: "t", Index: t, Count: nt}
	}
	if c < 0 || c >= channels {
		return nil, &RangeError{Axis: "channel", Index: c, Count: channels}
	}
	if m < 0 || m >= nm {
		return nil, &RangeError{Axis: "mosaic", Index: m, Count: nm}
	}

	// Channel varies fastest, then z, then t, then mosaic tile.
	n := c + channels*z + channels*nz*t + channels*nz*nt*m
	return img.getItem(n)
}

// getItem reads the n-th 2-D item of the payload, where items are laid
// out channel-fastest as computed by GetFrame.
func (img *LifImage) getItem(n int) (*Frame, error) {
	channels := img.channelCount()
	itemCount := channels * img.desc.NZ() * img.desc.NT() * img.desc.NMosaic()
	if n < 0 || n >= itemCount {
		return nil, &RangeError{Axis: "item", Index: n, Count: itemCount}
	}

	bps, err := img.bytesPerSample()
	if err != nil {
		return nil, err
	}

	width := img.desc.NX()
	height := img.desc.NY()

	if img.rng.Length == 0 {
		// Truncation sentinel: the payload is missing. Materialize only
		// this item's worth of zeros, never the whole region.
		return img.newFrame(width, height, bps, make([]byte, width*height*bps)), nil
	}

	itemLen := img.rng.Length / int64(itemCount)
	buf := make([]byte, itemLen)
	if err := img.reader.ReadAt(buf, img.rng.Offset+int64(n)*itemLen, "pixel data"); err != nil {
		return nil, fmt.Errorf("read frame %d: %w", n, err)
	}
	return img.newFrame(width, height, bps, buf), nil
}

// GetPlane extracts a 2-D plane over the image's display axes, with every
// other axis fixed at the requested index (default 0).
//
// GetPlane generalizes GetFrame: for an image with native (x, y) display
// axes the two return byte-identical planes, and GetPlane additionally
// serves images acquired over other axis pairs (XZ scans, wavelength
// sweeps). Requesting a display pair different from the image's native
// pair returns NotImplementedError.
func (img *LifImage) GetPlane(req PlaneRequest) (*Frame, error) {
	display := req.DisplayDims
	if display == [2]int{} {
		display = img.desc.DisplayDims
	}

	channels := img.channelCount()
	if req.Channel < 0 || req.Channel >= channels {
		return nil, &RangeError{Axis: "channel", Index: req.Channel, Count: channels}
	}

	for d, idx := range req.DimIndex {
		count := 1
		if d >= 1 && d <= types.MaxDimID {
			count = img.desc.Dims.Count(d)
		}
		if idx < 0 || idx+1 > count {
			return nil, &RangeError{Axis: types.AxisName(d), Index: idx, Count: count}
		}
	}

	if display != img.desc.DisplayDims {
		return nil, &NotImplementedError{Feature: "arbitrary display-plane reslicing"}
	}

	bps, err := img.bytesPerSample()
	if err != nil {
		return nil, err
	}

	width := img.desc.Dims.Count(display[0])
	height := img.desc.Dims.Count(display[1])

	if img.rng.Length == 0 {
		return img.newFrame(width, height, bps, make([]byte, width*height*bps)), nil
	}

	base := img.planeSampleOffset(req.Channel, display, req.DimIndex)
	buf := make([]byte, width*height*bps)
	if err := img.reader.ReadAt(buf, img.rng.Offset+int64(base)*int64(bps), "pixel data"); err != nil {
		return nil, fmt.Errorf("read plane: %w", err)
	}
	return img.newFrame(width, height, bps, buf), nil
}

// planeSampleOffset computes the linear sample index of the first sample
// of the requested plane. Layout is row-major over the display axes, with
// the channel next and the remaining axes following in ascending
// dimension-id order.
func (img *LifImage) planeSampleOffset(channel int, display [2]int, dimIndex map[int]int) int {
	channels := img.channelCount()
	planeSize := img.desc.Dims.Count(display[0]) * img.desc.Dims.Count(display[1])

	offset := channel * planeSize
	prod := planeSize
	for d := 1; d <= types.MaxDimID; d++ {
		if d == display[0] || d == display[1] {
			continue
		}
		offset += dimIndex[d] * channels * prod
		prod *= img.desc.Dims.Count(d)
	}
	return offset
}

// readPlaneSamplewise produces the same plane as the GetPlane fast path
// by issuing one read per sample. The selected display axes are
// contiguous in the native layout, so this is never needed in practice;
// it exists as the general form of the addressing and must stay
// byte-identical to the bulk read wherever both apply.
func (img *LifImage) readPlaneSamplewise(req PlaneRequest) (*Frame, error) {
	display := req.DisplayDims
	if display == [2]int{} {
		display = img.desc.DisplayDims
	}
	if display != img.desc.DisplayDims {
		return nil, &NotImplementedError{Feature: "arbitrary display-plane reslicing"}
	}

	bps, err := img.bytesPerSample()
	if err != nil {
		return nil, err
	}

	width := img.desc.Dims.Count(display[0])
	height := img.desc.Dims.Count(display[1])
	buf := make([]byte, width*height*bps)

	if img.rng.Length == 0 {
		return img.newFrame(width, height, bps, buf), nil
	}

	base := img.planeSampleOffset(req.Channel, display, req.DimIndex)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			off := img.rng.Offset + int64(base+i)*int64(bps)
			if err := img.reader.ReadAt(buf[i*bps:(i+1)*bps], off, "pixel sample"); err != nil {
				return nil, fmt.Errorf("read sample (%d, %d): %w", x, y, err)
			}
		}
	}
	return img.newFrame(width, height, bps, buf), nil
}

func (img *LifImage) newFrame(width, height, bps int, pix []byte) *Frame {
	return &Frame{
		Width:          width,
		Height:         height,
		BitsPerSample:  img.bitDepth(),
		BytesPerSample: bps,
		Pix:            pix,
	}
}

// FramesT returns a sequence over the time series at fixed z, channel,
// and mosaic tile. Iteration stops at the first error, which is yielded
// with a nil frame.
func (img *LifImage) FramesT(z, c, m int) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for t := 0; t < img.desc.NT(); t++ {
			frame, err := img.GetFrame(z, t, c, m)
			if !yieldFrame(yield, frame, err) {
				return
			}
		}
	}
}

// FramesZ returns a sequence over the z series at fixed t, channel, and
// mosaic tile.
func (img *LifImage) FramesZ(t, c, m int) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for z := 0; z < img.desc.NZ(); z++ {
			frame, err := img.GetFrame(z, t, c, m)
			if !yieldFrame(yield, frame, err) {
				return
			}
		}
	}
}

// FramesC returns a sequence over the channels at fixed z, t, and mosaic
// tile.
func (img *LifImage) FramesC(z, t, m int) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for c := 0; c < img.channelCount(); c++ {
			frame, err := img.GetFrame(z, t, c, m)
			if !yieldFrame(yield, frame, err) {
				return
			}
		}
	}
}

// FramesM returns a sequence over the mosaic tiles at fixed z, t, and
// channel.
func (img *LifImage) FramesM(z, t, c int) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for m := 0; m < img.desc.NMosaic(); m++ {
			frame, err := img.GetFrame(z, t, c, m)
			if !yieldFrame(yield, frame, err) {
				return
			}
		}
	}
}

func yieldFrame(yield func(*Frame, error) bool, frame *Frame, err error) bool {
	if err != nil {
		yield(nil, err)
		return false
	}
	return yield(frame, nil)
}
