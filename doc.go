// Package readlif reads Leica Image File (LIF) microscope containers.
//
// A LIF file interleaves one XML metadata document with a sequence of
// raw, uncompressed pixel payloads. readlif locates every embedded
// image's byte range without copying bulk pixel data, parses the XML into
// structured per-image descriptors, and provides random-access extraction
// of 2-D planes and arbitrary N-dimensional samples.
//
// # Quick Start
//
// Reading frames from a container:
//
//	file, err := readlif.Open("experiment.lif")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer file.Close()
//
//	img, err := file.GetImage(0)
//	if err != nil {
//		log.Fatal(err)
//	}
//	frame, err := img.GetFrame(0, 0, 0, 0) // z, t, channel, mosaic tile
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%dx%d, %d-bit\n", frame.Width, frame.Height, frame.BitsPerSample)
//
// # Architecture
//
// The library uses a layered architecture:
//
//	[LifFile]        - Entry point with Open()
//	  ├─ [LifImage]  - Per-image descriptor view + frame extraction
//	  ├─ [Frame]     - One decoded 2-D plane
//	  └─ [Warnings]  - Non-fatal issues found while opening
//
// Opening a container runs two passes that must agree: a block scanner
// walks the binary framing and records one byte range per pixel payload,
// and a metadata walker discovers one descriptor per image in the XML
// tree. The two lists pair 1:1, in order.
//
// # Dimensions
//
// LIF addresses up to ten axes by numeric id: x(1), y(2), z(3), time(4),
// detection wavelength(5), illumination wavelength(9), and mosaic
// tile(10); ids 6-8 are reserved. An axis the file never declares has
// element count 1. Most images display over (x, y) and are served by
// GetFrame; images acquired over another pair (XZ scans, wavelength
// sweeps) are served by GetPlane using their native display axes.
//
// # Truncated Containers
//
// Acquisition software sometimes leaves a container cut off mid-write,
// with the remainder zero-filled. readlif treats this as a recognized
// condition, not an error: Open succeeds, LifFile.Truncated is set, a
// warning is recorded, and frames addressed at or past the truncation
// point decode as zero-filled buffers of the declared dimensions. Use
// WithStrictTruncation to fail instead.
//
// # Error Handling
//
// Fallible operations return one of a small taxonomy:
//
//   - FormatError: the container is not a LIF file or its framing or
//     metadata are inconsistent; fatal, retrying cannot help.
//   - RangeError: a requested index is outside a named axis's span; the
//     caller can retry with a valid index.
//   - UnsupportedLayoutError: the operation does not apply to this
//     image's layout (use the other extraction call).
//   - NotImplementedError: the format could express the request but this
//     reader does not support it (arbitrary display-plane reslicing).
//
// # Concurrency
//
// All reads are positioned (io.ReaderAt); nothing shares a cursor. An
// open container's descriptor and offset tables are write-once at open
// time, so any number of goroutines may extract frames from the same
// LifFile concurrently. OpenMany opens whole containers in parallel.
//
// # Non-Goals
//
// readlif does not write or encode containers, does not decompress (LIF
// pixel data is always raw), and does not rasterize frames into encoded
// images - Frame hands you the decoded samples and stays out of the way.
package readlif
