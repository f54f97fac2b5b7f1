package readlif

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Arcadia-Science/readlif/internal/binary"
	"github.com/Arcadia-Science/readlif/internal/meta"
	"github.com/Arcadia-Science/readlif/internal/scan"
	"github.com/Arcadia-Science/readlif/internal/types"
)

// LifFile represents an opened LIF container with its parsed metadata and
// memory-block offset table.
//
// Opening a container reads only the XML header and the block framing; no
// pixel data is touched until a frame or plane is requested from one of
// the container's images.
//
// Always call Close() when done to release file resources:
//
//	file, err := readlif.Open("experiment.lif")
//	if err != nil {
//		return err
//	}
//	defer file.Close()
type LifFile struct {
	// Path to the container file (or the name given to OpenReader).
	Path string

	// File size in bytes.
	Size int64

	// XMLHeader is the raw metadata document text.
	XMLHeader string

	// Truncated is set when the container ends in a zero-filled region
	// instead of its declared blocks. Frames addressed at or past the
	// truncation point read as zero-filled data.
	Truncated bool

	// Warnings encountered while opening (non-fatal issues).
	Warnings []Warning

	// Internal state (unexported)
	descriptors []types.ImageDescriptor
	ranges      []types.ByteRange
	reader      *binary.SafeReader
	source      io.ReaderAt // closed by Close when Open owns the handle
}

// Open opens a LIF container and reads its metadata.
//
// Open performs lazy loading - pixel payloads are not read into memory,
// only the XML header and the block offset table are parsed. Use
// GetImage() and then GetFrame()/GetPlane() to retrieve pixel data.
//
// A truncated container opens successfully with LifFile.Truncated set and
// a warning recorded; frames past the truncation point decode as zeros.
//
// Options can be provided to customize behavior:
//
//	file, err := readlif.Open("experiment.lif",
//	    readlif.WithStrictTruncation(),
//	)
func Open(path string, opts ...Option) (*LifFile, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}

	file, err := openReader(f, stat.Size(), path, options)
	if err != nil {
		f.Close()
		return nil, err
	}

	// Keep the file handle; positioned reads service all later frame
	// extraction, including concurrent callers.
	file.source = f

	return file, nil
}

// OpenReader opens a LIF container from an already-open byte source, such
// as an *os.File, *bytes.Reader, or *io.SectionReader. The name is used
// only in error messages. The caller retains ownership of r; Close() on
// the returned LifFile will not close it.
func OpenReader(r io.ReaderAt, size int64, name string, opts ...Option) (*LifFile, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return openReader(r, size, name, options)
}

// openReader runs the scanner and the metadata walker, then reconciles
// their outputs into a usable handle.
func openReader(r io.ReaderAt, size int64, path string, options *openOptions) (*LifFile, error) {
	sr := binary.NewSafeReader(r, size, path)

	res, err := scan.Scan(sr)
	if err != nil {
		return nil, err
	}

	root, err := meta.ParseHeader(res.XMLHeader)
	if err != nil {
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}

	file := &LifFile{
		Path:        path,
		Size:        size,
		XMLHeader:   res.XMLHeader,
		Truncated:   res.Truncated,
		descriptors: meta.Walk(root),
		ranges:      res.Ranges,
		reader:      sr,
	}

	if res.Truncated {
		if options.strictTruncation {
			return nil, &FormatError{
				Path:   path,
				Offset: res.TruncatedAt,
				Reason: "container is truncated",
			}
		}
		file.Warnings = append(file.Warnings, Warning{
			Stage:   "scan",
			Offset:  res.TruncatedAt,
			Message: "container is truncated; missing frames decode as zero-filled data",
		})
	}

	if err := file.reconcile(res); err != nil {
		return nil, err
	}

	if options.ignoreWarnings {
		file.Warnings = nil
	}

	return file, nil
}

// reconcile asserts the one-range-per-descriptor invariant. In the
// truncated case, the deficit of trailing ranges is backfilled with
// zero-length sentinels anchored at the truncation offset.
func (f *LifFile) reconcile(res *scan.Result) error {
	if len(f.descriptors) == len(f.ranges) {
		return nil
	}

	if !res.Truncated || len(f.ranges) > len(f.descriptors) {
		return &FormatError{
			Path: f.Path,
			Reason: fmt.Sprintf("offset/descriptor count mismatch: %d memory blocks, %d images",
				len(f.ranges), len(f.descriptors)),
		}
	}

	missing := len(f.descriptors) - len(f.ranges)
	for i := 0; i < missing; i++ {
		f.ranges = append(f.ranges, types.ByteRange{Offset: res.TruncatedAt, Length: 0})
	}
	f.Warnings = append(f.Warnings, Warning{
		Stage:   "reconcile",
		Offset:  res.TruncatedAt,
		Message: fmt.Sprintf("%d image payload(s) missing past the truncation point", missing),
	})
	return nil
}

// Close releases resources held by the file.
//
// Only a handle opened with Open() owns its byte source; for OpenReader()
// this is a no-op. After Close is called, the LifFile should not be used.
func (f *LifFile) Close() error {
	if closer, ok := f.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ImageCount returns the number of images in the container.
func (f *LifFile) ImageCount() int {
	return len(f.descriptors)
}

// GetImage returns a view of the n-th image for metadata access and frame
// extraction. Views are cheap and independent; multiple views may extract
// frames concurrently.
func (f *LifFile) GetImage(n int) (*LifImage, error) {
	if n < 0 || n >= len(f.descriptors) {
		return nil, &RangeError{Axis: "image", Index: n, Count: len(f.descriptors)}
	}
	return &LifImage{
		desc:   f.descriptors[n],
		rng:    f.ranges[n],
		reader: f.reader,
	}, nil
}

// Images returns a restartable sequence over the container's images,
// starting at the given index.
//
//	for img := range file.Images(0) {
//		fmt.Println(img.Name(), img.Dims())
//	}
func (f *LifFile) Images(start int) iter.Seq[*LifImage] {
	return func(yield func(*LifImage) bool) {
		for n := start; n < len(f.descriptors); n++ {
			img, err := f.GetImage(n)
			if err != nil {
				return
			}
			if !yield(img) {
				return
			}
		}
	}
}

// Offsets returns a copy of the memory-block offset table, one entry per
// image in order. A zero Length marks a payload lost to truncation.
func (f *LifFile) Offsets() []ByteRange {
	out := make([]ByteRange, len(f.ranges))
	copy(out, f.ranges)
	return out
}

// String returns a human-readable summary of the container.
func (f *LifFile) String() string {
	if len(f.descriptors) == 1 {
		return "LifFile object with 1 image"
	}
	return fmt.Sprintf("LifFile object with %d images", len(f.descriptors))
}

// OpenContext opens a container with context support for cancellation.
//
// This is a thin wrapper around Open() that checks context before
// starting; opening a container is bounded and cheap relative to typical
// image sizes, so no cancellation points exist inside the scan itself.
func OpenContext(ctx context.Context, path string, opts ...Option) (*LifFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// OpenMany opens multiple LIF containers concurrently.
//
// Containers are opened in parallel using up to runtime.NumCPU()
// goroutines. Results are returned in the same order as the input paths.
//
// If any container fails to open, all successfully opened containers are
// closed and an error is returned.
func OpenMany(ctx context.Context, paths ...string) ([]*LifFile, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*LifFile, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			file, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = file
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, file := range results {
			if file != nil {
				file.Close()
			}
		}
		return nil, err
	}

	return results, nil
}
