package readlif

// Option configures behavior when opening LIF containers.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	file, err := readlif.Open("experiment.lif",
//	    readlif.WithStrictTruncation(),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening containers.
type openOptions struct {
	strictTruncation bool // Fail on truncated containers
	ignoreWarnings   bool // Suppress all warnings
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		strictTruncation: false,
		ignoreWarnings:   false,
	}
}

// WithStrictTruncation treats a truncated container as a fatal error.
//
// By default, a container that ends in a zero-filled region opens
// successfully: the truncation is recorded as a warning and frames past
// the truncation point decode as zero-filled data.
//
// With strict truncation enabled, Open fails with a FormatError instead.
func WithStrictTruncation() Option {
	return func(o *openOptions) {
		o.strictTruncation = true
	}
}

// WithIgnoreWarnings suppresses the warning list on the opened container.
//
// The container still opens with the same degraded-data behavior; only
// the reporting is dropped.
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}
