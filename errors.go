package readlif

import (
	"github.com/Arcadia-Science/readlif/internal/types"
)

// FormatError is an alias to types.FormatError.
// Re-exporting from internal/types so every layer shares one taxonomy.
type FormatError = types.FormatError

// RangeError is an alias to types.RangeError.
// Re-exporting from internal/types so every layer shares one taxonomy.
type RangeError = types.RangeError

// UnsupportedLayoutError is an alias to types.UnsupportedLayoutError.
// Re-exporting from internal/types so every layer shares one taxonomy.
type UnsupportedLayoutError = types.UnsupportedLayoutError

// NotImplementedError is an alias to types.NotImplementedError.
// Re-exporting from internal/types so every layer shares one taxonomy.
type NotImplementedError = types.NotImplementedError

// Warning is an alias to types.Warning.
// Re-exporting from internal/types so every layer shares one taxonomy.
type Warning = types.Warning

// ByteRange is an alias to types.ByteRange, the location of one memory
// block's pixel payload.
type ByteRange = types.ByteRange

// MosaicTile is an alias to types.MosaicTile, one positioned sub-image of
// a stitched acquisition.
type MosaicTile = types.MosaicTile
