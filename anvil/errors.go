package anvil

import "errors"

var (
	// ErrRegionDoesNotExist is returned by operations that read a region
	// whose backing .mca file has never been created.
	ErrRegionDoesNotExist = errors.New("anvil: region file does not exist")

	// ErrChunkDoesNotExist is returned by GetChunk/DeleteChunk when the
	// region's location table has no entry for the requested coordinate.
	ErrChunkDoesNotExist = errors.New("anvil: chunk does not exist in region")

	// ErrCorruptRegionHeader is returned when the location or timestamp
	// table cannot be parsed, or a location entry points outside the file.
	ErrCorruptRegionHeader = errors.New("anvil: corrupt region header")

	// ErrCompression is returned when a chunk's compression tag is unknown
	// or its payload fails to inflate/deflate.
	ErrCompression = errors.New("anvil: compression error")

	// ErrInvalidCoordinate is returned for local coordinates outside 0..31.
	ErrInvalidCoordinate = errors.New("anvil: local chunk coordinate out of range")
)
