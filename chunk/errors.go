package chunk

import "errors"

var (
	// ErrInvalidArgument covers data-version/variant mismatches and other
	// malformed constructor arguments.
	ErrInvalidArgument = errors.New("chunk: invalid argument")

	// ErrComponentNotLoaded is returned by component accessors on a chunk
	// produced by a null constructor before Populate has been called.
	ErrComponentNotLoaded = errors.New("chunk: component not loaded")

	// ErrUnknownChunkID is returned when a chunk_id has no registered
	// variant.
	ErrUnknownChunkID = errors.New("chunk: unknown chunk_id")
)
