package longarray

import "errors"

// ErrInvalidArgument is the sentinel wrapped by every argument error this
// package returns: out-of-range bit widths, negative sizes, encode
// overflow.
var ErrInvalidArgument = errors.New("longarray: invalid argument")
