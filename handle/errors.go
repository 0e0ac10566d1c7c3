package handle

import "errors"

var (
	// ErrLockTimeout is returned by Lock/Edit when the context is cancelled
	// or its deadline expires before the handle's exclusive lock is free.
	ErrLockTimeout = errors.New("handle: lock acquisition cancelled")

	// ErrNotLocked is returned by SetChunk when called without the caller
	// holding the handle's lock, mirroring the reference implementation's
	// "you must acquire the chunk lock before setting" contract.
	ErrNotLocked = errors.New("handle: chunk lock not held")
)
