package history

import "errors"

var (
	// ErrKeyAlreadyKnown is returned by SetInitialValue when the key
	// already has a baseline.
	ErrKeyAlreadyKnown = errors.New("history: key already has an initial value")

	// ErrUnknownKey is returned by GetValue/GetResource for a key that has
	// never been given an initial value, and by SetValue/SetValues under
	// the Default/Error initialisation modes when the key is missing.
	ErrUnknownKey = errors.New("history: unknown key")

	// ErrNothingToUndo is returned by Undo when the cursor is already
	// before the first bin.
	ErrNothingToUndo = errors.New("history: nothing to undo")

	// ErrNothingToRedo is returned by Redo when there is no bin after the
	// cursor.
	ErrNothingToRedo = errors.New("history: nothing to redo")
)
