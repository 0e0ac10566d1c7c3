package history

import "github.com/google/go-cmp/cmp"

// DeepEqual is the default Layer value-equality function for value types
// that have no cheaper notion of equality of their own — notably
// chunk.RawChunk (map[string]any), which is not comparable with ==. It is
// the same google/go-cmp dependency this module already uses for test
// assertions, reused here to drive HasChanged instead of a hand-rolled
// deep-equal walk.
func DeepEqual[V any](a, b V) bool {
	return cmp.Equal(a, b)
}
