package chunk

import "maps"

// RawChunk is the untyped NBT-tag mapping form of a chunk as stored on
// disk, keyed by the same field names gophertunnel's nbt package produces
// when decoding a compound tag into a map[string]any.
type RawChunk map[string]any

// Clone performs a shallow clone of the top-level mapping. Leaf values that
// are themselves mutable (nested maps, slices) are not deep-copied here;
// callers that hand out a RawChunk across a history revision boundary must
// clone-on-write the specific leaf they are about to mutate, per the
// shared-mutable-NBT policy for this component.
func (r RawChunk) Clone() RawChunk {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}
