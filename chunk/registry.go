package chunk

import "fmt"

// bands orders the Java data-version dispatch table; VariantNA is handled
// separately since it is selected by an exact match on -1, not a band.
var bands = []struct {
	variant  Variant
	min, max int64
}{
	{Variant0, 0, 1443},
	{Variant1444, 1444, 1465},
	{Variant1466, 1466, 2202},
	{Variant2203, 2203, int64(1)<<62 - 1},
}

// VariantForDataVersion maps a Java data_version to its chunk variant,
// per the registry's dispatch table.
func VariantForDataVersion(dataVersion int64) (Variant, error) {
	if dataVersion == -1 {
		return VariantNA, nil
	}
	for _, b := range bands {
		if dataVersion >= b.min && dataVersion <= b.max {
			return b.variant, nil
		}
	}
	return "", fmt.Errorf("%w: no registered variant for data_version %d", ErrInvalidArgument, dataVersion)
}

// New constructs the appropriate, fully-populated chunk variant for the
// given data_version, validating it against the variant's band.
func New(dataVersion int64, defaultBlock Block, defaultBiome Biome) (*Chunk, error) {
	v, err := VariantForDataVersion(dataVersion)
	if err != nil {
		return nil, err
	}
	return newVariant(v, dataVersion, defaultBlock, defaultBiome)
}

// nullConstructors backs the registry's chunk_id -> null-constructor map
// (java_chunk_constructors in the reference implementation).
var nullConstructors = map[Variant]func() *Chunk{
	VariantNA:   func() *Chunk { return &Chunk{ID: VariantNA} },
	Variant0:    func() *Chunk { return &Chunk{ID: Variant0} },
	Variant1444: func() *Chunk { return &Chunk{ID: Variant1444} },
	Variant1466: func() *Chunk { return &Chunk{ID: Variant1466} },
	Variant2203: func() *Chunk { return &Chunk{ID: Variant2203} },
}

// NewNull returns an unpopulated shell for the given chunk_id, used during
// lazy deserialization. Every component accessor on the result fails with
// ErrComponentNotLoaded until Populate is called.
func NewNull(chunkID string) (*Chunk, error) {
	ctor, ok := nullConstructors[Variant(chunkID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChunkID, chunkID)
	}
	return ctor(), nil
}

// KnownChunkIDs returns every registered chunk_id, for diagnostics.
func KnownChunkIDs() []string {
	ids := make([]string, 0, len(nullConstructors))
	for v := range nullConstructors {
		ids = append(ids, string(v))
	}
	return ids
}
