// Package chunk implements the chunk variant model (C3) described by the
// Java data-version dispatch table: a tagged-union style Chunk value whose
// component set is fixed by which variant band its data version falls in.
package chunk

import (
	"fmt"

	"github.com/Amulet-Team/Amulet-Level/version"
)

// Block and Biome are opaque, externally-supplied value types. This
// package only requires they can be stored and copied by value; the real
// content semantics live outside this module's scope.
type Block any
type Biome any

// Variant identifies one of the five Java chunk variants by its chunk_id.
type Variant string

const (
	VariantNA    Variant = "Amulet::JavaChunkNA"
	Variant0     Variant = "Amulet::JavaChunk0"
	Variant1444  Variant = "Amulet::JavaChunk1444"
	Variant1466  Variant = "Amulet::JavaChunk1466"
	Variant2203  Variant = "Amulet::JavaChunk2203"
)

const sectionEdge = 16

// BlockSection is one 16x16x16 paletted block volume.
type BlockSection struct {
	Palette []Block
	// Indices is len(sectionEdge^3); each entry indexes into Palette.
	Indices []uint32
}

func newBlockSection(defaultBlock Block) *BlockSection {
	n := sectionEdge * sectionEdge * sectionEdge
	return &BlockSection{
		Palette: []Block{defaultBlock},
		Indices: make([]uint32, n),
	}
}

// BlockComponent holds the per-section block palettes, keyed by section Y
// index (can be negative).
type BlockComponent struct {
	Range    version.Range
	Sections map[int32]*BlockSection
}

// BiomeComponent holds biome data either per-column (2D, variants up to
// 2202) or per 4x4x4 cell per section (3D, variants from 2203).
type BiomeComponent struct {
	Is3D bool
	// Columns2D has 16*16 entries when Is3D is false.
	Columns2D []Biome
	// Sections3D maps section Y to a 4*4*4-entry biome grid when Is3D.
	Sections3D map[int32][]Biome
}

// HeightmapComponent holds the named heightmaps present from variant 1466
// onward (e.g. "WORLD_SURFACE", "MOTION_BLOCKING").
type HeightmapComponent struct {
	Maps map[string][]int32
}

// Chunk is a value-typed aggregate identified by a stable chunk_id,
// carrying the component set defined by its Variant.
type Chunk struct {
	ID          Variant
	DataVersion int64
	Range       version.Range

	Raw        RawChunk
	Blocks     *BlockComponent
	Biomes     *BiomeComponent
	Heightmaps *HeightmapComponent // nil for variants before 1466

	populated bool
}

// IsPopulated reports whether this chunk was built by a real constructor
// (true) or is still the unfilled shell returned by a null constructor.
func (c *Chunk) IsPopulated() bool { return c.populated }

// Populate fills an unpopulated shell (produced by a null constructor) with
// real component data, validating the data version against the variant's
// band exactly as the equivalent non-null constructor would.
func (c *Chunk) Populate(dataVersion int64, defaultBlock Block, defaultBiome Biome) error {
	built, err := newVariant(c.ID, dataVersion, defaultBlock, defaultBiome)
	if err != nil {
		return err
	}
	*c = *built
	return nil
}

// Component returns the named component by ID, or false if the ID is
// unknown for this variant. Known IDs: "raw", "data_version", "block",
// "biome", "heightmap".
func (c *Chunk) Component(id string) (any, bool) {
	if !c.populated {
		return nil, false
	}
	switch id {
	case "raw":
		return c.Raw, true
	case "data_version":
		return c.DataVersion, true
	case "block":
		return c.Blocks, true
	case "biome":
		return c.Biomes, true
	case "heightmap":
		if c.Heightmaps == nil {
			return nil, false
		}
		return c.Heightmaps, true
	default:
		return nil, false
	}
}

// RequireComponent is Component, but returns ErrComponentNotLoaded instead
// of a bare bool — the shape used by callers that want a component or a
// wrapped error to propagate.
func (c *Chunk) RequireComponent(id string) (any, error) {
	if !c.populated {
		return nil, fmt.Errorf("%w: chunk %s component %q", ErrComponentNotLoaded, c.ID, id)
	}
	v, ok := c.Component(id)
	if !ok {
		return nil, fmt.Errorf("%w: chunk %s component %q", ErrComponentNotLoaded, c.ID, id)
	}
	return v, nil
}

func newVersionRange(dataVersion int64) version.Range {
	n := version.Number{dataVersion}
	return version.NewRange("java", n, n)
}

func hasNamedHeightmaps(v Variant) bool {
	return v == Variant1466 || v == Variant2203
}

func is3DBiome(v Variant) bool {
	return v == Variant2203
}

func newVariant(v Variant, dataVersion int64, defaultBlock Block, defaultBiome Biome) (*Chunk, error) {
	if v == VariantNA {
		dataVersion = -1
	}
	if err := validateBand(v, dataVersion); err != nil {
		return nil, err
	}

	rng := newVersionRange(dataVersion)
	c := &Chunk{
		ID:          v,
		DataVersion: dataVersion,
		Range:       rng,
		Raw:         RawChunk{},
		Blocks: &BlockComponent{
			Range:    rng,
			Sections: map[int32]*BlockSection{0: newBlockSection(defaultBlock)},
		},
		populated: true,
	}

	if is3DBiome(v) {
		c.Biomes = &BiomeComponent{
			Is3D:       true,
			Sections3D: map[int32][]Biome{0: newBiomeCell(defaultBiome)},
		}
	} else {
		cols := make([]Biome, sectionEdge*sectionEdge)
		for i := range cols {
			cols[i] = defaultBiome
		}
		c.Biomes = &BiomeComponent{Columns2D: cols}
	}

	if hasNamedHeightmaps(v) {
		c.Heightmaps = &HeightmapComponent{Maps: map[string][]int32{}}
	}

	return c, nil
}

func newBiomeCell(defaultBiome Biome) []Biome {
	cell := make([]Biome, 4*4*4)
	for i := range cell {
		cell[i] = defaultBiome
	}
	return cell
}

func validateBand(v Variant, dataVersion int64) error {
	switch v {
	case VariantNA:
		if dataVersion != -1 {
			return fmt.Errorf("%w: JavaChunkNA requires data_version -1, got %d", ErrInvalidArgument, dataVersion)
		}
	case Variant0:
		if dataVersion < 0 || dataVersion > 1443 {
			return fmt.Errorf("%w: data_version must be between 0 and 1443, got %d", ErrInvalidArgument, dataVersion)
		}
	case Variant1444:
		if dataVersion < 1444 || dataVersion > 1465 {
			return fmt.Errorf("%w: data_version must be between 1444 and 1465, got %d", ErrInvalidArgument, dataVersion)
		}
	case Variant1466:
		if dataVersion < 1466 || dataVersion > 2202 {
			return fmt.Errorf("%w: data_version must be between 1466 and 2202, got %d", ErrInvalidArgument, dataVersion)
		}
	case Variant2203:
		if dataVersion < 2203 {
			return fmt.Errorf("%w: data_version must be at least 2203, got %d", ErrInvalidArgument, dataVersion)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChunkID, v)
	}
	return nil
}
