package chunk_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Amulet-Team/Amulet-Level/chunk"
)

func TestVariantForDataVersion(t *testing.T) {
	cases := []struct {
		dataVersion int64
		want        chunk.Variant
	}{
		{-1, chunk.VariantNA},
		{0, chunk.Variant0},
		{1443, chunk.Variant0},
		{1444, chunk.Variant1444},
		{1465, chunk.Variant1444},
		{1466, chunk.Variant1466},
		{2202, chunk.Variant1466},
		{2203, chunk.Variant2203},
		{99999, chunk.Variant2203},
	}
	for _, c := range cases {
		got, err := chunk.VariantForDataVersion(c.dataVersion)
		require.NoError(t, err)
		require.Equal(t, c.want, got, "data_version=%d", c.dataVersion)
	}
}

func TestNewValidatesBand(t *testing.T) {
	_, err := chunk.New(1444, "stone", "plains")
	require.NoError(t, err)

	_, err = chunk.New(-5, "stone", "plains")
	require.Error(t, err)
}

func TestNewPopulatesDefaultComponents(t *testing.T) {
	c, err := chunk.New(2203, "minecraft:stone", "minecraft:plains")
	require.NoError(t, err)
	require.True(t, c.IsPopulated())

	raw, err := c.RequireComponent("raw")
	require.NoError(t, err)
	require.NotNil(t, raw)

	biomeAny, err := c.RequireComponent("biome")
	require.NoError(t, err)
	biomes := biomeAny.(*chunk.BiomeComponent)
	require.True(t, biomes.Is3D)

	_, err = c.RequireComponent("heightmap")
	require.NoError(t, err)
}

func TestPre2203Has2DBiomes(t *testing.T) {
	c, err := chunk.New(2000, "minecraft:stone", "minecraft:plains")
	require.NoError(t, err)
	biomeAny, _ := c.RequireComponent("biome")
	biomes := biomeAny.(*chunk.BiomeComponent)
	require.False(t, biomes.Is3D)
	require.Len(t, biomes.Columns2D, 256)
}

func TestPre1466HasNoHeightmapComponent(t *testing.T) {
	c, err := chunk.New(1000, "minecraft:stone", "minecraft:plains")
	require.NoError(t, err)
	_, err = c.RequireComponent("heightmap")
	require.Error(t, err)
	require.True(t, errors.Is(err, chunk.ErrComponentNotLoaded))
}

func TestNullConstructorThenPopulate(t *testing.T) {
	shell, err := chunk.NewNull(string(chunk.Variant1444))
	require.NoError(t, err)
	require.False(t, shell.IsPopulated())

	_, err = shell.RequireComponent("block")
	require.True(t, errors.Is(err, chunk.ErrComponentNotLoaded))

	require.NoError(t, shell.Populate(1450, "minecraft:stone", "minecraft:plains"))
	require.True(t, shell.IsPopulated())
	_, err = shell.RequireComponent("block")
	require.NoError(t, err)
}

func TestNewNullUnknownChunkID(t *testing.T) {
	_, err := chunk.NewNull("Amulet::BedrockChunkWhatever")
	require.True(t, errors.Is(err, chunk.ErrUnknownChunkID))
}
