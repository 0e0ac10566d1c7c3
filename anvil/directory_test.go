package anvil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Amulet-Team/Amulet-Level/chunk"
)

func TestOpenAllFindsRegionsByFilename(t *testing.T) {
	dir := t.TempDir()

	for _, coord := range []RegionCoord{{X: 0, Z: 0}, {X: -1, Z: 2}} {
		path := filepath.Join(dir, coordFilename(coord))
		r, err := Open(path, CompressionZlib)
		require.NoError(t, err)
		require.NoError(t, r.SetChunk(context.Background(), 0, 0, chunk.RawChunk{"v": int32(1)}, CompressionZlib))
		require.NoError(t, r.Close())
	}

	regions, err := OpenAll(context.Background(), dir, CompressionZlib)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	for coord, r := range regions {
		has, err := r.HasChunk(0, 0)
		require.NoError(t, err)
		require.True(t, has, "region %v missing its chunk", coord)
		require.NoError(t, r.Close())
	}
}

func coordFilename(c RegionCoord) string {
	return fmt.Sprintf("r.%d.%d.mca", c.X, c.Z)
}
