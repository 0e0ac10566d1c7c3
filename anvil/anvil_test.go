package anvil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Amulet-Team/Amulet-Level/chunk"
)

func TestRegionAbsenceIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")

	r, err := Open(path, CompressionZlib)
	require.NoError(t, err)
	defer r.Close()

	has, err := r.HasChunk(0, 0)
	require.NoError(t, err)
	require.False(t, has)

	_, err = r.GetChunk(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrRegionDoesNotExist)
}

func TestInvalidLocalCoordinate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionZlib)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.HasChunk(32, 0)
	require.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = r.HasChunk(-1, 0)
	require.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestSetChunkGetChunkRoundTrip(t *testing.T) {
	for _, comp := range []CompressionID{CompressionGZip, CompressionZlib, CompressionUncompressed, CompressionLZ4} {
		t.Run(comp.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "r.0.0.mca")
			r, err := Open(path, comp)
			require.NoError(t, err)
			defer r.Close()
			if comp == CompressionLZ4 {
				r.SetAllowLZ4(true)
			}

			raw := chunk.RawChunk{
				"DataVersion": int32(3465),
				"xPos":        int32(4),
				"zPos":        int32(-2),
				"Status":      "minecraft:full",
			}
			require.NoError(t, r.SetChunk(context.Background(), 4, 2, raw, comp))

			has, err := r.HasChunk(4, 2)
			require.NoError(t, err)
			require.True(t, has)

			got, err := r.GetChunk(context.Background(), 4, 2)
			require.NoError(t, err)
			if diff := cmp.Diff(int32(4), got["xPos"]); diff != "" {
				t.Errorf("xPos mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff("minecraft:full", got["Status"]); diff != "" {
				t.Errorf("Status mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetChunkReusesSectorsWhenItFits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionUncompressed)
	require.NoError(t, err)
	defer r.Close()

	big := chunk.RawChunk{"blob": make([]byte, 20000)}
	require.NoError(t, r.SetChunk(context.Background(), 1, 1, big, CompressionUncompressed))
	idx, err := localIndex(1, 1)
	require.NoError(t, err)
	_, firstCount := splitLocation(r.locations[idx])

	small := chunk.RawChunk{"blob": make([]byte, 10)}
	require.NoError(t, r.SetChunk(context.Background(), 1, 1, small, CompressionUncompressed))
	firstStart, secondCount := splitLocation(r.locations[idx])
	require.Equal(t, uint32(headerSectors), firstStart)
	require.LessOrEqual(t, secondCount, firstCount)
}

func TestDeleteChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionZlib)
	require.NoError(t, err)
	defer r.Close()

	raw := chunk.RawChunk{"Status": "minecraft:full"}
	require.NoError(t, r.SetChunk(context.Background(), 5, 5, raw, CompressionZlib))
	require.NoError(t, r.DeleteChunk(5, 5))

	_, err = r.GetChunk(context.Background(), 5, 5)
	require.ErrorIs(t, err, ErrChunkDoesNotExist)

	err = r.DeleteChunk(5, 5)
	require.ErrorIs(t, err, ErrChunkDoesNotExist)
}

func TestAllCoordsEnumeratesPopulatedSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionZlib)
	require.NoError(t, err)
	defer r.Close()

	want := map[[2]int]bool{{1, 1}: true, {2, 3}: true, {31, 31}: true}
	for c := range want {
		require.NoError(t, r.SetChunk(context.Background(), c[0], c[1], chunk.RawChunk{"v": int32(1)}, CompressionZlib))
	}

	got := map[[2]int]bool{}
	for lx, lz := range r.AllCoords() {
		got[[2]int{lx, lz}] = true
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("coords mismatch (-want +got):\n%s", diff)
	}
}

func TestCompactPreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionZlib)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 5; i++ {
		blob := make([]byte, 9000)
		require.NoError(t, r.SetChunk(context.Background(), i, 0, chunk.RawChunk{"n": int32(i), "blob": blob}, CompressionZlib))
	}
	require.NoError(t, r.DeleteChunk(1, 0))
	require.NoError(t, r.DeleteChunk(3, 0))

	require.NoError(t, r.Compact())

	for _, i := range []int{0, 2, 4} {
		got, err := r.GetChunk(context.Background(), i, 0)
		require.NoError(t, err)
		require.Equal(t, int32(i), got["n"])
	}
	for _, i := range []int{1, 3} {
		_, err := r.GetChunk(context.Background(), i, 0)
		require.ErrorIs(t, err, ErrChunkDoesNotExist)
	}
}

func TestUnknownCompressionTagIsRejected(t *testing.T) {
	_, err := decompress(CompressionID(99), []byte{1, 2, 3}, false)
	require.True(t, errors.Is(err, ErrCompression))
}

func TestRecompressMigratesCompressionTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionZlib)
	require.NoError(t, err)
	defer r.Close()

	raw := chunk.RawChunk{"Status": "minecraft:full"}
	require.NoError(t, r.SetChunk(context.Background(), 0, 0, raw, CompressionZlib))

	require.NoError(t, r.Recompress(context.Background(), 0, 0, CompressionZstd))

	idx, err := localIndex(0, 0)
	require.NoError(t, err)
	_, count := splitLocation(r.locations[idx])
	require.Greater(t, count, uint32(0))

	got, err := r.GetChunk(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, "minecraft:full", got["Status"])
}

func TestLZ4RefusedUnlessAllowed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.0.0.mca")
	r, err := Open(path, CompressionLZ4)
	require.NoError(t, err)
	defer r.Close()

	raw := chunk.RawChunk{"Status": "minecraft:full"}
	err = r.SetChunk(context.Background(), 0, 0, raw, CompressionLZ4)
	require.ErrorIs(t, err, ErrCompression)

	r.SetAllowLZ4(true)
	require.NoError(t, r.SetChunk(context.Background(), 0, 0, raw, CompressionLZ4))

	r.SetAllowLZ4(false)
	_, err = r.GetChunk(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrCompression)
}
