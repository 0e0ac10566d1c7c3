package handle

import (
	"context"

	"github.com/Amulet-Team/Amulet-Level/anvil"
	"github.com/Amulet-Team/Amulet-Level/chunk"
)

// Store is the chunk-coordinate-addressable backing a ChunkHandle reads
// from and writes to. anvil.Region satisfies it via RegionStore; tests use
// a fake in-memory implementation instead of touching disk.
type Store interface {
	GetChunk(ctx context.Context, lx, lz int) (chunk.RawChunk, error)
	SetChunk(ctx context.Context, lx, lz int, raw chunk.RawChunk) error
	DeleteChunk(lx, lz int) error
}

// RegionStore adapts an *anvil.Region, which takes an explicit compression
// tag per write, to the Store interface's fixed-compression contract.
type RegionStore struct {
	Region      *anvil.Region
	Compression anvil.CompressionID
}

func (s RegionStore) GetChunk(ctx context.Context, lx, lz int) (chunk.RawChunk, error) {
	return s.Region.GetChunk(ctx, lx, lz)
}

func (s RegionStore) SetChunk(ctx context.Context, lx, lz int, raw chunk.RawChunk) error {
	return s.Region.SetChunk(ctx, lx, lz, raw, s.Compression)
}

func (s RegionStore) DeleteChunk(lx, lz int) error {
	return s.Region.DeleteChunk(lx, lz)
}
