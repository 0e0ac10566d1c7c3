// Package anvil implements the Anvil region file format (C2): the 1024-slot
// (32x32 chunk) container that stores compressed chunk NBT in 4096-byte
// sectors behind a fixed 8KiB location/timestamp header.
//
// Grounded on the read path in bwkimmel-mcstrings/mcstrings.go (header
// layout, compression tag dispatch) and the write path in the
// go-theft-craft-server anvil region writer (sector allocation, atomic
// whole-file rewrite), with free-sector bookkeeping backed by a Roaring
// bitmap instead of a linear scan.
package anvil

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"os"
	"sync"
	"time"

	"github.com/sandertv/gophertunnel/minecraft/nbt"

	"github.com/Amulet-Team/Amulet-Level/chunk"
	"github.com/Amulet-Team/Amulet-Level/internal/levellog"
)

const (
	sectorSize  = 4096
	regionWidth = 32
	headerBytes = headerSectors * sectorSize
)

// Region is a single .mca file: a 32x32 grid of chunk slots. It is safe for
// concurrent use; reads may proceed concurrently with each other, but a
// mutating call (SetChunk, DeleteChunk, Compact) excludes all other access.
type Region struct {
	mu     sync.RWMutex
	path   string
	f      *os.File
	exists bool

	locations  [regionWidth * regionWidth]uint32
	timestamps [regionWidth * regionWidth]uint32
	sectors    *sectorTable

	defaultCompression CompressionID
	allowLZ4           bool
}

// SetAllowLZ4 toggles whether compression id 4 (LZ4) may be read or written.
// It defaults to false: a region refuses to decode or produce LZ4 payloads
// until a caller opts in, for example from levelconfig's AllowLZ4 knob.
func (r *Region) SetAllowLZ4(allow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowLZ4 = allow
}

// Open opens the region file at path for reading and writing, creating no
// file on disk yet if it does not exist — Open itself never fails because a
// region is absent; only read operations on an absent region report
// ErrRegionDoesNotExist, mirroring on-demand region creation in vanilla
// Anvil worlds.
func Open(path string, defaultCompression CompressionID) (*Region, error) {
	r := &Region{
		path:                path,
		sectors:             newSectorTable(),
		defaultCompression:  defaultCompression,
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("anvil: open %q: %w", path, err)
	}
	r.f = f
	r.exists = true

	if err := r.loadHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Region) loadHeader() error {
	header := make([]byte, headerBytes)
	if _, err := r.f.ReadAt(header, 0); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %v", ErrCorruptRegionHeader, err)
	}
	info, err := r.f.Stat()
	if err != nil {
		return fmt.Errorf("anvil: stat %q: %w", r.path, err)
	}
	fileSectors := uint32((info.Size() + sectorSize - 1) / sectorSize)
	if fileSectors < headerSectors {
		fileSectors = headerSectors
	}
	r.sectors.total = fileSectors
	// Every sector past the header starts out free; markUsed below removes
	// the ones a location entry occupies, leaving earlier gaps reusable.
	r.sectors.free.AddRange(uint64(headerSectors), uint64(fileSectors))

	for i := 0; i < regionWidth*regionWidth; i++ {
		r.locations[i] = binary.BigEndian.Uint32(header[i*4 : i*4+4])
		r.timestamps[i] = binary.BigEndian.Uint32(header[headerBytes/2+i*4 : headerBytes/2+i*4+4])
		if r.locations[i] == 0 {
			continue
		}
		start, count := splitLocation(r.locations[i])
		if count == 0 || uint64(start+count) > uint64(fileSectors) {
			return fmt.Errorf("%w: slot %d points outside file", ErrCorruptRegionHeader, i)
		}
		r.sectors.markUsed(start, count)
	}
	return nil
}

func splitLocation(loc uint32) (start, count uint32) {
	return loc >> 8, loc & 0xFF
}

func joinLocation(start, count uint32) uint32 {
	return (start << 8) | (count & 0xFF)
}

func localIndex(lx, lz int) (int, error) {
	if lx < 0 || lx >= regionWidth || lz < 0 || lz >= regionWidth {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrInvalidCoordinate, lx, lz)
	}
	return lx + lz*regionWidth, nil
}

// Close releases the region's open file handle, if any.
func (r *Region) Close() error {
	if r.f == nil {
		return nil
	}
	return r.f.Close()
}

// HasChunk reports whether the slot at (lx, lz) holds data. An absent
// region simply has no chunks; this is not an error.
func (r *Region) HasChunk(lx, lz int) (bool, error) {
	idx, err := localIndex(lx, lz)
	if err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.exists {
		return false, nil
	}
	return r.locations[idx] != 0, nil
}

// GetChunk reads, decompresses, and NBT-decodes the chunk at (lx, lz).
func (r *Region) GetChunk(ctx context.Context, lx, lz int) (chunk.RawChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, err := localIndex(lx, lz)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.exists {
		return nil, ErrRegionDoesNotExist
	}
	loc := r.locations[idx]
	if loc == 0 {
		return nil, ErrChunkDoesNotExist
	}
	start, count := splitLocation(loc)

	block := make([]byte, count*sectorSize)
	if _, err := r.f.ReadAt(block, int64(start)*sectorSize); err != nil {
		return nil, fmt.Errorf("anvil: read chunk (%d,%d): %w", lx, lz, err)
	}
	if len(block) < 5 {
		return nil, fmt.Errorf("%w: chunk (%d,%d) too short", ErrCorruptRegionHeader, lx, lz)
	}
	length := binary.BigEndian.Uint32(block[0:4])
	if length == 0 || int(length) > len(block)-4 {
		return nil, fmt.Errorf("%w: chunk (%d,%d) length out of range", ErrCorruptRegionHeader, lx, lz)
	}
	compression := CompressionID(block[4])
	payload := block[5 : 4+length]

	raw, err := decompress(compression, payload, r.allowLZ4)
	if err != nil {
		return nil, err
	}

	var m map[string]any
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(raw), nbt.BigEndian).Decode(&m); err != nil {
		return nil, fmt.Errorf("anvil: decode chunk (%d,%d): %w", lx, lz, err)
	}
	return chunk.RawChunk(m), nil
}

// SetChunk NBT-encodes, compresses, and writes raw into the slot at
// (lx, lz), creating the region file on disk if this is its first write.
// If the new payload still fits within the chunk's previously allocated
// sectors, it is rewritten in place; otherwise its old sectors (if any)
// are freed and a fresh run is allocated.
func (r *Region) SetChunk(ctx context.Context, lx, lz int, raw chunk.RawChunk, compression CompressionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx, err := localIndex(lx, lz)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureFile(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(map[string]any(raw)); err != nil {
		return fmt.Errorf("anvil: encode chunk (%d,%d): %w", lx, lz, err)
	}
	compressed, err := compress(compression, buf.Bytes(), r.allowLZ4)
	if err != nil {
		return err
	}

	payloadLen := uint32(len(compressed) + 1)
	total := 4 + payloadLen
	needed := (total + sectorSize - 1) / sectorSize

	oldLoc := r.locations[idx]
	oldStart, oldCount := splitLocation(oldLoc)

	var start uint32
	switch {
	case oldLoc != 0 && oldCount >= needed:
		start = oldStart
		if oldCount > needed {
			r.sectors.markFree(oldStart+needed, oldCount-needed)
		}
	default:
		if oldLoc != 0 {
			r.sectors.markFree(oldStart, oldCount)
		}
		start = r.sectors.alloc(needed)
	}
	if needed > 0xFF {
		return fmt.Errorf("anvil: chunk (%d,%d) needs %d sectors, more than 255 fit in a location entry", lx, lz, needed)
	}

	block := make([]byte, needed*sectorSize)
	binary.BigEndian.PutUint32(block[0:4], payloadLen)
	block[4] = byte(compression)
	copy(block[5:], compressed)

	if _, err := r.f.WriteAt(block, int64(start)*sectorSize); err != nil {
		return fmt.Errorf("anvil: write chunk (%d,%d): %w", lx, lz, err)
	}

	r.locations[idx] = joinLocation(start, needed)
	r.timestamps[idx] = uint32(time.Now().Unix())
	return r.writeHeader()
}

// Recompress rewrites the chunk at (lx, lz) under a different compression
// tag — e.g. migrating a chunk from zlib to CompressionZstd — without the
// caller needing to round-trip the decoded chunk.RawChunk through its own
// code. Unlike LZ4, zstd carries no vanilla-compatibility gate: it is
// already a non-standard extra, so using it is the caller's explicit
// choice the moment they pass CompressionZstd.
func (r *Region) Recompress(ctx context.Context, lx, lz int, newCompression CompressionID) error {
	raw, err := r.GetChunk(ctx, lx, lz)
	if err != nil {
		return err
	}
	return r.SetChunk(ctx, lx, lz, raw, newCompression)
}

// DeleteChunk clears the slot at (lx, lz) and lazily reclaims its sectors.
func (r *Region) DeleteChunk(lx, lz int) error {
	idx, err := localIndex(lx, lz)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists || r.locations[idx] == 0 {
		return ErrChunkDoesNotExist
	}
	start, count := splitLocation(r.locations[idx])
	r.sectors.markFree(start, count)
	r.locations[idx] = 0
	r.timestamps[idx] = 0
	return r.writeHeader()
}

// AllCoords iterates every populated (lx, lz) slot in ascending index
// order. The snapshot is taken up front, so deleting or overwriting a slot
// mid-iteration does not change which coordinates are yielded.
func (r *Region) AllCoords() iter.Seq2[int, int] {
	r.mu.RLock()
	snapshot := r.locations
	r.mu.RUnlock()
	return func(yield func(int, int) bool) {
		for i, loc := range snapshot {
			if loc == 0 {
				continue
			}
			if !yield(i%regionWidth, i/regionWidth) {
				return
			}
		}
	}
}

// Compact rewrites the region file with every chunk's sectors packed
// contiguously after the header, eliminating sectors freed by deletes and
// overwrites, and truncating trailing unused space.
func (r *Region) Compact() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.exists {
		return nil
	}
	levellog.Default.Debugf("anvil: compacting %s (%d sectors allocated, %d free)", r.path, r.sectors.total, r.sectors.free.GetCardinality())
	type slot struct {
		idx          int
		start, count uint32
	}
	var slots []slot
	for i, loc := range r.locations {
		if loc == 0 {
			continue
		}
		start, count := splitLocation(loc)
		slots = append(slots, slot{idx: i, start: start, count: count})
	}

	var body bytes.Buffer
	newLocations := r.locations
	cursor := uint32(0)
	for _, s := range slots {
		block := make([]byte, s.count*sectorSize)
		if _, err := r.f.ReadAt(block, int64(s.start)*sectorSize); err != nil {
			return fmt.Errorf("anvil: compact: read slot %d: %w", s.idx, err)
		}
		body.Write(block)
		newLocations[s.idx] = joinLocation(headerSectors+cursor, s.count)
		cursor += s.count
	}

	tmpPath := r.path + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("anvil: compact: %w", err)
	}
	header := make([]byte, headerBytes)
	for i := 0; i < regionWidth*regionWidth; i++ {
		binary.BigEndian.PutUint32(header[i*4:i*4+4], newLocations[i])
		binary.BigEndian.PutUint32(header[headerBytes/2+i*4:headerBytes/2+i*4+4], r.timestamps[i])
	}
	if _, err := tmp.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("anvil: compact: %w", err)
	}
	if _, err := tmp.Write(body.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("anvil: compact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("anvil: compact: %w", err)
	}

	if err := r.f.Close(); err != nil {
		return fmt.Errorf("anvil: compact: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("anvil: compact: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("anvil: compact: reopen: %w", err)
	}
	r.f = f
	r.locations = newLocations
	r.sectors.compact(cursor)
	return nil
}

func (r *Region) ensureFile() error {
	if r.exists {
		return nil
	}
	f, err := os.OpenFile(r.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("anvil: create %q: %w", r.path, err)
	}
	if _, err := f.WriteAt(make([]byte, headerBytes), 0); err != nil {
		f.Close()
		return fmt.Errorf("anvil: create %q: %w", r.path, err)
	}
	r.f = f
	r.exists = true
	return nil
}

func (r *Region) writeHeader() error {
	header := make([]byte, headerBytes)
	for i := 0; i < regionWidth*regionWidth; i++ {
		binary.BigEndian.PutUint32(header[i*4:i*4+4], r.locations[i])
		binary.BigEndian.PutUint32(header[headerBytes/2+i*4:headerBytes/2+i*4+4], r.timestamps[i])
	}
	if _, err := r.f.WriteAt(header, 0); err != nil {
		return fmt.Errorf("anvil: write header: %w", err)
	}
	return nil
}
