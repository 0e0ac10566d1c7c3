package anvil

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// sectorTable tracks which 4096-byte sectors of a region file, past the
// fixed two-sector header, are free for reuse. Freed sectors (from deletes
// or from a chunk outgrowing its old slot) are reclaimed lazily: they sit
// in the bitmap until a later write finds them through alloc, rather than
// the file being truncated immediately.
type sectorTable struct {
	free  *roaring.Bitmap
	total uint32 // total sectors currently backed by the file, header included
}

const headerSectors = 2

func newSectorTable() *sectorTable {
	return &sectorTable{free: roaring.New(), total: headerSectors}
}

// markUsed records that sectors [start, start+count) are occupied, growing
// the table's notion of file size if needed. Used while replaying a
// region's existing location table on Open.
func (t *sectorTable) markUsed(start, count uint32) {
	t.free.RemoveRange(uint64(start), uint64(start+count))
	if end := start + count; end > t.total {
		t.total = end
	}
}

// markFree adds [start, start+count) back into the free set without
// shrinking the file.
func (t *sectorTable) markFree(start, count uint32) {
	if count == 0 {
		return
	}
	t.free.AddRange(uint64(start), uint64(start+count))
}

// alloc finds count contiguous free sectors, preferring the lowest offset,
// and returns their start. If no run of that length exists in the free
// set, it grows the table by appending count fresh sectors at the end.
func (t *sectorTable) alloc(count uint32) uint32 {
	if count == 0 {
		panic("anvil: alloc of zero sectors")
	}
	if start, ok := t.findRun(count); ok {
		t.free.RemoveRange(uint64(start), uint64(start+count))
		return start
	}
	start := t.total
	t.total += count
	return start
}

func (t *sectorTable) findRun(count uint32) (uint32, bool) {
	it := t.free.Iterator()
	var runStart uint32
	var runLen uint32
	havStart := false
	for it.HasNext() {
		v := it.Next()
		if havStart && v == runStart+runLen {
			runLen++
		} else {
			runStart = v
			runLen = 1
			havStart = true
		}
		if runLen >= count {
			return runStart, true
		}
	}
	return 0, false
}

// compact renumbers the table to exactly usedSectors occupied sectors
// packed immediately after the header, with no free gaps remaining.
func (t *sectorTable) compact(usedSectors uint32) {
	t.free.Clear()
	t.total = headerSectors + usedSectors
}

func (t *sectorTable) String() string {
	return fmt.Sprintf("sectorTable{total=%d, free=%d}", t.total, t.free.GetCardinality())
}
