// Package history implements the multi-layer undo/redo history manager
// (C4 Resource Layer, C5 History Manager): a stack of transactional bins
// over heterogeneous, type-erased Layers, each holding per-key Resources.
package history

import (
	"fmt"

	"github.com/google/uuid"
)

type touch struct {
	layerIdx int
	keyID    string
	value    any
}

// Bin is a transactional group of revisions produced between two
// CreateUndoBin calls.
type Bin struct {
	ID      uuid.UUID
	touches []touch
}

func newBin() *Bin {
	return &Bin{ID: uuid.New()}
}

// Manager is an ordered list of undo bins plus a cursor, driving a set of
// heterogeneous Layers. It is not internally synchronized: callers must
// serialize access externally (the ChunkHandle lock does this for
// per-chunk history in this module).
type Manager struct {
	bins   []*Bin
	cursor int
	layers []layerHandle
}

// NewManager creates an empty HistoryManager with no layers and no bins.
func NewManager() *Manager {
	return &Manager{cursor: -1}
}

// NewLayer registers and returns a fresh, empty Layer[K,V] on m. Go does
// not allow a generic method with its own type parameters, so this is a
// package-level function taking the manager rather than Manager.NewLayer.
// keyIDFunc converts a key to its stable string identity; callers using
// plain comparable keys (string, int) can pass fmt.Sprint-based helpers,
// or a method value when K implements fmt.Stringer. equal decides
// HasChanged for V; callers whose V is itself comparable can pass
// DeepEqual[V], which falls back to reflection-based structural equality
// (see google/go-cmp) for everything else, including map-valued V such as
// chunk.RawChunk.
func NewLayer[K comparable, V any](m *Manager, keyIDFunc func(K) string, equal func(a, b V) bool) *Layer[K, V] {
	idx := len(m.layers)
	l := newLayer[K, V](m, idx, keyIDFunc, equal)
	m.layers = append(m.layers, l)
	return l
}

// recordTouch is called by a Layer whenever it is about to apply a
// tracked mutation. It returns false during the pre-bin phase (no bin has
// ever been created), meaning the caller must write directly with no
// revision. Otherwise it ensures the cursor is at the newest bin —
// rewinding (undoing the bin at the cursor and truncating the future)
// first if it is not — and appends the touch to that bin.
func (m *Manager) recordTouch(layerIdx int, keyID string, value any) bool {
	if len(m.bins) == 0 {
		return false
	}
	if m.cursor != len(m.bins)-1 {
		m.rewind()
	}
	b := m.bins[m.cursor]
	b.touches = append(b.touches, touch{layerIdx: layerIdx, keyID: keyID, value: value})
	return true
}

// rewind undoes the bin currently at the cursor (if any), discards every
// bin from the cursor onward, and opens a fresh bin — the behavior spec.md
// describes as "mutating while the cursor is not at the newest bin
// truncates the future and appends to a fresh bin at the cursor position".
func (m *Manager) rewind() {
	if m.cursor >= 0 {
		m.undoBinTouches(m.bins[m.cursor])
	}
	keep := m.cursor
	if keep < 0 {
		keep = 0
	}
	m.bins = m.bins[:keep]
	m.bins = append(m.bins, newBin())
	m.cursor = len(m.bins) - 1
}

func (m *Manager) undoBinTouches(b *Bin) {
	for i := len(b.touches) - 1; i >= 0; i-- {
		t := b.touches[i]
		m.layers[t.layerIdx].popRevision(t.keyID)
	}
}

// CreateUndoBin truncates any bins after the cursor, appends a new open
// bin, and advances the cursor onto it. Unlike rewind, it never undoes the
// bin currently at the cursor — that bin's own revisions stay applied.
func (m *Manager) CreateUndoBin() {
	if m.cursor+1 < len(m.bins) {
		m.bins = m.bins[:m.cursor+1]
	}
	m.bins = append(m.bins, newBin())
	m.cursor = len(m.bins) - 1
}

// Undo pops the top revision of every (layer, key) touched in the bin at
// the cursor, then moves the cursor back one bin.
func (m *Manager) Undo() error {
	if m.cursor < 0 {
		return fmt.Errorf("%w", ErrNothingToUndo)
	}
	m.undoBinTouches(m.bins[m.cursor])
	m.cursor--
	return nil
}

// Redo moves the cursor forward one bin and replays every revision
// recorded for the bin now at the cursor, in insertion order.
func (m *Manager) Redo() error {
	if m.cursor+1 >= len(m.bins) {
		return fmt.Errorf("%w", ErrNothingToRedo)
	}
	m.cursor++
	b := m.bins[m.cursor]
	for _, t := range b.touches {
		m.layers[t.layerIdx].pushRevisionReplay(t.keyID, t.value)
	}
	return nil
}

// GetUndoCount returns the number of bins that a call to Undo can still
// consume.
func (m *Manager) GetUndoCount() int { return m.cursor + 1 }

// GetRedoCount returns the number of bins that a call to Redo can still
// consume.
func (m *Manager) GetRedoCount() int { return len(m.bins) - 1 - m.cursor }

// MarkSaved makes every resource's current effective value its new
// save-point baseline, so HasChanged clears for every key. Revision stacks
// and bins are kept as they are; undo can still cross the save point.
func (m *Manager) MarkSaved() {
	for _, l := range m.layers {
		l.markSaved()
	}
}

// Reset clears every layer, clears all bins, and resets the cursor. A key
// reinstalled after Reset gets a brand new Resource, so no revision from
// its previous life can resurface (ghost prevention).
func (m *Manager) Reset() {
	for _, l := range m.layers {
		l.reset()
	}
	m.bins = nil
	m.cursor = -1
}
