package history

import "fmt"

// InitMode selects how SetValue/SetValues treats a key that has no
// baseline yet.
type InitMode int

const (
	// Default requires the key to already exist; the same as Error.
	Default InitMode = iota
	// Error requires the key to already exist.
	Error
	// Empty installs a zero-valued baseline for a missing key before
	// applying the new value.
	Empty
	// Value installs the new value itself as the baseline for a missing
	// key, with no further revision recorded.
	Value
)

// Entry is one (key, value) pair for SetValues, preserving the caller's
// insertion order — required since undo/redo replay within a bin follows
// insertion order.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Layer is a single-value-type map tracked by a HistoryManager. All keys
// in one layer share value type V. V is any rather than comparable so
// that layers can hold values with no native == (chunk.RawChunk is a
// map); equal supplies the notion of "unchanged" that HasChanged needs.
type Layer[K comparable, V any] struct {
	manager   *Manager
	index     int
	resources map[string]*Resource[V]
	keysByID  map[string]K
	keyIDFunc func(K) string
	equal     func(a, b V) bool
}

func newLayer[K comparable, V any](m *Manager, index int, keyIDFunc func(K) string, equal func(a, b V) bool) *Layer[K, V] {
	return &Layer[K, V]{
		manager:   m,
		index:     index,
		resources: make(map[string]*Resource[V]),
		keysByID:  make(map[string]K),
		keyIDFunc: keyIDFunc,
		equal:     equal,
	}
}

func (l *Layer[K, V]) id(k K) string { return l.keyIDFunc(k) }

// SetInitialValue installs v as k's baseline. It always writes directly —
// never recording a revision, regardless of whether a bin is open — and
// fails if k is already known.
func (l *Layer[K, V]) SetInitialValue(k K, v V) error {
	id := l.id(k)
	if _, exists := l.resources[id]; exists {
		return fmt.Errorf("%w: %v", ErrKeyAlreadyKnown, k)
	}
	l.resources[id] = newResource(v, l.equal)
	l.keysByID[id] = k
	return nil
}

// SetValue sets k's value under the given initialisation mode.
func (l *Layer[K, V]) SetValue(k K, v V, mode InitMode) error {
	id := l.id(k)
	r, exists := l.resources[id]

	switch mode {
	case Default, Error:
		if !exists {
			return fmt.Errorf("%w: %v", ErrUnknownKey, k)
		}
	case Empty:
		if !exists {
			var zero V
			r = newResource(zero, l.equal)
			l.resources[id] = r
			l.keysByID[id] = k
		}
	case Value:
		if !exists {
			l.resources[id] = newResource(v, l.equal)
			l.keysByID[id] = k
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown initialisation mode %d", ErrUnknownKey, mode)
	}

	l.apply(id, r, v)
	return nil
}

func (l *Layer[K, V]) apply(id string, r *Resource[V], v V) {
	if l.manager.recordTouch(l.index, id, any(v)) {
		r.pushRevision(v)
	} else {
		r.directWrite(v)
	}
}

// SetValues applies a batch under the given mode. Under Default/Error,
// every key must already exist or the entire batch is rejected without
// mutating anything. Under Empty/Value, every entry is applied.
func (l *Layer[K, V]) SetValues(batch []Entry[K, V], mode InitMode) error {
	if mode == Default || mode == Error {
		for _, e := range batch {
			if _, exists := l.resources[l.id(e.Key)]; !exists {
				return fmt.Errorf("%w: %v", ErrUnknownKey, e.Key)
			}
		}
	}
	for _, e := range batch {
		if err := l.SetValue(e.Key, e.Value, mode); err != nil {
			return err
		}
	}
	return nil
}

// GetValue returns the current effective value for k.
func (l *Layer[K, V]) GetValue(k K) (V, error) {
	var zero V
	r, exists := l.resources[l.id(k)]
	if !exists {
		return zero, fmt.Errorf("%w: %v", ErrUnknownKey, k)
	}
	return r.Value(), nil
}

// GetResource exposes the Resource backing k, primarily for HasChanged.
func (l *Layer[K, V]) GetResource(k K) (*Resource[V], error) {
	r, exists := l.resources[l.id(k)]
	if !exists {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKey, k)
	}
	return r, nil
}

// Resources returns every (key, resource) pair currently tracked.
func (l *Layer[K, V]) Resources() map[K]*Resource[V] {
	out := make(map[K]*Resource[V], len(l.resources))
	for id, r := range l.resources {
		out[l.keysByID[id]] = r
	}
	return out
}

// layerHandle is the type-erased vtable the HistoryManager manipulates via
// (layer_index, key_id) pairs, per the heterogeneous-layers design.
type layerHandle interface {
	popRevision(keyID string)
	pushRevisionReplay(keyID string, value any)
	markSaved()
	reset()
}

func (l *Layer[K, V]) popRevision(keyID string) {
	if r, ok := l.resources[keyID]; ok {
		r.popRevision()
	}
}

func (l *Layer[K, V]) pushRevisionReplay(keyID string, value any) {
	if r, ok := l.resources[keyID]; ok {
		r.pushRevision(value.(V))
	}
}

func (l *Layer[K, V]) markSaved() {
	for _, r := range l.resources {
		r.markSaved()
	}
}

func (l *Layer[K, V]) reset() {
	l.resources = make(map[string]*Resource[V])
	l.keysByID = make(map[string]K)
}
