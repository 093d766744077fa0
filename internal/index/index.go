// Package index implements the store's shared, concurrent, ordered map from
// key to the on-disk location of its most recent Set record.
//
// The map itself is an immutable.SortedMap, published behind an
// atomic.Pointer following the copy-on-write snapshot pattern dreamsxin-wal
// uses for its segment catalog (WAL.mutateStateLocked / s atomic.Value):
// every mutation loads the current snapshot, derives a new one, and stores
// it back. Because all mutations are already serialized by the writer
// mutex (see internal/writer), this is a plain load-mutate-store rather than
// a compare-and-swap retry loop — concurrent readers only ever see a
// complete, consistent snapshot.
package index

import (
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

// Position locates a serialized record on disk.
type Position struct {
	SegmentID uint64
	Offset    int64
	Length    uint32
}

// Index is the concurrent ordered key -> Position map shared by the reader
// and writer.
type Index struct {
	snapshot atomic.Pointer[immutable.SortedMap[string, Position]]
}

// New returns an empty index.
func New() *Index {
	ix := &Index{}
	ix.snapshot.Store(&immutable.SortedMap[string, Position]{})
	return ix
}

func (ix *Index) load() *immutable.SortedMap[string, Position] {
	return ix.snapshot.Load()
}

// Get returns the position of key's most recent Set, if present.
func (ix *Index) Get(key string) (Position, bool) {
	return ix.load().Get(key)
}

// Set records pos as the current position of key, returning whatever
// position it previously held, if any. Only ever called while the writer
// mutex is held.
func (ix *Index) Set(key string, pos Position) (Position, bool) {
	m := ix.load()
	old, had := m.Get(key)
	ix.snapshot.Store(m.Set(key, pos))
	return old, had
}

// Delete removes key from the index, returning the position it held, if
// any. Only ever called while the writer mutex is held.
func (ix *Index) Delete(key string) (Position, bool) {
	m := ix.load()
	old, had := m.Get(key)
	if !had {
		return Position{}, false
	}
	ix.snapshot.Store(m.Delete(key))
	return old, true
}

// Len returns the number of keys currently indexed.
func (ix *Index) Len() int {
	return ix.load().Len()
}

// Ascend calls fn for every entry in key order. Used only by compaction,
// which needs live records copied into the new segment in a deterministic
// order.
func (ix *Index) Ascend(fn func(key string, pos Position)) {
	it := ix.load().Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		fn(k, v)
	}
}

// ReplaceAll bulk-applies a compaction's staged positions atomically from
// the readers' point of view: the whole batch becomes visible in a single
// snapshot swap. Safe only because compaction runs under the writer mutex,
// so no other mutation can race it between load and store.
func (ix *Index) ReplaceAll(staged map[string]Position) {
	m := ix.load()
	for k, v := range staged {
		m = m.Set(k, v)
	}
	ix.snapshot.Store(m)
}
