// Package ignite provides a high-performance, embeddable key/value data
// store, inspired by Bitcask. It combines an in-memory ordered index with
// an append-only log structure on disk: every write is a single sequential
// append, every read is at most one seek, and a background-free inline
// compaction reclaims space from overwritten and removed keys as the store
// is used.
package ignite

import (
	"github.com/iamNilotpal/ignite/internal/engine"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/iamNilotpal/ignite/pkg/options"
)

// DB is the primary entry point for interacting with an Ignite store. Set,
// Remove, and UpdateIf may be called concurrently on a single shared DB
// value; they serialize on the store's writer mutex. Get and UpdateIf also
// read through the handle's own descriptor cache, which is not
// synchronized, so a DB value must not be used for reads from more than one
// goroutine. Each goroutine that reads must call Clone and keep the result
// to itself.
type DB struct {
	engine *engine.Engine
}

// Open creates the data directory if absent, replays its segments to
// rebuild the in-memory index, and returns a DB ready to serve reads and
// writes.
func Open(opts ...options.OptionFunc) (*DB, error) {
	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	log := logger.New("ignite")

	eng, err := engine.New(&resolved, log, resolved.Registry)
	if err != nil {
		return nil, err
	}

	return &DB{engine: eng}, nil
}

// Set stores value under key, overwriting any existing value. The write is
// appended to the current segment and the in-memory index is updated before
// Set returns.
func (db *DB) Set(key, value []byte) error {
	return db.engine.Set(key, value)
}

// Get retrieves the current value stored under key. The second return value
// reports whether key was present.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	return db.engine.Get(key)
}

// Remove deletes key from the store by appending a tombstone record. It
// returns ErrKeyNotFound if key is not currently present.
func (db *DB) Remove(key []byte) error {
	return db.engine.Remove(key)
}

// UpdateIf atomically replaces the value stored under targetKey, but only
// if predicate holds for the value currently stored under predicateKey. It
// returns ErrKeyNotFound if either key is absent, or ErrPredicateNotSatisfied
// if predicate returns false. updateFn is invoked with the target's current
// value and should mutate it in place to produce the new value.
//
// Pass a nil predicateKey and predicate to update targetKey unconditionally.
func (db *DB) UpdateIf(
	targetKey []byte,
	updateFn func(*[]byte),
	predicateKey []byte,
	predicate func([]byte) bool,
) error {
	return db.engine.UpdateIf(targetKey, updateFn, predicateKey, predicate)
}

// Clone returns a new DB handle sharing the same underlying index, writer,
// and on-disk segments, but with its own independent read-side file
// descriptor cache. Clones are intended to be handed to separate goroutines
// that each want to read without contending on a shared descriptor cache.
func (db *DB) Clone() *DB {
	return &DB{engine: db.engine.Clone()}
}

// Close releases this handle's open file descriptors. Once every clone of a
// DB has been closed, the underlying writer is flushed and closed as well.
func (db *DB) Close() error {
	return db.engine.Close()
}
