// Package engine coordinates the index, writer, and reader subsystems
// behind the public facade. It owns the shared mutable state the rest of
// the store's design notes call out (the index and the safe point) and
// hands each cloned handle its own reader.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/metrics"
	"github.com/iamNilotpal/ignite/internal/reader"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/writer"
	igniteerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/filesys"
	"github.com/iamNilotpal/ignite/pkg/options"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// shared holds the state every clone of an Engine holds a reference to: the
// index, the safe point, the single writer, and the mutex serializing every
// mutating operation including inline compaction.
type shared struct {
	dir     string
	log     *zap.SugaredLogger
	metrics *metrics.Metrics

	index     *index.Index
	safePoint *atomic.Uint64

	mu     sync.Mutex
	writer *writer.Writer

	closed atomic.Bool
}

// Engine is the coordinator behind one store handle. Each Clone shares the
// same *shared but owns an independent *reader.Reader, matching the design
// notes' guidance that the writer never holds a back-reference to the
// facade and that readers are cheap, cloneable values.
type Engine struct {
	shared *shared
	reader *reader.Reader
}

// New opens (creating if absent) the data directory, replays its segments
// to rebuild the index, and returns an Engine ready to serve operations.
func New(opts *options.Options, log *zap.SugaredLogger, reg prometheus.Registerer) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if err := filesys.CreateDir(opts.DataDir, 0755, true); err != nil {
		return nil, igniteerrors.ClassifyDirectoryCreationError(err, opts.DataDir)
	}

	idx := index.New()
	safePoint := &atomic.Uint64{}
	m := metrics.New(reg)

	w, err := writer.Open(opts.DataDir, idx, safePoint, opts.CompactionThreshold, opts.Sync, log, m)
	if err != nil {
		return nil, err
	}

	sh := &shared{
		dir:       opts.DataDir,
		log:       log,
		metrics:   m,
		index:     idx,
		safePoint: safePoint,
		writer:    w,
	}

	log.Infow("engine opened", "data_dir", opts.DataDir, "keys", idx.Len())

	return &Engine{shared: sh, reader: reader.New(opts.DataDir, safePoint)}, nil
}

// Get returns the current value of key, if present.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	e.shared.metrics.RecordGet()

	pos, ok := e.shared.index.Get(string(key))
	if !ok {
		return nil, false, nil
	}

	rec, err := e.reader.ReadAt(pos)
	if err != nil {
		return nil, false, err
	}
	if rec.Kind != record.KindSet {
		return nil, false, igniteerrors.NewIndexCorruptionError(string(key), "Get", nil)
	}
	return rec.Value, true, nil
}

// Set appends a Set record for key and updates the index, serialized by
// the shared writer mutex.
func (e *Engine) Set(key, value []byte) error {
	e.shared.mu.Lock()
	defer e.shared.mu.Unlock()

	if err := e.shared.writer.Set(key, value); err != nil {
		return err
	}
	e.shared.metrics.RecordSet()
	return nil
}

// Remove appends a Remove record for key, failing with ErrKeyNotFound if
// key is already absent.
func (e *Engine) Remove(key []byte) error {
	e.shared.mu.Lock()
	defer e.shared.mu.Unlock()

	if err := e.shared.writer.Remove(key); err != nil {
		return err
	}
	e.shared.metrics.RecordRemove()
	return nil
}

// UpdateIf performs the atomic conditional read-modify-write described in
// SPEC_FULL.md §6.8, holding the writer mutex across every step so no other
// mutation can interleave.
func (e *Engine) UpdateIf(
	targetKey []byte,
	updateFn func(*[]byte),
	predicateKey []byte,
	predicate func([]byte) bool,
) error {
	e.shared.mu.Lock()
	defer e.shared.mu.Unlock()

	targetPos, ok := e.shared.index.Get(string(targetKey))
	if !ok {
		return igniteerrors.ErrKeyNotFound
	}

	targetRec, err := e.reader.ReadAt(targetPos)
	if err != nil {
		return err
	}
	if targetRec.Kind != record.KindSet {
		return igniteerrors.NewIndexCorruptionError(string(targetKey), "UpdateIf", nil)
	}

	if predicateKey != nil && predicate != nil {
		predPos, ok := e.shared.index.Get(string(predicateKey))
		if !ok {
			return igniteerrors.ErrKeyNotFound
		}
		predRec, err := e.reader.ReadAt(predPos)
		if err != nil {
			return err
		}
		if predRec.Kind != record.KindSet {
			return igniteerrors.NewIndexCorruptionError(string(predicateKey), "UpdateIf", nil)
		}
		if !predicate(predRec.Value) {
			return igniteerrors.ErrPredicateNotSatisfied
		}
	}

	value := targetRec.Value
	updateFn(&value)

	return e.shared.writer.Set(targetKey, value)
}

// Clone returns a new Engine sharing the index, safe point, and writer, but
// owning its own reader descriptor cache, safe to use from another
// goroutine independently of this one.
func (e *Engine) Clone() *Engine {
	return &Engine{shared: e.shared, reader: e.reader.Clone()}
}

// Close releases this handle's reader descriptors. The first call across
// any clone of the engine also closes the shared writer.
func (e *Engine) Close() error {
	readerErr := e.reader.Close()

	if e.shared.closed.CompareAndSwap(false, true) {
		e.shared.mu.Lock()
		writerErr := e.shared.writer.Close()
		e.shared.mu.Unlock()
		if writerErr != nil {
			return writerErr
		}
	}

	return readerErr
}
