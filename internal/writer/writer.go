// Package writer implements the single-owner append path: Set, Remove, and
// the inline compaction they can trigger. A Writer is only ever touched
// while the facade's mutex is held; it performs no locking of its own,
// mirroring the source's LogWriter/GrausDbWriter, whose methods assume the
// caller already holds the MutexGuard.
package writer

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/metrics"
	"github.com/iamNilotpal/ignite/internal/reader"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	igniteerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/filesys"
	"github.com/iamNilotpal/ignite/pkg/posio"
	"go.uber.org/zap"
)

// Writer owns the current append target and drives inline compaction.
type Writer struct {
	dir         string
	currentID   uint64
	cur         *posio.Writer
	curFile     *os.File
	idx         *index.Index
	rdr         *reader.Reader // private; used only during compaction
	safePoint   *atomic.Uint64
	uncompacted uint64
	threshold   uint64
	sync        bool
	log         *zap.SugaredLogger
	metrics     *metrics.Metrics
}

// Open replays every existing segment into idx (rebuilding the index and
// the starting uncompacted count), then opens a fresh segment as the
// append target.
func Open(
	dir string,
	idx *index.Index,
	safePoint *atomic.Uint64,
	threshold uint64,
	sync bool,
	log *zap.SugaredLogger,
	m *metrics.Metrics,
) (*Writer, error) {
	ids, err := segment.List(dir)
	if err != nil {
		return nil, igniteerrors.NewStorageError(err, igniteerrors.ErrorCodeIO, "failed to enumerate segments").WithPath(dir)
	}

	var uncompacted uint64
	for _, id := range ids {
		f, err := segment.OpenForRead(dir, id)
		if err != nil {
			return nil, igniteerrors.ClassifyFileOpenError(err, segment.Path(dir, id))
		}
		n, err := segment.Replay(id, f, idx)
		f.Close()
		if err != nil {
			return nil, igniteerrors.NewStorageError(err, igniteerrors.ErrorCodeSegmentCorrupted, "failed to replay segment").
				WithSegmentID(id).
				WithPath(segment.Path(dir, id))
		}
		uncompacted += n
	}

	newID := uint64(1)
	if len(ids) > 0 {
		newID = ids[len(ids)-1] + 1
	}

	curFile, cur, err := openWriter(dir, newID)
	if err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		log.Debugw("replayed existing segments", "count", len(ids), "uncompacted_bytes", uncompacted)
	}
	log.Infow("opened new append segment", "segment_id", newID)

	return &Writer{
		dir:         dir,
		currentID:   newID,
		cur:         cur,
		curFile:     curFile,
		idx:         idx,
		rdr:         reader.New(dir, safePoint),
		safePoint:   safePoint,
		uncompacted: uncompacted,
		threshold:   threshold,
		sync:        sync,
		log:         log,
		metrics:     m,
	}, nil
}

func openWriter(dir string, id uint64) (*os.File, *posio.Writer, error) {
	f, err := segment.Create(dir, id)
	if err != nil {
		return nil, nil, igniteerrors.ClassifyFileOpenError(err, segment.Path(dir, id))
	}
	pw, err := posio.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, nil, igniteerrors.NewStorageError(err, igniteerrors.ErrorCodeIO, "failed to position writer").
			WithSegmentID(id).WithPath(segment.Path(dir, id))
	}
	return f, pw, nil
}

func (w *Writer) flush() error {
	if w.sync {
		return w.cur.Sync()
	}
	return w.cur.Flush()
}

// Set appends a Set record, updates the index, and runs inline compaction
// if the uncompacted watermark is now exceeded.
func (w *Writer) Set(key, value []byte) error {
	start := w.cur.Pos()
	if _, err := record.Encode(w.cur, record.NewSet(key, value)); err != nil {
		return igniteerrors.NewStorageError(err, igniteerrors.ErrorCodeIO, "failed to append set record").
			WithSegmentID(w.currentID).WithOffset(start).WithPath(segment.Path(w.dir, w.currentID))
	}
	if err := w.flush(); err != nil {
		return igniteerrors.ClassifySyncError(err, segment.Path(w.dir, w.currentID), start)
	}

	length := uint32(w.cur.Pos() - start)
	old, had := w.idx.Set(string(key), index.Position{SegmentID: w.currentID, Offset: start, Length: length})
	if had {
		w.uncompacted += uint64(old.Length)
	}

	if w.uncompacted > w.threshold {
		return w.compact()
	}
	return nil
}

// Remove appends a Remove record and clears the index entry, failing with
// ErrKeyNotFound if the key was already absent.
func (w *Writer) Remove(key []byte) error {
	k := string(key)
	old, had := w.idx.Get(k)
	if !had {
		return igniteerrors.ErrKeyNotFound
	}

	start := w.cur.Pos()
	if _, err := record.Encode(w.cur, record.NewRemove(key)); err != nil {
		return igniteerrors.NewStorageError(err, igniteerrors.ErrorCodeIO, "failed to append remove record").
			WithSegmentID(w.currentID).WithOffset(start).WithPath(segment.Path(w.dir, w.currentID))
	}
	if err := w.flush(); err != nil {
		return igniteerrors.ClassifySyncError(err, segment.Path(w.dir, w.currentID), start)
	}

	length := uint64(w.cur.Pos() - start)
	w.idx.Delete(k)
	w.uncompacted += uint64(old.Length)
	w.uncompacted += length

	if w.uncompacted >= w.threshold {
		return w.compact()
	}
	return nil
}

// Uncompacted returns the writer's current uncompacted-bytes count, mostly
// useful for tests asserting compaction triggers at the right watermark.
func (w *Writer) Uncompacted() uint64 { return w.uncompacted }

// CurrentSegmentID returns the id of the segment currently being appended to.
func (w *Writer) CurrentSegmentID() uint64 { return w.currentID }

// compact rewrites every live record into a fresh segment and retires all
// prior segments. See SPEC_FULL.md §6.5.3 for the ten numbered steps this
// follows exactly.
func (w *Writer) compact() error {
	start := time.Now()
	reclaimed := w.uncompacted

	compactedID := w.currentID + 1
	newID := w.currentID + 2
	w.currentID = newID

	if err := w.cur.Flush(); err != nil {
		return igniteerrors.ClassifySyncError(err, segment.Path(w.dir, compactedID-1), w.cur.Pos())
	}
	w.curFile.Close()

	curFile, cur, err := openWriter(w.dir, newID)
	if err != nil {
		return err
	}
	w.curFile, w.cur = curFile, cur

	compactedFile, compactedWriter, err := openWriter(w.dir, compactedID)
	if err != nil {
		return err
	}

	staged := make(map[string]index.Position, w.idx.Len())
	var copyErr error
	w.idx.Ascend(func(key string, pos index.Position) {
		if copyErr != nil {
			return
		}
		newStart := compactedWriter.Pos()
		if err := w.copyRecord(compactedWriter, pos); err != nil {
			copyErr = err
			return
		}
		staged[key] = index.Position{SegmentID: compactedID, Offset: newStart, Length: pos.Length}
	})
	if copyErr != nil {
		compactedFile.Close()
		return copyErr
	}

	if err := compactedWriter.Flush(); err != nil {
		compactedFile.Close()
		return igniteerrors.ClassifySyncError(err, segment.Path(w.dir, compactedID), compactedWriter.Pos())
	}
	if w.sync {
		if err := compactedFile.Sync(); err != nil {
			compactedFile.Close()
			return igniteerrors.ClassifySyncError(err, segment.Path(w.dir, compactedID), compactedWriter.Pos())
		}
	}
	compactedFile.Close()

	// Updating the index only after the compacted segment is durable is
	// essential for reader safety: no reader can observe a position into a
	// segment that isn't fully written yet.
	w.idx.ReplaceAll(staged)

	w.safePoint.Store(compactedID)
	w.rdr.CloseStaleReaders()

	w.retireSegmentsBefore(compactedID)
	w.uncompacted = 0

	w.metrics.RecordCompaction(time.Since(start).Seconds(), reclaimed)

	return nil
}

// copyRecord streams exactly pos.Length bytes, starting at pos.Offset in
// pos.SegmentID, into dst, through the writer's private reader so repeated
// compactions reuse cached descriptors rather than reopening every segment.
func (w *Writer) copyRecord(dst *posio.Writer, pos index.Position) error {
	if _, err := w.rdr.CopyAt(dst, pos); err != nil {
		return igniteerrors.NewStorageError(err, igniteerrors.ErrorCodeSegmentCorrupted, "failed to copy live record during compaction").
			WithSegmentID(pos.SegmentID).WithOffset(pos.Offset)
	}
	return nil
}

func (w *Writer) retireSegmentsBefore(compactedID uint64) {
	ids, err := segment.List(w.dir)
	if err != nil {
		w.log.Errorw("failed to enumerate segments for retirement", "error", err)
		return
	}
	for _, id := range ids {
		if id >= compactedID {
			continue
		}
		path := segment.Path(w.dir, id)
		if ok, err := filesys.Exists(path); err != nil || !ok {
			if err != nil {
				w.log.Errorw("failed to stat retired segment", "path", path, "error", err)
			}
			continue
		}
		if err := filesys.DeleteFile(path); err != nil {
			// Deletion failures (e.g. an open handle on Windows) are
			// logged and ignored: segment ids are never reused, so the
			// next compaction's retirement pass will retry.
			w.log.Errorw("failed to delete retired segment", "path", path, "error", err)
		}
	}
}

// Close flushes and closes the current segment file.
func (w *Writer) Close() error {
	if err := w.cur.Flush(); err != nil {
		return fmt.Errorf("flush current segment: %w", err)
	}
	if err := w.curFile.Close(); err != nil {
		return err
	}
	return w.rdr.Close()
}
