// Package reader implements the per-handle, lock-free read path: a private
// map of open segment file descriptors plus logic to prune descriptors for
// segments compaction has made obsolete. Grounded on the source's
// GrausDbReader / LogReader.
package reader

import (
	"io"
	"sort"
	"sync/atomic"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/internal/segment"
	"github.com/iamNilotpal/ignite/pkg/posio"
)

// Reader owns an independent, lazily-populated set of open segment readers.
// It is never shared across goroutines; each clone of the store facade owns
// its own Reader.
type Reader struct {
	dir       string
	safePoint *atomic.Uint64
	files     map[uint64]*posio.Reader
	order     []uint64 // ascending ids currently open, kept sorted
}

// New returns a reader with an empty descriptor map, sharing dir and the
// safePoint counter with the rest of the store.
func New(dir string, safePoint *atomic.Uint64) *Reader {
	return &Reader{dir: dir, safePoint: safePoint, files: make(map[uint64]*posio.Reader)}
}

// ReadAt decodes exactly the record described by pos, opening and caching a
// descriptor for its segment if this reader hasn't seen it yet.
func (r *Reader) ReadAt(pos index.Position) (record.Record, error) {
	pr, err := r.descriptorFor(pos)
	if err != nil {
		return record.Record{}, err
	}
	lr := io.LimitReader(pr, int64(pos.Length))
	return record.Decode(lr)
}

// CopyAt streams exactly pos.Length bytes, starting at pos.Offset in
// pos.SegmentID, into dst, without decoding them. Used by compaction to
// rewrite a live record into the new segment byte-for-byte.
func (r *Reader) CopyAt(dst io.Writer, pos index.Position) (int64, error) {
	pr, err := r.descriptorFor(pos)
	if err != nil {
		return 0, err
	}
	return io.CopyN(dst, pr, int64(pos.Length))
}

// descriptorFor returns a positioned reader on pos's segment, seeked to
// pos.Offset, opening and caching the underlying file if this reader
// hasn't seen that segment yet.
func (r *Reader) descriptorFor(pos index.Position) (*posio.Reader, error) {
	r.CloseStaleReaders()

	pr, ok := r.files[pos.SegmentID]
	if !ok {
		f, err := segment.OpenForRead(r.dir, pos.SegmentID)
		if err != nil {
			return nil, err
		}
		pr, err = posio.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.files[pos.SegmentID] = pr
		r.order = insertSorted(r.order, pos.SegmentID)
	}

	if err := pr.SeekTo(pos.Offset); err != nil {
		return nil, err
	}
	return pr, nil
}

// CloseStaleReaders drops descriptors for segments below the current safe
// point, walking ascending ids and stopping at the first id that is still
// required. Exported so the writer can call it on its private reader right
// after publishing a new safe point at the end of compaction.
func (r *Reader) CloseStaleReaders() {
	sp := r.safePoint.Load()
	i := 0
	for i < len(r.order) {
		id := r.order[i]
		if id >= sp {
			break
		}
		if pr, ok := r.files[id]; ok {
			pr.Close()
			delete(r.files, id)
		}
		i++
	}
	r.order = r.order[i:]
}

// Clone returns a fresh reader over the same directory and safe point, with
// an empty descriptor map: clones never share open files across goroutines.
func (r *Reader) Clone() *Reader {
	return New(r.dir, r.safePoint)
}

// Close releases every open descriptor this reader holds.
func (r *Reader) Close() error {
	var first error
	for _, pr := range r.files {
		if err := pr.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.files = make(map[uint64]*posio.Reader)
	r.order = nil
	return first
}

func insertSorted(order []uint64, id uint64) []uint64 {
	i := sort.Search(len(order), func(i int) bool { return order[i] >= id })
	order = append(order, 0)
	copy(order[i+1:], order[i:])
	order[i] = id
	return order
}
