package writer

import (
	"sync/atomic"
	"testing"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/reader"
	"github.com/iamNilotpal/ignite/internal/segment"
	igniteerrors "github.com/iamNilotpal/ignite/pkg/errors"
	"github.com/iamNilotpal/ignite/pkg/logger"
	"github.com/stretchr/testify/require"
)

func openWriterForTest(t *testing.T, dir string, threshold uint64) (*Writer, *index.Index, *atomic.Uint64) {
	t.Helper()
	idx := index.New()
	safePoint := &atomic.Uint64{}
	w, err := Open(dir, idx, safePoint, threshold, false, logger.Nop(), nil)
	require.NoError(t, err)
	return w, idx, safePoint
}

func TestWriterSetThenGetViaIndex(t *testing.T) {
	dir := t.TempDir()
	w, idx, safePoint := openWriterForTest(t, dir, 1<<20)
	defer w.Close()

	require.NoError(t, w.Set([]byte("foo"), []byte("bar")))

	pos, ok := idx.Get("foo")
	require.True(t, ok)

	rdr := reader.New(dir, safePoint)
	defer rdr.Close()
	rec, err := rdr.ReadAt(pos)
	require.NoError(t, err)
	require.Equal(t, []byte("bar"), rec.Value)
}

func TestWriterRemoveUnknownKeyFails(t *testing.T) {
	dir := t.TempDir()
	w, _, _ := openWriterForTest(t, dir, 1<<20)
	defer w.Close()

	err := w.Remove([]byte("absent"))
	require.ErrorIs(t, err, igniteerrors.ErrKeyNotFound)
}

func TestWriterRemoveDeletesFromIndex(t *testing.T) {
	dir := t.TempDir()
	w, idx, _ := openWriterForTest(t, dir, 1<<20)
	defer w.Close()

	require.NoError(t, w.Set([]byte("foo"), []byte("bar")))
	require.NoError(t, w.Remove([]byte("foo")))

	_, ok := idx.Get("foo")
	require.False(t, ok)
}

func TestWriterReopenReplaysPriorSegments(t *testing.T) {
	dir := t.TempDir()
	w, _, safePoint := openWriterForTest(t, dir, 1<<20)
	require.NoError(t, w.Set([]byte("foo"), []byte("bar")))
	require.NoError(t, w.Close())

	idx2 := index.New()
	w2, err := Open(dir, idx2, safePoint, 1<<20, false, logger.Nop(), nil)
	require.NoError(t, err)
	defer w2.Close()

	pos, ok := idx2.Get("foo")
	require.True(t, ok)
	require.EqualValues(t, 1, pos.SegmentID)
}

// TestWriterCompactionReclaimsSpace exercises the inline compaction path:
// overwriting the same key enough times to cross a tiny threshold should
// collapse every segment down to the live keys only.
func TestWriterCompactionReclaimsSpace(t *testing.T) {
	dir := t.TempDir()
	w, idx, safePoint := openWriterForTest(t, dir, 64)

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Set([]byte("foo"), []byte("xxxxxxxxxx")))
	}
	defer w.Close()

	require.Zero(t, w.Uncompacted())

	pos, ok := idx.Get("foo")
	require.True(t, ok)

	rdr := reader.New(dir, safePoint)
	defer rdr.Close()
	rec, err := rdr.ReadAt(pos)
	require.NoError(t, err)
	require.Equal(t, []byte("xxxxxxxxxx"), rec.Value)

	// Every segment below the current safe point should have been removed.
	ids, err := segment.List(dir)
	require.NoError(t, err)
	for _, id := range ids {
		require.GreaterOrEqual(t, id, safePoint.Load())
	}
}

func TestWriterCompactionPreservesMultipleKeys(t *testing.T) {
	dir := t.TempDir()
	w, idx, _ := openWriterForTest(t, dir, 64)
	defer w.Close()

	require.NoError(t, w.Set([]byte("a"), []byte("1")))
	require.NoError(t, w.Set([]byte("b"), []byte("2")))
	for i := 0; i < 50; i++ {
		require.NoError(t, w.Set([]byte("a"), []byte("xxxxxxxxxxxxxxxxxxxx")))
	}

	require.Equal(t, 2, idx.Len())
	_, ok := idx.Get("b")
	require.True(t, ok)
}
