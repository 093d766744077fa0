package segment

import (
	"os"
	"testing"

	"github.com/iamNilotpal/ignite/internal/index"
	"github.com/iamNilotpal/ignite/internal/record"
	"github.com/iamNilotpal/ignite/pkg/posio"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	require.Equal(t, "/data/7.log", Path("/data", 7))
}

func TestListIgnoresNonConformingNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir, 2), nil, 0644))
	require.NoError(t, os.WriteFile(Path(dir, 1), nil, 0644))
	require.NoError(t, os.WriteFile(Path(dir, 10), nil, 0644))
	require.NoError(t, os.WriteFile(dir+"/stray.txt", nil, 0644))
	require.NoError(t, os.WriteFile(dir+"/notanumber.log", nil, 0644))

	ids, err := List(dir)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 10}, ids)
}

func writeSegment(t *testing.T, dir string, id uint64, recs ...record.Record) {
	t.Helper()
	f, err := Create(dir, id)
	require.NoError(t, err)
	w, err := posio.NewWriter(f)
	require.NoError(t, err)
	for _, r := range recs {
		_, err := record.Encode(w, r)
		require.NoError(t, err)
	}
	require.NoError(t, w.Flush())
	require.NoError(t, f.Close())
}

func TestReplayAppliesSetsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	writeSegment(t, dir, 1,
		record.NewSet([]byte("a"), []byte("1")),
		record.NewSet([]byte("b"), []byte("2")),
		record.NewRemove([]byte("a")),
	)

	f, err := OpenForRead(dir, 1)
	require.NoError(t, err)
	defer f.Close()

	idx := index.New()
	_, err = Replay(1, f, idx)
	require.NoError(t, err)

	_, ok := idx.Get("a")
	require.False(t, ok)

	pos, ok := idx.Get("b")
	require.True(t, ok)
	require.EqualValues(t, 1, pos.SegmentID)
}

func TestReplayCountsUncompactedBytes(t *testing.T) {
	dir := t.TempDir()
	writeSegment(t, dir, 1,
		record.NewSet([]byte("a"), []byte("1")),
		record.NewSet([]byte("a"), []byte("22")),
	)

	f, err := OpenForRead(dir, 1)
	require.NoError(t, err)
	defer f.Close()

	idx := index.New()
	uncompacted, err := Replay(1, f, idx)
	require.NoError(t, err)
	require.Greater(t, uncompacted, uint64(0))
}

func TestReplayFailsOnTruncatedTrailingRecord(t *testing.T) {
	dir := t.TempDir()
	writeSegment(t, dir, 1, record.NewSet([]byte("a"), []byte("1")))

	path := Path(dir, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-1], 0644))

	f, err := OpenForRead(dir, 1)
	require.NoError(t, err)
	defer f.Close()

	idx := index.New()
	_, err = Replay(1, f, idx)
	require.ErrorIs(t, err, record.ErrTruncated)
}
