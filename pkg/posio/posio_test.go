package posio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTempFile(t *testing.T) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "segment.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriterTracksPosition(t *testing.T) {
	f := openTempFile(t)
	w, err := NewWriter(f)
	require.NoError(t, err)

	require.EqualValues(t, 0, w.Pos())

	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.EqualValues(t, 5, w.Pos())

	require.NoError(t, w.Flush())
}

func TestWriterResumesAtEndOfFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segment.log")

	f1, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	require.NoError(t, err)
	w1, err := NewWriter(f1)
	require.NoError(t, err)
	_, err = w1.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w1.Flush())
	require.NoError(t, f1.Close())

	f2, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	require.NoError(t, err)
	defer f2.Close()
	w2, err := NewWriter(f2)
	require.NoError(t, err)
	require.EqualValues(t, 5, w2.Pos())
}

func TestReaderReadsAndTracksPosition(t *testing.T) {
	f := openTempFile(t)
	_, err := f.Write([]byte("hello world"))
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	r, err := NewReader(f)
	require.NoError(t, err)
	require.EqualValues(t, 0, r.Pos())

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
	require.EqualValues(t, 5, r.Pos())
}

func TestReaderSeekToResetsBuffering(t *testing.T) {
	f := openTempFile(t)
	_, err := f.Write([]byte("hello world"))
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	r, err := NewReader(f)
	require.NoError(t, err)

	require.NoError(t, r.SeekTo(6))
	require.EqualValues(t, 6, r.Pos())

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))
}
