package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexSetGet(t *testing.T) {
	ix := New()

	old, had := ix.Set("foo", Position{SegmentID: 1, Offset: 0, Length: 10})
	require.False(t, had)
	require.Zero(t, old)

	pos, ok := ix.Get("foo")
	require.True(t, ok)
	require.Equal(t, Position{SegmentID: 1, Offset: 0, Length: 10}, pos)
}

func TestIndexSetOverwriteReturnsOld(t *testing.T) {
	ix := New()
	ix.Set("foo", Position{SegmentID: 1, Offset: 0, Length: 10})

	old, had := ix.Set("foo", Position{SegmentID: 1, Offset: 10, Length: 20})
	require.True(t, had)
	require.Equal(t, Position{SegmentID: 1, Offset: 0, Length: 10}, old)
}

func TestIndexDelete(t *testing.T) {
	ix := New()
	ix.Set("foo", Position{SegmentID: 1, Offset: 0, Length: 10})

	old, had := ix.Delete("foo")
	require.True(t, had)
	require.Equal(t, Position{SegmentID: 1, Offset: 0, Length: 10}, old)

	_, ok := ix.Get("foo")
	require.False(t, ok)

	_, had = ix.Delete("foo")
	require.False(t, had)
}

func TestIndexAscendOrdersByKey(t *testing.T) {
	ix := New()
	ix.Set("banana", Position{SegmentID: 1})
	ix.Set("apple", Position{SegmentID: 1})
	ix.Set("cherry", Position{SegmentID: 1})

	var keys []string
	ix.Ascend(func(key string, pos Position) {
		keys = append(keys, key)
	})

	require.Equal(t, []string{"apple", "banana", "cherry"}, keys)
}

func TestIndexReplaceAll(t *testing.T) {
	ix := New()
	ix.Set("foo", Position{SegmentID: 1, Offset: 0, Length: 10})
	ix.Set("bar", Position{SegmentID: 1, Offset: 10, Length: 10})

	ix.ReplaceAll(map[string]Position{
		"foo": {SegmentID: 2, Offset: 0, Length: 10},
		"bar": {SegmentID: 2, Offset: 10, Length: 10},
	})

	pos, ok := ix.Get("foo")
	require.True(t, ok)
	require.EqualValues(t, 2, pos.SegmentID)

	require.Equal(t, 2, ix.Len())
}

// TestIndexConcurrentReadsDuringWrites exercises the copy-on-write snapshot
// path under concurrent load: readers must never observe a torn snapshot.
func TestIndexConcurrentReadsDuringWrites(t *testing.T) {
	ix := New()
	ix.Set("k", Position{SegmentID: 1, Offset: 0, Length: 1})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, _ = ix.Get("k")
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		ix.Set("k", Position{SegmentID: 1, Offset: int64(i), Length: 1})
	}
	close(stop)
	wg.Wait()
}
