package arena

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArena_AllocBytes(t *testing.T) {
	a, err := New(1024, WithBacking(BackingHeap))
	require.NoError(t, err)
	defer a.Close()

	src := []byte("hello arena")
	dst, err := a.AllocBytes(src)
	require.NoError(t, err)
	require.Equal(t, src, dst)

	// The copy is owned by the arena, not aliased to src.
	src[0] = 'X'
	require.Equal(t, byte('h'), dst[0])

	stats := a.Stats()
	require.Equal(t, uint64(1024), stats.Capacity)
	require.Equal(t, uint64(len(src)+1), stats.BytesUsed)
	require.Equal(t, uint64(1), stats.Allocs)
}

func TestArena_ZeroTerminator(t *testing.T) {
	a, err := New(64, WithBacking(BackingHeap))
	require.NoError(t, err)
	defer a.Close()

	dst, err := a.AllocBytes([]byte("abc"))
	require.NoError(t, err)
	// The byte after the slice is the terminator.
	require.Equal(t, byte(0), dst[:4:4][3])
}

func TestArena_Full(t *testing.T) {
	a, err := New(16, WithBacking(BackingHeap))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.AllocBytes(make([]byte, 10))
	require.NoError(t, err)

	_, err = a.AllocBytes(make([]byte, 10))
	require.ErrorIs(t, err, ErrArenaFull)

	// Small allocations may still fail once the bump passed capacity;
	// the arena must stay consistent either way.
	_, err = a.AllocBytes([]byte("x"))
	require.ErrorIs(t, err, ErrArenaFull)
}

func TestArena_ConcurrentAlloc(t *testing.T) {
	const workers = 8
	const perWorker = 500

	a, err := New(workers*perWorker*16, WithBacking(BackingHeap))
	require.NoError(t, err)
	defer a.Close()

	var wg sync.WaitGroup
	results := make([][][]byte, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				b, err := a.AllocBytes(fmt.Appendf(nil, "w%d-%d", w, i))
				if err == nil {
					results[w] = append(results[w], b)
				}
			}
		}()
	}
	wg.Wait()

	// Every allocation landed and none overlap: contents survive intact.
	for w := range workers {
		require.Len(t, results[w], perWorker)
		for i, b := range results[w] {
			require.Equal(t, fmt.Sprintf("w%d-%d", w, i), string(b))
		}
	}
	require.Equal(t, uint64(workers*perWorker), a.Stats().Allocs)
}

func TestArena_MmapBackings(t *testing.T) {
	for _, backing := range []Backing{BackingAnon, BackingHuge} {
		a, err := New(1<<20, WithBacking(backing))
		require.NoError(t, err)

		dst, err := a.AllocBytes([]byte("mapped"))
		require.NoError(t, err)
		require.Equal(t, "mapped", string(dst))
		require.NoError(t, a.Close())
		require.NoError(t, a.Close()) // idempotent
	}
}
