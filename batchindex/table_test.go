package batchindex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable_InsertLookup(t *testing.T) {
	tbl := NewTable(3)

	keys := [][]byte{[]byte("foo"), []byte("bar"), []byte("a longer key than eight bytes")}
	for i, k := range keys {
		tbl.Insert(k, hashKey(k), uint64(i*10), uint64(i*100))
	}

	for i, k := range keys {
		size, offset, ok := tbl.Lookup(k, hashKey(k))
		require.True(t, ok)
		require.Equal(t, uint64(i*10), size)
		require.Equal(t, uint64(i*100), offset)
	}

	_, _, ok := tbl.Lookup([]byte("absent"), hashKey([]byte("absent")))
	require.False(t, ok)
}

func TestTable_CapacityAndLoadFactor(t *testing.T) {
	cases := map[int]int{
		0:    2,
		1:    2,
		2:    4,
		3:    8,
		4:    8,
		5:    16,
		1000: 2048,
	}
	for n, want := range cases {
		tbl := NewTable(n)
		require.Equal(t, want, tbl.Cap(), "n=%d", n)
		if n > 0 {
			require.Less(t, float64(n)/float64(tbl.Cap()), 0.51, "n=%d", n)
		}
	}
}

func TestTable_DuplicateFirstWins(t *testing.T) {
	tbl := NewTable(4)
	key := []byte("dup")
	h := hashKey(key)

	tbl.Insert(key, h, 1, 11)
	tbl.Insert(key, h, 2, 22)

	size, offset, ok := tbl.Lookup(key, h)
	require.True(t, ok)
	require.Equal(t, uint64(1), size)
	require.Equal(t, uint64(11), offset)
	require.Equal(t, 2, tbl.Len())
}

func TestTable_ManyKeysWithCollisions(t *testing.T) {
	const n = 5000
	tbl := NewTable(n)

	for i := range n {
		k := fmt.Appendf(nil, "entry-%05d", i)
		tbl.Insert(k, hashKey(k), uint64(i), uint64(i)*7)
	}
	require.Equal(t, n, tbl.Len())

	for i := range n {
		k := fmt.Appendf(nil, "entry-%05d", i)
		size, offset, ok := tbl.Lookup(k, hashKey(k))
		require.True(t, ok, "key %s", k)
		require.Equal(t, uint64(i), size)
		require.Equal(t, uint64(i)*7, offset)
	}

	// Same-length probes that share slots with residents must still miss.
	for i := range 100 {
		k := fmt.Appendf(nil, "absnt-%05d", i)
		_, _, ok := tbl.Lookup(k, hashKey(k))
		require.False(t, ok)
	}
}

func TestTable_Prefetch(t *testing.T) {
	tbl := NewTable(8)
	k := []byte("k")
	tbl.Insert(k, hashKey(k), 1, 2)

	// Prefetch is a hint; it must be safe for any hash, hit or miss.
	tbl.Prefetch(hashKey(k))
	tbl.Prefetch(hashKey([]byte("absent")))
	tbl.Prefetch(0)

	_, _, ok := tbl.Lookup(k, hashKey(k))
	require.True(t, ok)
}
