package batchindex

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quadgate/fluxor-blob/internal/arena"
)

func writeInput(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun_Example(t *testing.T) {
	in := writeInput(t, "2\nfoo 10 100\nbar 20 200\n3\nfoo\nbaz\nbar\n")

	var out bytes.Buffer
	stats, err := Run(in, &out, WithArenaBacking(arena.BackingHeap))
	require.NoError(t, err)

	require.Equal(t, "10 100\nNOTFOUND\n20 200\n", out.String())
	require.Equal(t, Stats{Entries: 2, Queries: 3, Found: 2}, stats)
}

func TestRun_TabSeparatedFields(t *testing.T) {
	in := writeInput(t, "1\nkey\t5\t50\n1\nkey\n")

	var out bytes.Buffer
	_, err := Run(in, &out)
	require.NoError(t, err)
	require.Equal(t, "5 50\n", out.String())
}

func TestRun_EmptyInput(t *testing.T) {
	in := writeInput(t, "")
	var out bytes.Buffer
	_, err := Run(in, &out)
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Zero(t, out.Len())
}

func TestRun_NotAFile(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(t.TempDir(), &out)
	require.Error(t, err)
	require.Zero(t, out.Len())
}

func TestRun_MalformedInput(t *testing.T) {
	cases := map[string]string{
		"non-numeric count": "abc\n",
		"truncated record":  "2\nfoo 10 100\n",
		"non-numeric size":  "1\nfoo ten 100\n1\nfoo\n",
	}
	for name, contents := range cases {
		in := writeInput(t, contents)
		var out bytes.Buffer
		_, err := Run(in, &out)
		require.ErrorIs(t, err, ErrBadInput, "case %q", name)
	}
}

func buildLargeInput(n, q int) (string, string) {
	var in strings.Builder
	fmt.Fprintf(&in, "%d\n", n)
	for i := range n {
		fmt.Fprintf(&in, "key-%06d %d %d\n", i, i+1, i*13)
	}

	var want strings.Builder
	fmt.Fprintf(&in, "%d\n", q)
	for i := range q {
		// Interleave hits and misses; misses use ids past n.
		if i%3 == 2 {
			fmt.Fprintf(&in, "key-%06d\n", n+i)
			want.WriteString("NOTFOUND\n")
		} else {
			id := (i * 7) % n
			fmt.Fprintf(&in, "key-%06d\n", id)
			fmt.Fprintf(&want, "%d %d\n", id+1, id*13)
		}
	}
	return in.String(), want.String()
}

func TestRun_LargeBatch(t *testing.T) {
	input, want := buildLargeInput(20000, 5000)
	in := writeInput(t, input)

	var out bytes.Buffer
	stats, err := Run(in, &out)
	require.NoError(t, err)
	require.Equal(t, want, out.String())
	require.Equal(t, 20000, stats.Entries)
	require.Equal(t, 5000, stats.Queries)
}

func TestRun_ParallelQueriesMatchSequential(t *testing.T) {
	input, want := buildLargeInput(10000, 8000)
	in := writeInput(t, input)

	var seq, par bytes.Buffer
	seqStats, err := Run(in, &seq)
	require.NoError(t, err)

	parStats, err := Run(in, &par, WithParallelQueries(true), WithWorkers(4))
	require.NoError(t, err)

	require.Equal(t, want, seq.String())
	require.Equal(t, seq.String(), par.String())
	require.Equal(t, seqStats, parStats)
}

func TestRun_AsyncWriterPreservesOrder(t *testing.T) {
	input, want := buildLargeInput(5000, 20000)
	in := writeInput(t, input)

	var out bytes.Buffer
	_, err := Run(in, &out, WithAsyncWriter(true))
	require.NoError(t, err)
	require.Equal(t, want, out.String())
}

func TestRun_DuplicateKeysFirstWins(t *testing.T) {
	in := writeInput(t, "2\ndup 1 11\ndup 2 22\n1\ndup\n")

	var out bytes.Buffer
	_, err := Run(in, &out)
	require.NoError(t, err)
	require.Equal(t, "1 11\n", out.String())
}

func TestRun_ZeroQueries(t *testing.T) {
	in := writeInput(t, "1\nfoo 1 2\n0\n")

	var out bytes.Buffer
	stats, err := Run(in, &out)
	require.NoError(t, err)
	require.Zero(t, out.Len())
	require.Equal(t, Stats{Entries: 1, Queries: 0, Found: 0}, stats)
}

func TestRun_PrefetchDistanceZero(t *testing.T) {
	in := writeInput(t, "1\nfoo 7 70\n2\nfoo\nfoo\n")

	var out bytes.Buffer
	_, err := Run(in, &out, WithPrefetchDistance(0))
	require.NoError(t, err)
	require.Equal(t, "7 70\n7 70\n", out.String())
}
