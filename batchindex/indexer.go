package batchindex

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/quadgate/fluxor-blob/internal/arena"
	"github.com/quadgate/fluxor-blob/internal/fnv"
	"github.com/quadgate/fluxor-blob/internal/mmap"
)

// ErrEmptyInput is returned when the input file is empty.
var ErrEmptyInput = errors.New("batchindex: empty input")

const (
	// DefaultPrefetchDistance is how many iterations ahead the batched
	// lookup prefetches its probe-start slot.
	DefaultPrefetchDistance = 16

	// arenaBytesPerKey sizes the key arena: average key footprint plus
	// terminator, with headroom added on top.
	arenaBytesPerKey = 40
	arenaHeadroom    = 1 << 20

	// copyChunk and queryChunk are the claim sizes for the parallel
	// key-copy and parallel query phases.
	copyChunk  = 1024
	queryChunk = 4096
)

func hashKey(b []byte) uint64 { return fnv.Hash64(b) }

// Stats summarizes one pipeline run.
type Stats struct {
	Entries int
	Queries int
	Found   int
}

type options struct {
	prefetchDist    int
	workers         int
	parallelQueries bool
	asyncWriter     bool
	backing         arena.Backing
	logger          *slog.Logger
}

// Option configures a pipeline run.
type Option func(*options)

// WithPrefetchDistance sets the look-ahead window for batched lookups.
func WithPrefetchDistance(d int) Option {
	return func(o *options) {
		if d >= 0 {
			o.prefetchDist = d
		}
	}
}

// WithWorkers bounds the worker pool for the key-copy and parallel-query
// phases.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithParallelQueries answers the query batch on the worker pool instead
// of the sequential prefetch loop. Results land in their original query
// positions either way.
func WithParallelQueries(on bool) Option {
	return func(o *options) { o.parallelQueries = on }
}

// WithAsyncWriter emits answers through the buffered submission ring
// instead of the synchronous 256 KiB writer.
func WithAsyncWriter(on bool) Option {
	return func(o *options) { o.asyncWriter = on }
}

// WithArenaBacking selects the key arena's memory source.
func WithArenaBacking(b arena.Backing) Option {
	return func(o *options) { o.backing = b }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

type answer struct {
	size   uint64
	offset uint64
}

// Run executes the full pipeline: map the input, parse and arena-copy the
// records, build the table, answer the queries, and emit one line per
// query to w in query order ("<size> <offset>" or "NOTFOUND").
//
// The input must be a mappable regular file and non-empty; anything else
// fails fast before any output is written.
func Run(inputPath string, w io.Writer, opts ...Option) (Stats, error) {
	o := options{
		prefetchDist: DefaultPrefetchDistance,
		workers:      min(8, runtime.GOMAXPROCS(0)),
		backing:      arena.BackingHuge,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := mmap.OpenPopulate(inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("batchindex: map input: %w", err)
	}
	defer m.Close()
	if m.Size() == 0 {
		return Stats{}, ErrEmptyInput
	}
	_ = m.Advise(mmap.AccessSequential)
	_ = m.Advise(mmap.AccessWillNeed)

	p := &parser{data: m.Bytes()}
	records, err := p.parseRecords()
	if err != nil {
		return Stats{}, err
	}

	a, err := arena.New(len(records)*arenaBytesPerKey+arenaHeadroom, arena.WithBacking(o.backing))
	if err != nil {
		return Stats{}, err
	}
	defer a.Close()

	if err := copyKeys(records, a, o.workers); err != nil {
		return Stats{}, err
	}

	table := NewTable(len(records))
	for i := range records {
		table.Insert(records[i].key, records[i].hash, records[i].size, records[i].offset)
	}
	o.logger.Debug("table built", "entries", table.Len(), "capacity", table.Cap())

	queries, err := p.parseQueries()
	if err != nil {
		return Stats{}, err
	}

	results := make([]answer, len(queries))
	var found *roaring.Bitmap
	if o.parallelQueries {
		found, err = answerParallel(table, queries, results, o.workers, o.prefetchDist)
		if err != nil {
			return Stats{}, err
		}
	} else {
		found = answerSequential(table, queries, results, o.prefetchDist)
	}

	if err := emit(w, results, found, o.asyncWriter); err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Entries: len(records),
		Queries: len(queries),
		Found:   int(found.GetCardinality()),
	}
	o.logger.Info("batch index complete", "entries", stats.Entries, "queries", stats.Queries, "found", stats.Found)
	return stats, nil
}

// copyKeys moves every record key from the input mapping into the arena
// and computes its hash. Workers claim contiguous chunks through an atomic
// cursor; each writes only its own entries, so there are no per-entry races.
func copyKeys(records []record, a *arena.Arena, workers int) error {
	var cursor atomic.Int64
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for {
				start := int(cursor.Add(copyChunk)) - copyChunk
				if start >= len(records) {
					return nil
				}
				end := min(start+copyChunk, len(records))
				for i := start; i < end; i++ {
					dst, err := a.AllocBytes(records[i].key)
					if err != nil {
						return err
					}
					records[i].key = dst
					records[i].hash = hashKey(dst)
				}
			}
		})
	}
	return g.Wait()
}

// answerSequential runs the single-threaded lookup loop, prefetching the
// probe-start slot dist iterations ahead to hide cache-miss latency.
func answerSequential(t *Table, queries []query, results []answer, dist int) *roaring.Bitmap {
	found := roaring.New()
	for i := range queries {
		if j := i + dist; j < len(queries) {
			t.Prefetch(queries[j].hash)
		}
		if size, offset, ok := t.Lookup(queries[i].key, queries[i].hash); ok {
			results[i] = answer{size: size, offset: offset}
			found.Add(uint32(i))
		}
	}
	return found
}

// answerParallel fans the query batch across workers. Each worker claims
// chunks via an atomic cursor, prefetches within a mini-window, and writes
// answers into the preallocated results slice at the original positions.
// Found positions are merged from per-worker bitmaps after the join.
func answerParallel(t *Table, queries []query, results []answer, workers, dist int) (*roaring.Bitmap, error) {
	parts := make([]*roaring.Bitmap, workers)
	var cursor atomic.Int64
	var g errgroup.Group
	for wi := range workers {
		g.Go(func() error {
			local := roaring.New()
			parts[wi] = local
			for {
				start := int(cursor.Add(queryChunk)) - queryChunk
				if start >= len(queries) {
					return nil
				}
				end := min(start+queryChunk, len(queries))
				for j := start; j < min(start+dist, end); j++ {
					t.Prefetch(queries[j].hash)
				}
				for i := start; i < end; i++ {
					if j := i + dist; j < end {
						t.Prefetch(queries[j].hash)
					}
					if size, offset, ok := t.Lookup(queries[i].key, queries[i].hash); ok {
						results[i] = answer{size: size, offset: offset}
						local.Add(uint32(i))
					}
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return roaring.FastOr(parts...), nil
}

// emit writes one answer line per query, in query order.
func emit(w io.Writer, results []answer, found *roaring.Bitmap, async bool) error {
	var ew emitWriter
	if async {
		ew = newAsyncWriter(w)
	} else {
		ew = newSyncWriter(w)
	}

	line := make([]byte, 0, 48)
	for i := range results {
		line = line[:0]
		if found.Contains(uint32(i)) {
			line = strconv.AppendUint(line, results[i].size, 10)
			line = append(line, ' ')
			line = strconv.AppendUint(line, results[i].offset, 10)
			line = append(line, '\n')
		} else {
			line = append(line, "NOTFOUND\n"...)
		}
		if _, err := ew.Write(line); err != nil {
			_ = ew.Close()
			return err
		}
	}
	return ew.Close()
}
