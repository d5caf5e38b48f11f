package arena

import (
	"errors"
	"sync/atomic"

	"github.com/quadgate/fluxor-blob/internal/mmap"
)

// ErrArenaFull is returned when an allocation would exceed the arena capacity.
var ErrArenaFull = errors.New("arena: capacity exhausted")

// Backing selects how the arena obtains its memory.
type Backing int

const (
	// BackingAnon uses an anonymous mapping with will-need advice; no
	// hugepage advice is applied.
	BackingAnon Backing = iota
	// BackingHuge requests explicit huge pages, with fallback to BackingAnon
	// and finally to heap memory.
	BackingHuge
	// BackingHeap uses a plain heap slice.
	BackingHeap
)

// Stats tracks arena usage.
type Stats struct {
	Capacity  uint64
	BytesUsed uint64
	Allocs    uint64
}

// Arena is an append-only byte arena with a single atomic bump pointer.
type Arena struct {
	buf     []byte
	mapping *mmap.Mapping // nil for heap backing
	offset  atomic.Uint64
	allocs  atomic.Uint64
	closed  atomic.Bool
}

// Option configures a new Arena.
type Option func(*options)

type options struct {
	backing Backing
}

// WithBacking selects the memory source for the arena.
func WithBacking(b Backing) Option {
	return func(o *options) { o.backing = b }
}

// New creates an arena with the given fixed capacity in bytes.
func New(capacity int, opts ...Option) (*Arena, error) {
	if capacity <= 0 {
		return nil, errors.New("arena: capacity must be positive")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &Arena{}
	switch o.backing {
	case BackingHeap:
		a.buf = make([]byte, capacity)
	case BackingHuge:
		m, err := mmap.MapAnonHuge(capacity)
		if err != nil {
			return nil, err
		}
		a.mapping = m
		a.buf = m.Bytes()
	default:
		m, err := mmap.MapAnon(capacity)
		if err != nil {
			// The mapping is an optimization; the arena still works
			// off the heap.
			a.buf = make([]byte, capacity)
			break
		}
		_ = m.Advise(mmap.AccessWillNeed)
		a.mapping = m
		a.buf = m.Bytes()
	}
	return a, nil
}

// AllocBytes copies src into the arena and returns the arena-owned copy.
// A terminating zero byte is written after the copy, so the returned slice
// is also valid as a zero-terminated region. Returns ErrArenaFull when the
// allocation does not fit; the arena is unchanged for the caller (the
// claimed tail is simply abandoned).
func (a *Arena) AllocBytes(src []byte) ([]byte, error) {
	n := uint64(len(src))

	// The +1 reserves the terminator.
	end := a.offset.Add(n + 1)
	if end > uint64(len(a.buf)) {
		return nil, ErrArenaFull
	}
	start := end - n - 1

	dst := a.buf[start : start+n : start+n+1]
	copy(dst, src)
	a.buf[start+n] = 0
	a.allocs.Add(1)
	return dst, nil
}

// Stats returns current usage counters.
func (a *Arena) Stats() Stats {
	used := a.offset.Load()
	if used > uint64(len(a.buf)) {
		used = uint64(len(a.buf))
	}
	return Stats{
		Capacity:  uint64(len(a.buf)),
		BytesUsed: used,
		Allocs:    a.allocs.Load(),
	}
}

// Close releases the arena memory. All slices returned by AllocBytes become
// invalid. Must not be called concurrently with allocations. Idempotent.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	a.buf = nil
	if a.mapping != nil {
		return a.mapping.Close()
	}
	return nil
}
