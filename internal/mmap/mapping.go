package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping represents a memory-mapped region.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	// nil for heap-backed mappings.
	unmap func([]byte) error
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*Mapping, error) {
	return open(path, false)
}

// OpenPopulate maps the file at path read-only and asks the kernel to
// pre-fault all pages (MAP_POPULATE on Linux; plain mapping elsewhere).
// The batch indexer uses this to avoid page-fault stalls during parsing.
func OpenPopulate(path string) (*Mapping, error) {
	return open(path, true)
}

func open(path string, populate bool) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, ErrNotRegular
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{data: nil, size: 0}, nil
	}
	if size < 0 || size != int64(int(size)) {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMap(f, int(size), populate)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  int(size),
		unmap: unmapFunc,
	}, nil
}

// MapAnon creates a read-write anonymous mapping of the given size.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, size: size, unmap: unmapFunc}, nil
}

// MapAnonHuge creates a read-write anonymous mapping backed by huge pages
// when the kernel grants them. The fallback chain is: explicit huge pages,
// anonymous mapping with hugepage advice, plain heap slice. It never fails
// for a positive size.
func MapAnonHuge(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	data, unmapFunc, err := osMapAnonHuge(size)
	if err != nil {
		// Heap fallback keeps the arena usable on kernels without
		// anonymous mmap support for this size.
		return &Mapping{data: make([]byte, size), size: size}, nil
	}
	return &Mapping{data: data, size: size, unmap: unmapFunc}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// The slice is valid only until Close is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Advise provides a kernel hint about how the mapping will be accessed.
// Advice is best-effort; alignment complaints from the kernel are ignored.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 || m.unmap == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}
