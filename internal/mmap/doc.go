// Package mmap provides memory-mapped file access for zero-copy I/O.
//
// # Overview
//
// Memory mapping allows direct access to file contents without copying data
// through kernel buffers. The blob store uses it for zero-copy blob reads,
// and the batch indexer maps its entire input stream before parsing.
//
// # Usage
//
//	m, err := mmap.Open("blob.bin")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// # Anonymous Mappings
//
// MapAnon creates read-write anonymous mappings for off-heap memory
// allocation. MapAnonHuge additionally requests explicit huge pages,
// degrading to a hugepage-advised anonymous mapping and finally to a plain
// heap slice when the kernel refuses. The arena allocator uses these to
// obtain its backing memory outside the garbage collector's control.
//
// # Thread Safety
//
// Mapping is safe for concurrent read access. Close is idempotent and
// protected by an atomic flag, but callers must ensure no goroutine touches
// Bytes() after Close returns.
package mmap
