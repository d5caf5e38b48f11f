package batchindex

import (
	"bufio"
	"io"
)

const (
	// writeBufferSize is the emit buffer; answers accumulate here and hit
	// the underlying writer in 256 KiB slabs.
	writeBufferSize = 256 << 10

	// asyncQueueDepth bounds in-flight buffers for the async writer. One
	// slot stays reserved for the buffer being filled.
	asyncQueueDepth = 8
)

// emitWriter is the minimal surface the emit phase needs.
type emitWriter interface {
	io.Writer
	Close() error
}

// syncWriter is the default: a plain 256 KiB buffered writer flushed at
// end-of-stream. It meets the latency target on most hardware.
type syncWriter struct {
	bw *bufio.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	return &syncWriter{bw: bufio.NewWriterSize(w, writeBufferSize)}
}

func (s *syncWriter) Write(p []byte) (int, error) { return s.bw.Write(p) }
func (s *syncWriter) Close() error                { return s.bw.Flush() }

// asyncWriter overlaps formatting with output. Full buffers are submitted
// to a single drain goroutine over a bounded channel; submission order is
// write order, so output order is preserved across submissions. Buffers
// recycle through a pool channel.
type asyncWriter struct {
	w       io.Writer
	pool    chan []byte
	pending chan []byte
	active  []byte
	done    chan error
}

func newAsyncWriter(w io.Writer) *asyncWriter {
	a := &asyncWriter{
		w: w,
		// pending has capacity queueDepth-1: the writer saturates instead
		// of allocating unboundedly when the sink is slow.
		pool:    make(chan []byte, asyncQueueDepth),
		pending: make(chan []byte, asyncQueueDepth-1),
		done:    make(chan error, 1),
	}
	for range asyncQueueDepth {
		a.pool <- make([]byte, 0, writeBufferSize)
	}
	a.active = <-a.pool

	go a.drain()
	return a
}

func (a *asyncWriter) drain() {
	var firstErr error
	for buf := range a.pending {
		if firstErr == nil {
			if _, err := a.w.Write(buf); err != nil {
				firstErr = err
			}
		}
		a.pool <- buf[:0]
	}
	a.done <- firstErr
}

func (a *asyncWriter) submit() {
	a.pending <- a.active
	a.active = <-a.pool
}

func (a *asyncWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		room := cap(a.active) - len(a.active)
		if room == 0 {
			a.submit()
			continue
		}
		take := min(room, len(p))
		a.active = append(a.active, p[:take]...)
		p = p[take:]
	}
	return n, nil
}

// Close flushes the active buffer, drains all pending writes, and returns
// the first write error observed.
func (a *asyncWriter) Close() error {
	if len(a.active) > 0 {
		a.pending <- a.active
		a.active = nil
	}
	close(a.pending)
	return <-a.done
}
