// Package resource provides global limits for memory, background
// concurrency, and IO throughput. Bucket export and import (and the
// object-storage offload built on them) route their IO through a Controller
// so they cannot starve foreground puts and gets; index rebuild does not
// use one.
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a memory acquisition would exceed the limit.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits. Zero values mean unlimited (workers default to 1).
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory.
	MemoryLimitBytes int64

	// MaxBackgroundWorkers bounds concurrent background jobs.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec throttles background IO throughput.
	IOLimitBytesPerSec int64
}

// Controller manages global resources.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	bgSem *semaphore.Weighted

	ioLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}

	c := &Controller{
		cfg:   cfg,
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// TryAcquireMemory attempts to reserve n bytes without blocking.
func (c *Controller) TryAcquireMemory(n int64) bool {
	if c == nil || c.memSem == nil {
		if c != nil {
			c.memUsed.Add(n)
		}
		return true
	}
	if !c.memSem.TryAcquire(n) {
		return false
	}
	c.memUsed.Add(n)
	return true
}

// ReleaseMemory returns n bytes to the pool.
func (c *Controller) ReleaseMemory(n int64) {
	if c == nil {
		return
	}
	c.memUsed.Add(-n)
	if c.memSem != nil {
		c.memSem.Release(n)
	}
}

// MemoryUsed returns the currently reserved bytes.
func (c *Controller) MemoryUsed() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireWorker blocks until a background worker slot is available.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// ReleaseWorker returns a background worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// WaitIO blocks until n bytes of background IO budget are available.
// Requests larger than the limiter burst are split.
func (c *Controller) WaitIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
