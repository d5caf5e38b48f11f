package blobstore

import (
	"context"
)

// BatchItem is one put in a batch.
type BatchItem struct {
	Key     string
	Data    []byte
	Version string
}

// BatchResult reports the outcome of one batch operation. Successes and
// failures coexist in a single result slice.
type BatchResult struct {
	Key string
	Err error
}

// GetResult carries the payload (or error) for one key of a batch get.
type GetResult struct {
	Key  string
	Data []byte
	Err  error
}

// BatchPut writes the items in order and reports a per-item outcome. A
// failed item does not stop the batch.
func (s *Store) BatchPut(ctx context.Context, bucket string, items []BatchItem) []BatchResult {
	results := make([]BatchResult, 0, len(items))
	for _, it := range items {
		err := s.Put(ctx, bucket, it.Key, it.Data, it.Version)
		results = append(results, BatchResult{Key: it.Key, Err: err})
	}
	return results
}

// BatchGet reads the keys in order; missing keys carry ErrNotFound in
// their result.
func (s *Store) BatchGet(ctx context.Context, bucket string, keys []string) []GetResult {
	results := make([]GetResult, 0, len(keys))
	for _, key := range keys {
		data, err := s.Get(ctx, bucket, key, "")
		results = append(results, GetResult{Key: key, Data: data, Err: err})
	}
	return results
}

// AsyncPut starts the put on its own goroutine and returns a channel that
// yields the single outcome.
func (s *Store) AsyncPut(ctx context.Context, bucket, key string, data []byte, version string) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.Put(ctx, bucket, key, data, version)
	}()
	return done
}

// AsyncGet starts the get on its own goroutine and returns a channel that
// yields the single result.
func (s *Store) AsyncGet(ctx context.Context, bucket, key string) <-chan GetResult {
	done := make(chan GetResult, 1)
	go func() {
		data, err := s.Get(ctx, bucket, key, "")
		done <- GetResult{Key: key, Data: data, Err: err}
	}()
	return done
}
