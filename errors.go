package fluxorblob

import (
	"github.com/quadgate/fluxor-blob/blobstore"
	"github.com/quadgate/fluxor-blob/index"
	"github.com/quadgate/fluxor-blob/internal/arena"
)

// Error kinds surfaced by the facade. Lower layers define their own
// sentinels; these aliases let callers match without importing every
// subpackage.
var (
	// ErrNotFound is returned when a key or version is missing on a
	// read-like path. It satisfies errors.Is against os.ErrNotExist.
	ErrNotFound = blobstore.ErrNotFound

	// ErrInvalidKey is returned for keys the store cannot represent.
	ErrInvalidKey = blobstore.ErrInvalidKey

	// ErrCorruption is returned when the index snapshot does not parse.
	ErrCorruption = index.ErrCorruption

	// ErrResourceExhausted is returned when a fixed budget (the batch
	// indexer's key arena) is exceeded.
	ErrResourceExhausted = arena.ErrArenaFull
)
