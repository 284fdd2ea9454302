// Package store provides the durable persistence capability backing the
// client's entity collections. Implementations must round-trip JSON exactly:
// load → save → load yields an identical document.
package store

import "context"

// Store is a key-value durable store with JSON serialization. The in-memory
// collection state is authoritative; a failing Save is recorded by callers
// but never rolls back a settled mutation.
type Store interface {
	// Load reads the value stored under key into dest.
	// Returns false with a nil error when the key is absent.
	Load(ctx context.Context, key string, dest any) (bool, error)

	// Save serializes value and writes it under key, replacing any
	// previous document.
	Save(ctx context.Context, key string, value any) error

	// Delete removes the document stored under key. Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, key string) error
}
