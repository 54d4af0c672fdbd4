// Package storage stores encrypted document blobs.
package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when a key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore persists encrypted blobs by key. Implementations only ever
// see ciphertext; encryption happens in the documents service before the
// bytes reach this layer.
type ObjectStore interface {
	// Put writes a blob under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads a blob.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists checks whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
