// Package storage abstracts the object store that holds synced user files.
// The sync core depends only on this interface; the GCS implementation lives
// alongside it, and an in-memory implementation backs the tests.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotExist is returned when reading an object that is not present
var ErrNotExist = errors.New("object does not exist")

// Store is the object-store capability used by the sync core
type Store interface {
	// Exists reports whether an object is present at path
	Exists(ctx context.Context, path string) (bool, error)
	// Read returns the full content of the object at path
	Read(ctx context.Context, path string) ([]byte, error)
	// Write stores data at path, overwriting any existing object
	Write(ctx context.Context, path string, data []byte) error
	// List returns the sorted paths of all objects under prefix
	List(ctx context.Context, prefix string) ([]string, error)
	// MD5 returns the hex MD5 of the object's content
	MD5(ctx context.Context, path string) (string, error)
}

// Join composes an object path from segments, normalizing separators and
// dropping empty segments so no doubled or leading slashes appear.
func Join(segments ...string) string {
	var parts []string
	for _, seg := range segments {
		for _, p := range strings.Split(seg, "/") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	return strings.Join(parts, "/")
}
