package storage

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS is a Google Cloud Storage implementation of Store. Authentication uses
// application-default credentials unless options override it.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCS opens a client against the named bucket
func NewGCS(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCS{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

// Close releases the underlying client
func (s *GCS) Close() error {
	return s.client.Close()
}

// Exists reports whether an object is present at path
func (s *GCS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := s.bucket.Object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking object %s: %w", path, err)
	}
	return true, nil
}

// Read returns the full content of the object at path
func (s *GCS) Read(ctx context.Context, path string) ([]byte, error) {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("opening object %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", path, err)
	}
	return data, nil
}

// Write stores data at path, overwriting any existing object
func (s *GCS) Write(ctx context.Context, path string, data []byte) error {
	w := s.bucket.Object(path).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing object %s: %w", path, err)
	}
	return nil
}

// List returns the sorted paths of all objects under prefix
func (s *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects under %s: %w", prefix, err)
		}
		paths = append(paths, attrs.Name)
	}
	sort.Strings(paths)
	return paths, nil
}

// MD5 returns the hex MD5 of the object's content as recorded by GCS
func (s *GCS) MD5(ctx context.Context, path string) (string, error) {
	attrs, err := s.bucket.Object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return "", fmt.Errorf("getting attrs for %s: %w", path, err)
	}
	return hex.EncodeToString(attrs.MD5), nil
}
