// Package storage holds uploaded blobs: sick-leave certificates and other
// employee documents. The default implementation goes through the backend's
// storage proxy; DirectS3 talks to the bucket itself for deployments that
// skip the proxy.
package storage

import (
	"context"
	"io"
	"time"

	v1 "harborview.com/shiftman/backend/v1"
)

type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) (string, error)
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
}

// BackendStore uploads through the backend's storage endpoint.
type BackendStore struct {
	api *v1.StorageEndpoint
}

func NewBackendStore(api *v1.StorageEndpoint) *BackendStore {
	return &BackendStore{api: api}
}

func (s *BackendStore) Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) (string, error) {
	return s.api.Upload(ctx, bucket, path, r, contentType)
}

func (s *BackendStore) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	return s.api.SignedURL(ctx, bucket, path, ttl)
}
