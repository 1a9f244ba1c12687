package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"
)

// StorageEndpoint proxies the backend's object storage: blob upload and
// signed download URLs.
type StorageEndpoint struct {
	transport *Transport
}

type uploadResult struct {
	Data struct {
		Path string `json:"path"`
	} `json:"data"`
}

// Upload streams a blob into bucket/path and returns the stored path.
func (s *StorageEndpoint) Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	resp, err := s.transport.PostRaw(ctx, "/api/v1/storage/"+bucket+"/"+path, contentType, r, nil)
	if err != nil {
		return "", err
	}
	var env uploadResult
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return "", fmt.Errorf("upload %s/%s: decode: %w", bucket, path, err)
	}
	return env.Data.Path, nil
}

type signedURLResult struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

// SignedURL returns a time-limited download URL for bucket/path.
func (s *StorageEndpoint) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	query := url.Values{"expiresIn": {strconv.Itoa(int(ttl.Seconds()))}}
	resp, err := s.transport.Get(ctx, "/api/v1/storage/sign/"+bucket+"/"+path, query)
	if err != nil {
		return "", err
	}
	var env signedURLResult
	if err := json.Unmarshal(resp.Data, &env); err != nil {
		return "", fmt.Errorf("sign %s/%s: decode: %w", bucket, path, err)
	}
	return env.Data.URL, nil
}
