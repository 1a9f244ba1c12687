package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Response struct {
	Data []byte
}

// APIError is a backend failure surfaced as a value. Callers branch on it
// to choose between the degraded-mode path and a user-facing error.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

// NewTransport creates a transport with base URL and auth
func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		BaseURL:   baseURL,
		AuthToken: token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken swaps the bearer token, e.g. after sign-in or refresh.
func (t *Transport) SetToken(token string) {
	t.AuthToken = token
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query url.Values) string {
	u, _ := url.Parse(t.BaseURL + path)
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (t *Transport) do(ctx context.Context, method, path string, body io.Reader, contentType string, query url.Values) (*Response, error) {
	fullURL := t.buildURL(path, query)

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(data)}
		// prefer the structured message when the backend sent one
		var parsed APIError
		if json.Unmarshal(data, &parsed) == nil && parsed.Message != "" {
			apiErr.Code = parsed.Code
			apiErr.Message = parsed.Message
		}
		return nil, apiErr
	}

	return &Response{Data: data}, nil
}

// Get sends a GET request
func (t *Transport) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, nil, "", query)
}

// Post sends a POST request with JSON body
func (t *Transport) Post(ctx context.Context, path string, data any, query url.Values) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodPost, path, bytes.NewBuffer(body), "application/json", query)
}

// Patch sends a PATCH request with JSON body
func (t *Transport) Patch(ctx context.Context, path string, data any, query url.Values) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return t.do(ctx, http.MethodPatch, path, bytes.NewBuffer(body), "application/json", query)
}

// Delete sends a DELETE request
func (t *Transport) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return t.do(ctx, http.MethodDelete, path, nil, "", query)
}

// PostRaw streams an arbitrary body, used for blob uploads.
func (t *Transport) PostRaw(ctx context.Context, path string, contentType string, body io.Reader, query url.Values) (*Response, error) {
	return t.do(ctx, http.MethodPost, path, body, contentType, query)
}
