// Package v1 is the client for the hosted backend: authentication, table
// CRUD with filter chaining, object storage, serverless function invocation
// and the realtime change feed. One Transport is shared by every endpoint.
package v1

type Client struct {
	Transport *Transport
	Auth      *AuthEndpoint
	Storage   *StorageEndpoint
	Functions *FunctionsEndpoint
	Realtime  *RealtimeEndpoint
}

// NewClient initializes the API client. token may be empty until sign-in.
func NewClient(baseURL string, token string) *Client {
	t := NewTransport(baseURL, token)
	return &Client{
		Transport: t,
		Auth:      &AuthEndpoint{transport: t},
		Storage:   &StorageEndpoint{transport: t},
		Functions: &FunctionsEndpoint{transport: t},
		Realtime:  &RealtimeEndpoint{transport: t},
	}
}

// From returns a table-scoped endpoint.
func (c *Client) From(table string) *TableEndpoint {
	return &TableEndpoint{transport: c.Transport, table: table}
}
