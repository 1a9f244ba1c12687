package core

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"harborview.com/shiftman/backend/mock"
	v1 "harborview.com/shiftman/backend/v1"
	"harborview.com/shiftman/cache"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("core-test-secret"))

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newOnlineClient returns a signed-in client backed by the in-memory mock
// server, plus the server for seeding and assertions.
func newOnlineClient(t *testing.T) (*v1.Client, *mock.Server) {
	t.Helper()

	srv, err := mock.New(testSecret)
	require.NoError(t, err)
	srv.AddUser("worker@harborview.test", "pass123", "employee")

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	client := v1.NewClient(ts.URL, "")
	_, err = client.Auth.SignIn(context.Background(), "worker@harborview.test", "pass123")
	require.NoError(t, err)

	return client, srv
}

// newOfflineClient returns a client whose backend is unreachable, for the
// degraded-mode paths.
func newOfflineClient() *v1.Client {
	return v1.NewClient("http://127.0.0.1:1", "")
}
