package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestStoreIDHeaderInjection(t *testing.T) {
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(StoreIDHeader)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	storeID := "7"
	c.SetStoreIDSource(func() string { return storeID })

	require.NoError(t, c.Get(context.Background(), "/products/", nil))
	assert.Equal(t, "7", gotHeader)

	// An empty source omits the header entirely.
	storeID = ""
	require.NoError(t, c.Get(context.Background(), "/products/", nil))
	assert.Empty(t, gotHeader)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	require.NoError(t, c.Get(context.Background(), "/products/", nil))
	assert.NotEmpty(t, gotID)
}

func TestUnauthorizedTriggersSessionCutover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	var expired bool
	c.OnSessionExpired(func() { expired = true })

	err := c.Get(context.Background(), "/products/", nil)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, expired)
}

func TestUnauthorizedBootstrapPathsFailSilently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	var expired bool
	c.OnSessionExpired(func() { expired = true })

	for _, path := range []string{"/auth/me", "/auth/login"} {
		err := c.Get(context.Background(), path, nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr, "path %s", path)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.False(t, expired)
	}
}

func TestAPIErrorDetailDecoding(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error key", http.StatusBadRequest, `{"error":"name is required"}`, "name is required"},
		{"detail string", http.StatusBadRequest, `{"detail":"invalid cnpj"}`, "invalid cnpj"},
		{"detail array", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"unstructured", http.StatusInternalServerError, `boom`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := newTestClient(t, srv).Get(context.Background(), "/clients/", nil)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.want, apiErr.Detail)
		})
	}
}

func TestTimeoutSurfacesAsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := New(srv.URL, 20*time.Millisecond)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/products/", nil)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, netErr.Op, "/products/")
}
