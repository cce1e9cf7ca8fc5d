package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// StoreIDHeader scopes every request to the active store so the server
// can filter collections without the caller repeating it per call.
const StoreIDHeader = "x-store-id"

// Client wraps outbound HTTP calls to the store manager API. Identity
// is carried by a session cookie held in the jar; the active store
// identifier is injected into every request header.
type Client struct {
	baseURL          *url.URL
	http             *http.Client
	storeID          func() string
	onSessionExpired func()
}

// New constructs a Client for the given base URL. The timeout bounds
// every request; a hung call surfaces as a NetworkError.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

// SetStoreIDSource registers the callback that yields the active store
// identifier. An empty result omits the header.
func (c *Client) SetStoreIDSource(fn func() string) { c.storeID = fn }

// OnSessionExpired registers the teardown hook invoked when any
// non-bootstrap call comes back 401.
func (c *Client) OnSessionExpired(fn func()) { c.onSessionExpired = fn }

// The two identity bootstrap calls must fail silently on 401 so that
// login itself (and the initial session check) can proceed.
func isBootstrapPath(path string) bool {
	return path == "/auth/login" || path == "/auth/me"
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(payload), out)
}

// PostForm submits a form-encoded body, used by the login endpoint.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, "application/json", bytes.NewReader(payload), out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	target := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.storeID != nil {
		if id := c.storeID(); id != "" {
			req.Header.Set(StoreIDHeader, id)
		}
	}
	if rid, err := uuid.NewV4(); err == nil {
		req.Header.Set("X-Request-ID", rid.String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !isBootstrapPath(path) {
		// Hard cutover: no refresh, no replay. Whatever flow was in
		// progress is interrupted.
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return ErrSessionExpired
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeDetail extracts the server's message from an error body. The
// backend answers either {"error": "..."} or {"detail": "..."}, where
// detail may also be a validation array of {msg} objects.
func decodeDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<16))
	if err != nil {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var msg string
		if json.Unmarshal(payload.Detail, &msg) == nil {
			return msg
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(payload.Detail, &items) == nil && len(items) > 0 {
			return items[0].Msg
		}
	}
	return payload.Error
}
