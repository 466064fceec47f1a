// Package testutil provides a small HTTP client for exercising the server
// in tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Client wraps an httptest server with helpers for making requests and
// asserting on responses.
type Client struct {
	t   *testing.T
	srv *httptest.Server
}

// NewClient creates a test client bound to srv.
func NewClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	return &Client{t: t, srv: srv}
}

// Response holds a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	body       []byte
}

// Body returns the raw response body.
func (r *Response) Body() []byte { return r.body }

// JSONMap decodes the body as a JSON object.
func (r *Response) JSONMap(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(r.body, &m); err != nil {
		t.Fatalf("decoding JSON object: %v\nbody: %s", err, r.body)
	}
	return m
}

// JSONList decodes the body as a JSON array.
func (r *Response) JSONList(t *testing.T) []any {
	t.Helper()
	var l []any
	if err := json.Unmarshal(r.body, &l); err != nil {
		t.Fatalf("decoding JSON array: %v\nbody: %s", err, r.body)
	}
	return l
}

// AssertStatus fails the test if the status code differs from want.
func (r *Response) AssertStatus(t *testing.T, want int) *Response {
	t.Helper()
	if r.StatusCode != want {
		t.Fatalf("status = %d, want %d\nbody: %s", r.StatusCode, want, r.body)
	}
	return r
}

// AssertBodyContains fails the test if the body does not contain substr.
func (r *Response) AssertBodyContains(t *testing.T, substr string) *Response {
	t.Helper()
	if !strings.Contains(string(r.body), substr) {
		t.Fatalf("body does not contain %q\nbody: %s", substr, r.body)
	}
	return r
}

// Get performs a GET request against path.
func (c *Client) Get(path string) *Response {
	c.t.Helper()
	return c.Do("GET", path, nil)
}

// Post performs a POST request with a JSON-encoded body.
func (c *Client) Post(path string, body any) *Response {
	c.t.Helper()
	return c.Do("POST", path, body)
}

// Put performs a PUT request with a JSON-encoded body.
func (c *Client) Put(path string, body any) *Response {
	c.t.Helper()
	return c.Do("PUT", path, body)
}

// Delete performs a DELETE request against path.
func (c *Client) Delete(path string) *Response {
	c.t.Helper()
	return c.Do("DELETE", path, nil)
}

// Do performs a request with an optional JSON body.
func (c *Client) Do(method, path string, body any) *Response {
	c.t.Helper()
	return c.DoWithHeaders(method, path, body, nil)
}

// DoWithHeaders performs a request with extra headers.
func (c *Client) DoWithHeaders(method, path string, body any, headers map[string]string) *Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	if err != nil {
		c.t.Fatalf("building request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("reading response body: %v", err)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, body: data}
}

// AdminClient exposes the /admin control plane for tests.
type AdminClient struct {
	c *Client
}

// Admin returns an admin client sharing this client's server.
func (c *Client) Admin() *AdminClient { return &AdminClient{c: c} }

// Health asserts the health endpoint responds ok.
func (a *AdminClient) Health(t *testing.T) {
	t.Helper()
	a.c.Get("/admin/health").AssertStatus(t, http.StatusOK)
}

// Reset resets server state and simulated time.
func (a *AdminClient) Reset(t *testing.T) {
	t.Helper()
	a.c.Post("/admin/reset", nil).AssertStatus(t, http.StatusOK)
}

// GetState fetches the full state snapshot.
func (a *AdminClient) GetState(t *testing.T) map[string]any {
	t.Helper()
	return a.c.Get("/admin/state").AssertStatus(t, http.StatusOK).JSONMap(t)
}

// LoadState replaces server state with the given snapshot.
func (a *AdminClient) LoadState(t *testing.T, state any) {
	t.Helper()
	a.c.Post("/admin/state", state).AssertStatus(t, http.StatusOK)
}

// AdvanceTime moves the simulated clock forward.
func (a *AdminClient) AdvanceTime(t *testing.T, d string) {
	t.Helper()
	a.c.Post("/admin/time/advance", map[string]string{"duration": d}).
		AssertStatus(t, http.StatusOK)
}
