// Package api wraps outbound calls to the ordering backend: bearer
// credentials, error normalization, and forced logout on authentication
// failure.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// TokenSource supplies the current bearer token and supports invalidating it.
// It is implemented by the session store.
type TokenSource interface {
	// Token returns the current bearer token, or "" when unauthenticated.
	Token() string
	// Invalidate destroys the local session. Called when the backend
	// answers 401.
	Invalidate()
}

// Client executes API calls against a single backend base URL. Every call is
// a single attempt; retries are a caller concern.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient creates a Client. baseURL should include the API prefix, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
	}
}

// Do performs a request against endpoint (path relative to the base URL) and
// returns the raw response body.
//
// Behaviour per response:
//   - 2xx: body bytes (nil for 204 No Content)
//   - 401: the session is invalidated via TokenSource and ErrSessionExpired
//     is returned
//   - other statuses: *Error with the server message when present
//   - transport failure: *Error with a generic connectivity message
func (c *Client) Do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if len(body) > 0 && method != http.MethodGet {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: "cannot reach the server, check your connection"}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "cannot reach the server, check your connection"}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.tokens.Invalidate()
		return nil, ErrSessionExpired
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError(resp.StatusCode, data)
	}

	return data, nil
}
