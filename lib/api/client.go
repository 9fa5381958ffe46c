// Copyright 2026 The Quill Authors
// SPDX-License-Identifier: Apache-2.0

// Package api is the gateway to the blog server's REST API. A Client
// performs the anonymous calls (listing and reading posts, register,
// login); a Session wraps a Client with a token source and performs the
// authenticated calls (post mutations, admin user management).
//
// Every call takes a context, returns typed values, and normalizes
// non-2xx responses into *Error. Nothing here retries: failures
// propagate to the caller, which surfaces them as a notification or
// inline message and leaves local state untouched.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseSize bounds API response body reads. Legitimate responses
// are far smaller; the bound only guards against a pathological server.
const maxResponseSize int64 = 32 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the blog API (e.g., "http://localhost:8080/api").
	ServerURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an unauthenticated blog API client. It holds the server URL
// and HTTP transport, shared with any Session derived from it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated blog API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("api: ServerURL is required")
	}
	if _, err := url.Parse(config.ServerURL); err != nil {
		return nil, fmt.Errorf("api: invalid ServerURL %q: %w", config.ServerURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.ServerURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// TokenSource supplies the bearer token attached to authenticated
// requests. An empty token attaches no Authorization header, so a
// logged-out (or partially restored) session degrades to anonymous
// access instead of sending a stale credential.
type TokenSource interface {
	Token() string
}

// WithToken derives an authenticated Session sharing this client's
// transport. The token is read from source at request time, not
// captured here, so login and logout take effect immediately.
func (c *Client) WithToken(source TokenSource) *Session {
	return &Session{client: c, tokens: source}
}

// ListPosts returns all posts in the server's order (weight-descending
// priority order; the list view treats this as the "default" sort).
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/posts", "", nil)
	if err != nil {
		return nil, fmt.Errorf("api: list posts: %w", err)
	}

	var posts []Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("api: parsing posts response: %w", err)
	}
	return posts, nil
}

// ListPostsByTag returns the posts carrying the named tag. The name is
// path-escaped, so tags with spaces or slashes round-trip correctly.
func (c *Client) ListPostsByTag(ctx context.Context, name string) ([]Post, error) {
	if name == "" {
		return nil, fmt.Errorf("api: tag name is required")
	}
	body, err := c.doRequest(ctx, http.MethodGet, "/posts/tag/"+url.PathEscape(name), "", nil)
	if err != nil {
		return nil, fmt.Errorf("api: list posts by tag %q: %w", name, err)
	}

	var posts []Post
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("api: parsing posts response: %w", err)
	}
	return posts, nil
}

// GetPost returns a single post by ID.
func (c *Client) GetPost(ctx context.Context, id int64) (*Post, error) {
	body, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", id), "", nil)
	if err != nil {
		return nil, fmt.Errorf("api: get post %d: %w", id, err)
	}

	var post Post
	if err := json.Unmarshal(body, &post); err != nil {
		return nil, fmt.Errorf("api: parsing post response: %w", err)
	}
	return &post, nil
}

// Register creates a new account. A duplicate username surfaces as a
// 400 *Error with the server's message.
func (c *Client) Register(ctx context.Context, username, password string) error {
	if username == "" {
		return fmt.Errorf("api: username is required for registration")
	}
	if password == "" {
		return fmt.Errorf("api: password is required for registration")
	}

	request := map[string]string{"username": username, "password": password}
	if _, err := c.doRequest(ctx, http.MethodPost, "/register", "", request); err != nil {
		return fmt.Errorf("api: registration failed: %w", err)
	}

	c.logger.Info("registered account", "username", username)
	return nil
}

// Login authenticates with username and password, returning the bearer
// token and the authenticated identity.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	if username == "" {
		return nil, fmt.Errorf("api: username is required for login")
	}
	if password == "" {
		return nil, fmt.Errorf("api: password is required for login")
	}

	request := map[string]string{"username": username, "password": password}
	body, err := c.doRequest(ctx, http.MethodPost, "/login", "", request)
	if err != nil {
		return nil, fmt.Errorf("api: login failed: %w", err)
	}

	var response AuthResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("api: parsing login response: %w", err)
	}

	c.logger.Info("logged in", "username", response.User.Username, "role", response.User.Role)
	return &response, nil
}

// doRequest performs an HTTP request against the blog server and
// returns the response body. On 2xx, returns the body (empty for 204).
// On non-2xx, returns a *Error carrying the server's {error} envelope,
// or a generic "request failed, status N" message when the body is not
// parseable. token may be empty for anonymous endpoints.
func (c *Client) doRequest(ctx context.Context, method, path, token string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	apiError := &Error{StatusCode: response.StatusCode}
	var envelope errorEnvelope
	if jsonErr := json.Unmarshal(responseBody, &envelope); jsonErr == nil && envelope.Error != "" {
		apiError.Message = envelope.Error
	} else {
		apiError.Message = genericMessage(response.StatusCode)
	}
	return nil, apiError
}
