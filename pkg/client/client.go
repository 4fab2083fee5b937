// Package client is a Go client for the postd HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pineda/postd/pkg/post"
)

// Sentinels matched by errors.Is against an *APIError.
var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalid         = errors.New("invalid request")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed: status %d", e.StatusCode)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is maps HTTP statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrVersionConflict:
		return e.StatusCode == http.StatusConflict
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrInvalid:
		return e.StatusCode == http.StatusBadRequest
	}
	return false
}

// Client talks to one postd server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	token      string
}

// DefaultTimeout bounds each request unless WithTimeout says otherwise.
const DefaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. It applies whatever the option
// order, and to a copy of any client given through WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sends requests through hc. The client is copied; hc itself
// is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := &http.Client{Timeout: DefaultTimeout}
	if c.httpClient != nil {
		cp := *c.httpClient
		hc = &cp
	}
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = hc
	return c
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// List returns every post.
func (c *Client) List(ctx context.Context) ([]*post.Post, error) {
	var posts []*post.Post
	if err := c.call(ctx, http.MethodGet, "/api/posts", nil, http.StatusOK, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// FindByTitle returns the post with exactly this title, or ErrNotFound.
func (c *Client) FindByTitle(ctx context.Context, title string) (*post.Post, error) {
	var posts []*post.Post
	path := "/api/posts?title=" + url.QueryEscape(title)
	if err := c.call(ctx, http.MethodGet, path, nil, http.StatusOK, &posts); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, &APIError{StatusCode: http.StatusNotFound, Code: "not_found", Message: fmt.Sprintf("no post titled %q", title)}
	}
	return posts[0], nil
}

// Get returns one post.
func (c *Client) Get(ctx context.Context, id int64) (*post.Post, error) {
	var p post.Post
	if err := c.call(ctx, http.MethodGet, postPath(id), nil, http.StatusOK, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create stores a new post and returns it with its id and version.
func (c *Client) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	var created post.Post
	if err := c.call(ctx, http.MethodPost, "/api/posts", p, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces post id. p.Version must be the current version.
func (c *Client) Update(ctx context.Context, id int64, p *post.Post) (*post.Post, error) {
	var updated post.Post
	if err := c.call(ctx, http.MethodPut, postPath(id), p, http.StatusOK, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes post id. Deleting a missing post succeeds.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, postPath(id), nil, http.StatusNoContent, nil)
}

func postPath(id int64) string {
	return "/api/posts/" + strconv.FormatInt(id, 10)
}

func (c *Client) call(ctx context.Context, method, path string, body any, want int, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		rd = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func parseError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body post.ErrorResponse
	if json.Unmarshal(data, &body) == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
		apiErr.Field = body.Field
	}
	return apiErr
}
