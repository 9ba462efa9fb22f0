// Package api is a thin JSON-over-HTTP client for the backend.
//
// Every call returns a Response or an *Error carrying a message and, when
// the server answered, its status code. The client applies a per-request
// timeout and can attach the current access token as a bearer header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is matched by errors for requests that got no HTTP answer
// (connection failure, timeout).
var ErrUnavailable = errors.New("server unavailable")

// Response is a decoded reply. When the body is a {"data": ..., "success": ...}
// envelope its fields are used; any other JSON body becomes Data with
// Success set from the status code.
type Response struct {
	Data    json.RawMessage
	Success bool
}

// Decode unmarshals Data into v.
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("empty response data")
	}
	return json.Unmarshal(r.Data, v)
}

// Error is returned for failed requests. StatusCode is 0 when the server
// was not reached.
type Error struct {
	Message    string
	StatusCode int
	cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return "api error: " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.StatusCode != 0 {
		return nil
	}
	if e.cause != nil {
		return []error{ErrUnavailable, e.cause}
	}
	return []error{ErrUnavailable}
}

// TokenSource returns the access token to send, or "" for none.
type TokenSource func(ctx context.Context) string

type Option func(*Client)

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	tokens  TokenSource
}

// New returns a client for baseURL. A timeout <= 0 disables the
// per-request deadline.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, body)
}

func (c *Client) Put(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, body)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPatch, endpoint, body)
}

func (c *Client) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil)
}

// Ping checks that the backend answers GET /health with a 2xx status.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "/health")
	return err
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("read response: %s", err), cause: err}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok {
		return nil, &Error{Message: errorMessage(resp, raw), StatusCode: resp.StatusCode}
	}
	return decodeResponse(raw), nil
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success *bool           `json:"success"`
}

func decodeResponse(raw []byte) *Response {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &Response{Success: true}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil {
		return &Response{Data: env.Data, Success: *env.Success}
	}
	if !json.Valid(raw) {
		// plain-text body; keep it as a JSON string
		b, _ := json.Marshal(string(raw))
		return &Response{Data: b, Success: true}
	}
	return &Response{Data: json.RawMessage(raw), Success: true}
}

func errorMessage(resp *http.Response, raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 && !json.Valid(raw) {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
