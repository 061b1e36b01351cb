package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const maxResponseSize = 10 << 20

// Client issues single-attempt JSON requests against a base URL
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the transport; an oauth2 client plugs in here
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeader adds a header sent on every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		headers:    http.Header{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOptions are the per-call parts of a request
type RequestOptions struct {
	Method  string
	Query   url.Values
	Body    any
	Headers http.Header
}

// Fetch performs one request and decodes the body into T. Bodies shaped
// like {"data": ...} are unwrapped; any other JSON is decoded as-is.
func Fetch[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) Response[T] {
	req, err := c.newRequest(ctx, endpoint, opts)
	if err != nil {
		return Fail[T](err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("API request failed",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return Fail[T](err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Fail[T](fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		c.logger.Warn("API request returned error status",
			zap.String("method", req.Method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode))
		return Fail[T](msg)
	}

	data, err := decode[T](body)
	if err != nil {
		return Fail[T](err.Error())
	}
	return Ok(data)
}

// Get issues a GET with query parameters
func Get[T any](ctx context.Context, c *Client, endpoint string, query url.Values) Response[T] {
	return Fetch[T](ctx, c, endpoint, RequestOptions{Method: http.MethodGet, Query: query})
}

// Post issues a POST with a JSON body
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) Response[T] {
	return Fetch[T](ctx, c, endpoint, RequestOptions{Method: http.MethodPost, Body: body})
}

// Patch issues a PATCH with a JSON body
func Patch[T any](ctx context.Context, c *Client, endpoint string, body any) Response[T] {
	return Fetch[T](ctx, c, endpoint, RequestOptions{Method: http.MethodPatch, Body: body})
}

// Delete issues a DELETE
func Delete[T any](ctx context.Context, c *Client, endpoint string) Response[T] {
	return Fetch[T](ctx, c, endpoint, RequestOptions{Method: http.MethodDelete})
}

func (c *Client) newRequest(ctx context.Context, endpoint string, opts RequestOptions) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	target := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	for k, v := range opts.Headers {
		req.Header[k] = v
	}
	return req, nil
}

// decode unwraps {"data": ...} envelopes and falls back to the bare body
func decode[T any](body []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out, nil
	}

	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err == nil {
			if raw, ok := probe["data"]; ok {
				if err := json.Unmarshal(raw, &out); err != nil {
					return out, fmt.Errorf("failed to decode response data: %w", err)
				}
				return out, nil
			}
		}
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

// errorMessage extracts a message from common error body shapes
func errorMessage(body []byte) string {
	var shaped struct {
		Error        json.RawMessage `json:"error"`
		Message      string          `json:"message"`
		ErrorMessage string          `json:"error_message"`
	}
	if err := json.Unmarshal(body, &shaped); err != nil {
		return ""
	}
	if len(shaped.Error) > 0 {
		var s string
		if err := json.Unmarshal(shaped.Error, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(shaped.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
	}
	if shaped.ErrorMessage != "" {
		return shaped.ErrorMessage
	}
	return shaped.Message
}
