// Package client is a typed client for the back office REST API.
package client

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

	"github.com/google/go-querystring/query"

	"github.com/sapphiretrails/backoffice/pkg/logger"
)

// ErrUnreachable wraps every transport level failure.
var ErrUnreachable = errors.New("could not connect to the server")

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
	Code    string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Token() string { return c.token }

func (c *Client) SetToken(token string) { c.token = token }

type errorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, q any, body any) (*http.Request, error) {
	url := c.baseURL + path
	if q != nil {
		v, err := query.Values(q)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		if enc := v.Encode(); enc != "" {
			url += "?" + enc
		}
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}
	return req, nil
}

// send performs req and returns the raw body of a 2xx response.
func (c *Client) send(req *http.Request) ([]byte, error) {
	logger.DebugContext(req.Context(), "api request", "method", req.Method, "url", req.URL.String())

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Status: res.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil && env.Message != "" {
			apiErr.Message, apiErr.Code, apiErr.Fields = env.Message, env.Code, env.Fields
		} else {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, path string, q, body, out any) error {
	req, err := c.newRequest(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	data, err := c.send(req)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
