// Package apiclient is a small JSON client for the notes API. Every call takes
// the bearer token explicitly; an empty token sends an anonymous request.
package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	// Location names the offending field of a validation error.
	Location string
}

func (e *APIError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("api: %d %s (%s)", e.StatusCode, e.Message, e.Location)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client issues requests against a single API base URL.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fiber.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: defaultTimeout,
		http: &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search issues a GET with query parameters and decodes the result into out.
func (c *Client) Search(path string, query url.Values, token string, out interface{}) error {
	a := c.http.Get(c.baseURL + path)
	if len(query) > 0 {
		a.QueryString(query.Encode())
	}
	return c.do(a, token, out)
}

// Details fetches a single resource.
func (c *Client) Details(path, token string, out interface{}) error {
	return c.do(c.http.Get(c.baseURL+path), token, out)
}

// Create POSTs body as JSON.
func (c *Client) Create(path string, body interface{}, token string, out interface{}) error {
	return c.do(c.http.Post(c.baseURL+path).JSON(body), token, out)
}

// Update PUTs body as JSON.
func (c *Client) Update(path string, body interface{}, token string, out interface{}) error {
	return c.do(c.http.Put(c.baseURL+path).JSON(body), token, out)
}

// Remove DELETEs a resource.
func (c *Client) Remove(path, token string) error {
	return c.do(c.http.Delete(c.baseURL+path), token, nil)
}

func (c *Client) do(a *fiber.Agent, token string, out interface{}) error {
	if token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.Timeout(c.timeout)

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("api request failed: %w", errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		return decodeError(code, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode api response: %w", err)
	}
	return nil
}

func decodeError(code int, body []byte) error {
	apiErr := &APIError{StatusCode: code}
	var envelope struct {
		Message  string `json:"message"`
		Location string `json:"location"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
		apiErr.Location = envelope.Location
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
