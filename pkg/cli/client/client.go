package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when the caller does not configure one.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the scraping service API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	// Remove trailing slash from base URL
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildRequest creates an HTTP request with proper headers
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, newInvalidRequestError("failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	return req, nil
}

// doRequest performs an HTTP request and handles the response
func (c *Client) doRequest(req *http.Request, result any) error {
	start := time.Now()
	requestID := req.Header.Get("X-Request-ID")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", requestID, "error", err)
		return newNetworkError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(fmt.Errorf("failed to read response: %w", err))
	}

	// Check for HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, errorMessage(resp, body))
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return newDecodeError(err)
		}
	}

	return nil
}

// errorMessage extracts a human readable message from an error response.
// The service answers with {"detail": ...}; {"error": ...} is accepted too.
func errorMessage(resp *http.Response, body []byte) string {
	var errorResp struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if len(errorResp.Detail) > 0 {
			var detail string
			if err := json.Unmarshal(errorResp.Detail, &detail); err == nil && detail != "" {
				return detail
			}
			return string(errorResp.Detail)
		}
		if errorResp.Error != "" {
			return errorResp.Error
		}
	}

	// If JSON parsing failed, return the raw body
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}
	return msg
}

// doJSONRequest performs a JSON request (POST, PUT, PATCH)
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload any, result any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return newInvalidRequestError("failed to marshal request", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// doGetRequest performs a GET request
func (c *Client) doGetRequest(ctx context.Context, path string, result any) error {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	return c.doRequest(req, result)
}

// IsNotFound reports whether err is a 404 answer from the service
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
