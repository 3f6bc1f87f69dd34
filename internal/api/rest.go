// Package api holds the REST clients for the directory and device vendor APIs.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Retry settings for connection-level failures. HTTP error statuses are not retried.
const (
	retryCount   = 3
	retryWait    = 500 * time.Millisecond
	retryMaxWait = 4 * time.Second
	timeout      = 30 * time.Second
)

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method   string
	URL      string
	Status   int
	Response string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Response)
}

// Client is a JSON REST adapter over a base URL with default headers.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient creates a client that retries transport failures with back-off.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	hc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil
		}).
		SetHeader("Accept", "application/json")
	return &Client{http: hc, log: log}
}

// SetHeader sets a header sent with every request.
func (c *Client) SetHeader(key, value string) *Client {
	c.http.SetHeader(key, value)
	return c
}

// Get issues a GET and decodes the JSON body into result. endpoint may be
// relative to the base URL or absolute.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, result any) error {
	req := c.http.R().SetContext(ctx).SetResult(result)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(endpoint)
	return c.check("GET", endpoint, resp, err)
}

// PostForm issues a form-encoded POST and decodes the JSON body into result.
func (c *Client) PostForm(ctx context.Context, endpoint string, form map[string]string, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(result).
		Post(endpoint)
	return c.check("POST", endpoint, resp, err)
}

func (c *Client) check(method, endpoint string, resp *resty.Response, err error) error {
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("endpoint", endpoint).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	c.log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode()).
		Dur("duration", resp.Time()).
		Msg("request complete")
	if resp.IsError() {
		serr := &StatusError{
			Method:   method,
			URL:      resp.Request.URL,
			Status:   resp.StatusCode(),
			Response: truncate(resp.String(), 200),
		}
		c.log.Error().Err(serr).Msg("request returned error status")
		return serr
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
