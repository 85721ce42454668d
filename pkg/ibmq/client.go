// Package ibmq is a client for an IBM-Quantum-style pulse service. The
// REST surface is small: list backends, fetch a backend's configuration
// and status, submit an assembled qobj, poll or cancel the resulting
// job. Job status transitions can also be streamed over a WebSocket
// instead of polling. The client implements the provider interfaces, so
// everything that runs against the local simulator runs against a
// remote account unchanged.
//
// Endpoints, relative to the account URL:
//
//	GET  /backends                   list backends with configurations
//	GET  /backends/{name}            one backend
//	GET  /backends/{name}/status     availability snapshot
//	POST /jobs                       submit a qobj payload
//	GET  /jobs/{id}                  job state, results when terminal
//	POST /jobs/{id}/cancel           request cancellation
//	WS   /jobs/{id}/status           status transition stream
package ibmq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cjliu20152/qiskit/pkg/logger"
)

const defaultTimeout = 30 * time.Second

// Client talks to one account endpoint with one token.
type Client struct {
	base  *url.URL
	token string
	hc    *http.Client
	log   logger.Logger
}

// ClientOpts carries the optional client knobs.
type ClientOpts struct {
	// HTTPClient overrides the default client (30s timeout).
	HTTPClient *http.Client
	// Logger receives request/response debug lines.
	Logger logger.Logger
}

// NewClient validates the account URL and returns a client. The token
// is sent as a bearer credential on every request.
func NewClient(baseURL, token string, opts *ClientOpts) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoURL
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse account url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("account url %q: %w", baseURL, ErrBadURL)
	}
	if opts == nil {
		opts = &ClientOpts{}
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	l := opts.Logger
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Client{base: u, token: token, hc: hc, log: l}, nil
}

// Backends fetches every backend of the account.
func (c *Client) Backends(ctx context.Context) ([]BackendPayload, error) {
	var out []BackendPayload
	if err := c.get(ctx, "backends", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BackendByName fetches one backend.
func (c *Client) BackendByName(ctx context.Context, name string) (*BackendPayload, error) {
	var out BackendPayload
	if err := c.get(ctx, "backends/"+url.PathEscape(name), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BackendStatus fetches the availability snapshot of one backend.
func (c *Client) BackendStatus(ctx context.Context, name string) (*StatusPayload, error) {
	var out StatusPayload
	if err := c.get(ctx, "backends/"+url.PathEscape(name)+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitJob posts an assembled qobj and returns the accepted job row.
func (c *Client) SubmitJob(ctx context.Context, req *SubmitRequest) (*JobPayload, error) {
	var out JobPayload
	if err := c.post(ctx, "jobs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Job fetches one job row, including results once terminal.
func (c *Client) Job(ctx context.Context, id string) (*JobPayload, error) {
	var out JobPayload
	if err := c.get(ctx, "jobs/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelJob requests cancellation and returns the updated row.
func (c *Client) CancelJob(ctx context.Context, id string) (*JobPayload, error) {
	var out JobPayload
	if err := c.post(ctx, "jobs/"+url.PathEscape(id)+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint := c.endpoint(path)
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.log.Info("ibmq: %s %s", method, path)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return c.apiError(resp, method, path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// endpoint joins the account URL with an API path.
func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	return u.String()
}

// apiError maps an error response to a sentinel wrapped with the
// service's message.
func (c *Client) apiError(resp *http.Response, method, path string) error {
	var payload ErrorPayload
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &payload)

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = ErrUnauthorized
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	default:
		sentinel = ErrAPI
	}
	msg := payload.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%s %s: %s (code %s): %w", method, path, msg, payload.Error.Code, sentinel)
}
