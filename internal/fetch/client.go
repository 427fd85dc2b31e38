// Package fetch performs the bounded HTTP downloads made by network feeds.
//
// A feed adapter must never block indefinitely: every [Client.Get] carries
// its own deadline and accepts at most 1MB of body. Anything other than a
// complete 200 OK reply is an error, so adapters only ever see a body they
// can decode.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
)

const (
	maxBodySize    = 1 << 20 // 1MB
	maxSnippetSize = 200

	defaultTimeout = 30 * time.Second
)

// Request describes one download.
type Request struct {
	URL string

	// Accept and UserAgent are sent when non-empty.
	Accept    string
	UserAgent string

	// Timeout bounds the whole exchange, body included. Defaults to 30s.
	Timeout time.Duration
}

// Response is a successful download.
type Response struct {
	Body []byte

	// Latency covers the request and the full body read.
	Latency time.Duration
}

// StatusError is returned when the server answers with a status other than
// 200 OK. Body holds the start of the reply for diagnostics.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Client downloads documents for feed adapters. HTTPS connections
// negotiate HTTP/2 when the server offers it and idle connections are
// reused between attempts.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new [Client].
func NewClient() *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// only fails when the transport already speaks h2, which a new one cannot
	_ = http2.ConfigureTransport(transport)

	return &Client{
		httpClient: &http.Client{Transport: transport},
	}
}

// Get downloads req.URL.
//
// Errors are returned for an unusable request, a transport failure or
// timeout, a body over 1MB, and as a [*StatusError] for any status other
// than 200 OK.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}
	if req.UserAgent != "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// one byte past the limit tells a full body from an oversized one
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: snippet(body)}
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", maxBodySize)
	}

	return &Response{Body: body, Latency: time.Since(start)}, nil
}

// Close closes idle connections. The client stays usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetSize {
		s = s[:maxSnippetSize] + "..."
	}
	return s
}
