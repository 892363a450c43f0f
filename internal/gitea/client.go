// Package gitea is the authenticated HTTP gateway to a Gitea forge's REST
// API. Responses are normalized into typed records at this boundary; no
// loosely shaped payloads escape into the presentation layer.
package gitea

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"forgectl/internal/logging"
)

const apiSuffix = "/api/v1"

// APIError is a non-2xx HTTP response from the forge. It carries the
// failing endpoint for diagnosability; transport errors are not wrapped in
// it and propagate with their original message.
type APIError struct {
	Status     int
	StatusText string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("forge API error on %s: %d %s", e.Endpoint, e.Status, e.StatusText)
}

// Client issues authenticated requests against one forge server.
//
// The base URL is normalized at construction (https:// prepended when no
// scheme is given, /api/v1 appended when missing). Before the first real
// request the client runs a one-time protocol probe against the version
// endpoint: if HTTPS fails with an SSL-class error the same endpoint is
// retried over plain HTTP, and whichever succeeds becomes the permanent
// base URL for this instance. Probe failure on both protocols is not fatal;
// later requests proceed against the original URL and surface their own
// errors naturally.
type Client struct {
	baseURL  string
	token    string
	insecure bool
	probed   bool

	detectOnce sync.Once
	hc         *http.Client
	probe      *http.Client
	logger     *logging.AppLogger
}

// Option configures a Client.
type Option func(*Client)

// WithInsecureTLS disables certificate verification for all requests,
// mirroring the trust-insecure-certificates setting.
func WithInsecureTLS(insecure bool) Option {
	return func(c *Client) { c.insecure = insecure }
}

// WithLogger attaches a logger to the client.
func WithLogger(logger *logging.AppLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient overrides the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
		c.probe = hc
	}
}

// NewClient creates a client for the given server and token.
// The server may be a bare hostname ("gitea.example.org"), a URL without
// the API suffix, or a full API base URL.
func NewClient(server, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: NormalizeBaseURL(server),
		token:   token,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.hc == nil {
		c.hc = &http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: c.insecure},
		}}
	}
	if c.probe == nil {
		// The probe always skips verification: its job is to find out
		// whether the endpoint speaks TLS at all, not to trust it.
		c.probe = &http.Client{Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}}
	}

	return c
}

// NormalizeBaseURL turns a configured host into a full API base URL.
func NormalizeBaseURL(server string) string {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		return server
	}
	if !strings.Contains(server, "://") {
		server = "https://" + server
	}
	if !strings.HasSuffix(server, apiSuffix) {
		server += apiSuffix
	}
	return server
}

// BaseURL returns the client's current base URL, after any protocol
// detection that has already run.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// sslErrorPatterns identify handshake/protocol/cert-verification failures
// that justify falling back from HTTPS to plain HTTP during detection.
var sslErrorPatterns = []string{
	"tls:",
	"x509:",
	"certificate",
	"handshake failure",
	"ssl",
	"first record does not look like a tls handshake",
}

func isSSLError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range sslErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// ensureProtocol runs the lazy one-time protocol probe. Requests can arrive
// concurrently (bubbletea commands run in their own goroutines against the
// same client), so detection is guarded by a sync.Once: the first caller
// performs it, later callers block until the base URL is settled.
func (c *Client) ensureProtocol(ctx context.Context) {
	c.detectOnce.Do(func() { c.detectProtocol(ctx) })
}

// detectProtocol never returns an error: detection failure leaves the
// original URL in place and later requests surface their own failures.
// Only ever called through ensureProtocol's Once.
func (c *Client) detectProtocol(ctx context.Context) {
	c.probed = true

	if !strings.HasPrefix(c.baseURL, "https://") {
		return
	}

	err := c.probeVersion(ctx, c.baseURL)
	if err == nil {
		if c.logger != nil {
			c.logger.Debug("Protocol probe succeeded over HTTPS", "base_url", c.baseURL)
		}
		return
	}

	if !isSSLError(err) {
		if c.logger != nil {
			c.logger.Debug("Protocol probe failed with non-SSL error, keeping HTTPS", "error", err)
		}
		return
	}

	fallback := "http://" + strings.TrimPrefix(c.baseURL, "https://")
	if probeErr := c.probeVersion(ctx, fallback); probeErr == nil {
		if c.logger != nil {
			c.logger.Info("Forge does not speak HTTPS, falling back to HTTP", "base_url", fallback)
		}
		c.baseURL = fallback
		return
	}

	if c.logger != nil {
		c.logger.Warn("Protocol probe failed on both HTTPS and HTTP, keeping original URL",
			"base_url", c.baseURL)
	}
}

// probeVersion hits the lightweight version endpoint under the given base URL.
func (c *Client) probeVersion(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/version", nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.probe.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, StatusText: resp.Status, Endpoint: "/version"}
	}
	return nil
}

// do executes one API request. Transport errors propagate unchanged,
// non-2xx responses become *APIError, and the JSON body is decoded into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	c.ensureProtocol(ctx)

	if c.logger != nil {
		defer c.logger.LogPerformance("api "+method+" "+endpoint, time.Now())
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug("Forge API request", "method", method, "endpoint", endpoint)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &APIError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Endpoint:   endpoint,
		}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) patch(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPatch, endpoint, body, out)
}

// Version fetches the forge server version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v serverVersion
	if err := c.get(ctx, "/version", &v); err != nil {
		return "", err
	}
	return v.Version, nil
}
