// Package transport posts XML-RPC request bodies to a DokuWiki endpoint and
// carries the login session cookie across calls.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/metrics"
)

const (
	// EndpointPath is appended to the configured server root
	EndpointPath = "/lib/exe/xmlrpc.php"

	// DefaultUserAgent identifies the tools to the wiki
	DefaultUserAgent = "dokuwiki-tools/1.0 (github.com/olgasafonova/dokuwiki-tools)"
)

// Transport performs exactly one HTTP POST per call. It is not safe for
// concurrent use; callers serialize access.
type Transport struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Endpoint   string
	UserAgent  string

	// Session cookies captured from the last call made with persistCookies.
	cookies []*http.Cookie

	// applied to HTTPClient once all options have run
	timeout time.Duration
}

// Option configures the Transport
type Option func(*Transport)

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.HTTPClient = c
		}
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		t.Logger = l
	}
}

// WithTimeout bounds each round trip. Zero keeps the HTTP client's own
// timeout. It applies regardless of where WithHTTPClient appears.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.timeout = d
	}
}

// EndpointFor derives the XML-RPC endpoint from a server root such as
// https://wiki.example.com/wiki.
func EndpointFor(serverRoot string) string {
	return strings.TrimRight(serverRoot, "/") + EndpointPath
}

// New creates a Transport for the wiki rooted at serverRoot.
//
// TLS certificate verification is disabled so that self-signed internal
// servers work. This is a known security caveat.
func New(serverRoot string, opts ...Option) *Transport {
	t := &Transport{
		HTTPClient: newHTTPClient(),
		Logger:     slog.Default(),
		Endpoint:   EndpointFor(serverRoot),
		UserAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.timeout > 0 {
		t.HTTPClient.Timeout = t.timeout
	}
	t.Logger.Warn("TLS certificate verification disabled", "endpoint", t.Endpoint)
	return t
}

// Send posts body and returns the response body. When persistCookies is
// true the response's cookies replace the stored session; stored cookies are
// attached to every request. No retry is performed.
func (t *Transport) Send(ctx context.Context, body string, persistCookies bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, strings.NewReader(body))
	if err != nil {
		return "", &apierrors.TransportError{Endpoint: t.Endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("User-Agent", t.UserAgent)
	for _, c := range t.cookies {
		req.AddCookie(c)
	}

	t.Logger.Debug("post", "endpoint", t.Endpoint, "bytes", len(body), "cookies", len(t.cookies))

	start := time.Now()
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		metrics.RecordHTTP(0, time.Since(start).Seconds())
		return "", &apierrors.TransportError{Endpoint: t.Endpoint, Err: err}
	}

	data, err := readAndClose(resp)
	metrics.RecordHTTP(resp.StatusCode, time.Since(start).Seconds())
	if err != nil {
		return "", &apierrors.TransportError{Endpoint: t.Endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &apierrors.TransportError{
			Endpoint:   t.Endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", truncate(string(data), 200)),
		}
	}

	if persistCookies {
		t.cookies = resp.Cookies()
		t.Logger.Debug("session cookies stored", "count", len(t.cookies))
	}

	t.Logger.Debug("response", "status", resp.StatusCode, "body", string(data))
	return string(data), nil
}

// HasSession reports whether session cookies are stored.
func (t *Transport) HasSession() bool {
	return len(t.cookies) > 0
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return body, err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client without a default timeout
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // self-signed internal wikis
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
	}
}
