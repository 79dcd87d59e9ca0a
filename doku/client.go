// Package doku is a DokuWiki XML-RPC client: login, page text and media
// attachments.
package doku

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/internal/transport"
	"github.com/olgasafonova/dokuwiki-tools/metrics"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
	"github.com/olgasafonova/dokuwiki-tools/xmlrpc"
)

// XML-RPC method names
const (
	MethodLogin          = "dokuwiki.login"
	MethodGetPage        = "wiki.getPage"
	MethodPutPage        = "wiki.putPage"
	MethodGetAttachment  = "wiki.getAttachment"
	MethodPutAttachment  = "wiki.putAttachment"
	MethodGetAttachments = "wiki.getAttachments"
)

// Client talks to one DokuWiki instance. It is not safe for concurrent use.
type Client struct {
	config    Config
	transport *transport.Transport
	logger    *slog.Logger

	// Login state
	loginAttempted bool
	loggedIn       bool
}

// NewClient creates a client for the wiki described by config. Extra
// transport options (e.g. a test HTTP client) are applied after the defaults.
func NewClient(config Config, logger *slog.Logger, opts ...transport.Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Summary == "" {
		config.Summary = DefaultSummary
	}

	base := []transport.Option{transport.WithLogger(logger)}
	if config.Timeout > 0 {
		base = append(base, transport.WithTimeout(config.Timeout))
	}

	return &Client{
		config:    config,
		transport: transport.New(config.ServerRoot, append(base, opts...)...),
		logger:    logger,
	}
}

// Config returns the client's settings
func (c *Client) Config() Config {
	return c.config
}

// Endpoint returns the XML-RPC URL the client posts to
func (c *Client) Endpoint() string {
	return c.transport.Endpoint
}

// LoggedIn reports whether a login was accepted
func (c *Client) LoggedIn() bool {
	return c.loggedIn
}

// call performs one XML-RPC round trip: build, serialize, send, parse and
// fault check. persist is true only for the login method.
func (c *Client) call(ctx context.Context, method, target string, persist bool, params ...*xmlrpc.Node) (doc *xmlrpc.Node, err error) {
	ctx, span := tracing.StartSpan(ctx, "xmlrpc."+method)
	defer span.End()
	tracing.AddRPCAttributes(span, method, target)

	start := time.Now()
	defer func() {
		metrics.RecordRPCCall(method, time.Since(start).Seconds(), apierrors.Code(err))
		tracing.RecordError(span, err)
	}()

	req := xmlrpc.Request(method, params...)
	if err := xmlrpc.Validate(req); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	body := xmlrpc.Serialize(req)
	c.logger.Debug("xmlrpc call", "method", method, "target", target, "bytes", len(body))

	resp, err := c.transport.Send(ctx, body, persist)
	if err != nil {
		return nil, err
	}

	doc, err = xmlrpc.ParseResponse(resp)
	if err != nil {
		return nil, err
	}

	if fault, ok := xmlrpc.ExtractFault(doc); ok {
		return nil, &apierrors.FaultError{Method: method, Code: fault.Code, Message: fault.Message}
	}
	return doc, nil
}

// callText performs call and returns the first parameter's text.
func (c *Client) callText(ctx context.Context, method, target string, params ...*xmlrpc.Node) (string, error) {
	doc, err := c.call(ctx, method, target, false, params...)
	if err != nil {
		return "", err
	}
	text, ok := xmlrpc.ExtractText(doc, 0)
	if !ok {
		err = &apierrors.NoPayloadError{Method: method}
		metrics.RPCErrors.WithLabelValues(method, apierrors.Code(err)).Inc()
		return "", err
	}
	return text, nil
}
