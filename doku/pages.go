package doku

import (
	"context"
	"fmt"
	"strings"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/metrics"
	"github.com/olgasafonova/dokuwiki-tools/xmlrpc"
)

// Login calls dokuwiki.login and stores the session cookie the server sets.
// A rejected login is reported as false with a nil error unless StrictLogin
// is set.
func (c *Client) Login(ctx context.Context, user, pass string) (bool, error) {
	doc, err := c.call(ctx, MethodLogin, user, true, xmlrpc.String(user), xmlrpc.String(pass))
	if err != nil {
		return false, fmt.Errorf("login failed: %w", err)
	}

	text, _ := xmlrpc.ExtractText(doc, 0)
	accepted := isTrue(text)
	metrics.RecordLogin(accepted)
	c.loginAttempted = true
	c.loggedIn = accepted

	if !accepted {
		if c.config.StrictLogin {
			return false, &apierrors.LoginFailedError{User: user}
		}
		c.logger.Warn("Login rejected, continuing anonymously", "user", user)
		return false, nil
	}

	c.logger.Info("Successfully logged in", "user", user)
	return true, nil
}

// EnsureLoggedIn logs in with the configured credentials the first time it
// is called. Without credentials it does nothing.
func (c *Client) EnsureLoggedIn(ctx context.Context) error {
	if c.loginAttempted {
		return nil
	}
	if !c.config.HasCredentials() {
		c.loginAttempted = true
		c.logger.Debug("No credentials configured, using anonymous access")
		return nil
	}
	_, err := c.Login(ctx, c.config.User, c.config.Password)
	return err
}

// GetPage returns the raw wiki text of pageID. A page that does not exist
// comes back as an empty string.
func (c *Client) GetPage(ctx context.Context, pageID string) (string, error) {
	text, err := c.callText(ctx, MethodGetPage, pageID, xmlrpc.String(pageID))
	if err != nil {
		return "", fmt.Errorf("failed to get page %s: %w", pageID, err)
	}
	metrics.RecordContentSize("get_page", len(text))
	return text, nil
}

// PutPage replaces the text of pageID. The edit is marked minor and carries
// the configured summary.
func (c *Client) PutPage(ctx context.Context, pageID, content string) (string, error) {
	attrs := xmlrpc.Struct(
		xmlrpc.Member("sum", xmlrpc.String(c.config.Summary)),
		xmlrpc.Member("minor", xmlrpc.Boolean(true)),
	)
	text, err := c.callText(ctx, MethodPutPage, pageID, xmlrpc.String(pageID), xmlrpc.String(content), attrs)
	if err != nil {
		return "", fmt.Errorf("failed to put page %s: %w", pageID, err)
	}
	metrics.RecordContentSize("put_page", len(content))
	return text, nil
}

// isTrue interprets an XML-RPC boolean or string result.
func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true
	}
	return false
}
