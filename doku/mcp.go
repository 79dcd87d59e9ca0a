package doku

import (
	"context"
	"encoding/base64"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
)

// MCP Tool wrapper methods
// These log in on first use and then delegate to the client methods.

// GetPageMCP is the MCP wrapper for GetPage
func (c *Client) GetPageMCP(ctx context.Context, args GetPageArgs) (GetPageResult, error) {
	if err := ValidateID("id", args.ID); err != nil {
		return GetPageResult{}, err
	}
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return GetPageResult{}, err
	}

	content, err := c.GetPage(ctx, args.ID)
	if err != nil {
		return GetPageResult{}, err
	}
	return GetPageResult{ID: args.ID, Content: content, Size: len(content)}, nil
}

// PutPageMCP is the MCP wrapper for PutPage
func (c *Client) PutPageMCP(ctx context.Context, args PutPageArgs) (PutPageResult, error) {
	if err := ValidateID("id", args.ID); err != nil {
		return PutPageResult{}, err
	}
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return PutPageResult{}, err
	}

	result, err := c.PutPage(ctx, args.ID, args.Content)
	if err != nil {
		return PutPageResult{}, err
	}
	return PutPageResult{ID: args.ID, Result: result, Size: len(args.Content)}, nil
}

// ListAttachmentsMCP is the MCP wrapper for ListAttachments
func (c *Client) ListAttachmentsMCP(ctx context.Context, args ListAttachmentsArgs) (ListAttachmentsResult, error) {
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return ListAttachmentsResult{}, err
	}

	list, err := c.ListAttachments(ctx, args.Namespace)
	if err != nil {
		return ListAttachmentsResult{}, err
	}
	return ListAttachmentsResult{Namespace: args.Namespace, Count: len(list), Attachments: list}, nil
}

// GetAttachmentMCP is the MCP wrapper for GetAttachment
func (c *Client) GetAttachmentMCP(ctx context.Context, args GetAttachmentArgs) (GetAttachmentResult, error) {
	if err := ValidateID("id", args.ID); err != nil {
		return GetAttachmentResult{}, err
	}
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return GetAttachmentResult{}, err
	}

	data, err := c.GetAttachment(ctx, args.ID)
	if err != nil {
		return GetAttachmentResult{}, err
	}
	return GetAttachmentResult{
		ID:     args.ID,
		Size:   len(data),
		Base64: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// PutAttachmentMCP is the MCP wrapper for PutAttachment
func (c *Client) PutAttachmentMCP(ctx context.Context, args PutAttachmentArgs) (PutAttachmentResult, error) {
	if err := ValidateID("id", args.ID); err != nil {
		return PutAttachmentResult{}, err
	}
	data, err := base64.StdEncoding.DecodeString(args.Base64)
	if err != nil {
		return PutAttachmentResult{}, apierrors.NewValidationError("base64", "", "is not valid standard base64")
	}
	if err := c.EnsureLoggedIn(ctx); err != nil {
		return PutAttachmentResult{}, err
	}

	result, err := c.PutAttachment(ctx, args.ID, data)
	if err != nil {
		return PutAttachmentResult{}, err
	}
	return PutAttachmentResult{ID: args.ID, Size: len(data), Result: result}, nil
}
