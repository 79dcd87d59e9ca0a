package doku

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/metrics"
	"github.com/olgasafonova/dokuwiki-tools/xmlrpc"
)

// Attachment describes one media file returned by wiki.getAttachments.
// Fields keeps every member the server sent.
type Attachment struct {
	ID     string            `json:"id"`
	File   string            `json:"file"`
	Size   int64             `json:"size"`
	Fields map[string]string `json:"fields,omitempty"`
}

// GetAttachment downloads the media file id.
func (c *Client) GetAttachment(ctx context.Context, id string) ([]byte, error) {
	text, err := c.callText(ctx, MethodGetAttachment, id, xmlrpc.String(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", id, err)
	}

	data, err := xmlrpc.DecodeBase64(text)
	if err != nil {
		return nil, &apierrors.DecodeError{Method: MethodGetAttachment, Err: err}
	}
	metrics.RecordContentSize("get_attachment", len(data))
	return data, nil
}

// PutAttachment uploads data as media file id.
func (c *Client) PutAttachment(ctx context.Context, id string, data []byte) (string, error) {
	text, err := c.callText(ctx, MethodPutAttachment, id, xmlrpc.String(id), xmlrpc.Base64(data))
	if err != nil {
		return "", fmt.Errorf("failed to put attachment %s: %w", id, err)
	}
	metrics.RecordContentSize("put_attachment", len(data))
	return text, nil
}

// ListAttachments returns the media files in namespace.
func (c *Client) ListAttachments(ctx context.Context, namespace string) ([]Attachment, error) {
	doc, err := c.call(ctx, MethodGetAttachments, namespace, false, xmlrpc.String(namespace))
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments in %s: %w", namespace, err)
	}

	value, ok := xmlrpc.ExtractParam(doc, 0)
	if !ok {
		return nil, &apierrors.NoPayloadError{Method: MethodGetAttachments}
	}
	items, ok := xmlrpc.ArrayItems(value)
	if !ok {
		return nil, &apierrors.NoPayloadError{
			Method: MethodGetAttachments,
			Detail: "expected array, got " + value.Name,
		}
	}

	attachments := make([]Attachment, 0, len(items))
	for i, item := range items {
		fields, ok := xmlrpc.StructFields(item)
		if !ok {
			c.logger.Warn("Skipping non-struct attachment entry", "index", i, "namespace", namespace)
			continue
		}
		attachments = append(attachments, attachmentFromFields(fields))
	}

	c.logger.Debug("Listed attachments", "namespace", namespace, "count", len(attachments))
	return attachments, nil
}

func attachmentFromFields(fields map[string]string) Attachment {
	a := Attachment{
		ID:     fields["id"],
		File:   fields["file"],
		Fields: fields,
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(fields["size"]), 10, 64); err == nil {
		a.Size = n
	}
	return a
}
