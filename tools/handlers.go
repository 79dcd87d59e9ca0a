package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/dokuwiki-tools/doku"
	"github.com/olgasafonova/dokuwiki-tools/metrics"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
)

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	client *doku.Client
	logger *slog.Logger

	// mu serializes calls into client; its session state is not synchronized.
	mu sync.Mutex
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(client *doku.Client, logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{
		client: client,
		logger: logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	registered := 0
	for _, spec := range AllTools {
		if h.registerByName(server, spec) {
			registered++
		}
	}
	h.logger.Info("Registered all tools", "count", registered)
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) bool {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "GetPage":
		register(h, server, tool, spec, h.client.GetPageMCP)
	case "PutPage":
		register(h, server, tool, spec, h.client.PutPageMCP)
	case "ListAttachments":
		register(h, server, tool, spec, h.client.ListAttachmentsMCP)
	case "GetAttachment":
		register(h, server, tool, spec, h.client.GetAttachmentMCP)
	case "PutAttachment":
		register(h, server, tool, spec, h.client.PutAttachmentMCP)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
		return false
	}
	return true
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
	}
	if spec.Destructive {
		annotations.DestructiveHint = ptr(true)
	} else if !spec.ReadOnly {
		annotations.DestructiveHint = ptr(false)
	}
	if spec.OpenWorld {
		annotations.OpenWorldHint = ptr(true)
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register adds one tool to the server, wrapping the client method with
// panic recovery, metrics, tracing and logging.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (*mcp.CallToolResult, Result, error) {
		result, err := invoke(h, ctx, spec, args, method)
		if err != nil {
			var zero Result
			return nil, zero, err
		}
		return nil, result, nil
	})
}

// invoke runs one tool call. It is separate from register so handlers can be
// exercised without an MCP session.
func invoke[Args, Result any](
	h *HandlerRegistry,
	ctx context.Context,
	spec ToolSpec,
	args Args,
	method func(context.Context, Args) (Result, error),
) (result Result, err error) {
	defer h.recoverPanic(spec.Name, &err)

	ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
	defer span.End()
	tracing.AddToolAttributes(span, spec.Name, spec.Category)
	span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

	metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
	defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	result, err = method(ctx, args)
	duration := time.Since(start).Seconds()

	span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRequest(spec.Name, duration, false)
		return result, fmt.Errorf("%s failed: %w", spec.Name, err)
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordRequest(spec.Name, duration, true)
	h.logExecution(spec, args, result)
	return result, nil
}

// recoverPanic turns a panic in a tool handler into an error.
func (h *HandlerRegistry) recoverPanic(toolName string, errp *error) {
	if rec := recover(); rec != nil {
		metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
		h.logger.Error("Panic recovered",
			"tool", toolName,
			"panic", rec,
			"stack", string(debug.Stack()))
		if errp != nil {
			*errp = fmt.Errorf("%s: internal error: %v", toolName, rec)
		}
	}
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	switch a := args.(type) {
	case doku.GetPageArgs:
		attrs = append(attrs, "page", a.ID)
	case doku.PutPageArgs:
		attrs = append(attrs, "page", a.ID, "input_chars", len(a.Content))
	case doku.ListAttachmentsArgs:
		attrs = append(attrs, "namespace", a.Namespace)
	case doku.GetAttachmentArgs:
		attrs = append(attrs, "media", a.ID)
	case doku.PutAttachmentArgs:
		attrs = append(attrs, "media", a.ID)
	}

	switch r := result.(type) {
	case doku.GetPageResult:
		attrs = append(attrs, "bytes", r.Size)
	case doku.PutPageResult:
		attrs = append(attrs, "result", r.Result)
	case doku.ListAttachmentsResult:
		attrs = append(attrs, "attachments", r.Count)
	case doku.GetAttachmentResult:
		attrs = append(attrs, "bytes", r.Size)
	case doku.PutAttachmentResult:
		attrs = append(attrs, "bytes", r.Size, "result", r.Result)
	}

	h.logger.Info("Tool executed", attrs...)
}
