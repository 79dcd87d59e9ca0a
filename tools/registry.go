// Package tools declares the DokuWiki MCP tools and registers them against a
// wiki client with typed handlers.
package tools

// ToolSpec defines a tool's metadata for declarative registration.
// Each spec maps to a doku.Client MCP method with matching Args/Result types.
type ToolSpec struct {
	// Name is the MCP tool name (e.g., "dokuwiki_get_page")
	Name string

	// Method is the client method name (e.g., "GetPage")
	Method string

	// Description is the tool description shown to LLMs
	Description string

	// Title is the human-readable tool title for annotations
	Title string

	// Category groups tools logically (pages, media)
	Category string

	// ReadOnly indicates the tool doesn't modify wiki content
	ReadOnly bool

	// Destructive indicates the tool can overwrite existing content
	Destructive bool

	Idempotent bool
	OpenWorld  bool
}

func ptr[T any](v T) *T {
	return &v
}
