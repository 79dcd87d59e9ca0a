package tools

// AllTools contains all tool specifications for the DokuWiki MCP server.
// Descriptions follow a fixed layout so an LLM can pick the right tool:
// USE WHEN, NOT FOR, PARAMETERS, RETURNS.
var AllTools = []ToolSpec{
	// ==========================================================================
	// PAGE TOOLS
	// ==========================================================================
	{
		Name:     "dokuwiki_get_page",
		Method:   "GetPage",
		Title:    "Get Page",
		Category: "pages",
		Description: `Read the raw DokuWiki markup of a page.

USE WHEN: User asks "show me page X", "what does the wiki say on X", or wants to edit a page and needs its current text first.

NOT FOR: Media files such as images or PDFs (use dokuwiki_get_attachment).

PARAMETERS:
- id: Page id with colon-separated namespaces, e.g. "wiki:start" (required)

RETURNS: Page id, markup text and its size in bytes. A page that does not exist returns empty content.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "dokuwiki_put_page",
		Method:   "PutPage",
		Title:    "Put Page",
		Category: "pages",
		Description: `Replace the full text of a page, creating it when missing. Saved as a minor edit.

USE WHEN: User says "update page X", "publish this to the wiki", "create a page for X".

NOT FOR: Uploading images or files (use dokuwiki_put_attachment).

PARAMETERS:
- id: Page id, e.g. "test:start" (required)
- content: Complete DokuWiki markup; the previous text is overwritten (required)

RETURNS: The server's result value for the save.`,
		Destructive: true,
		Idempotent:  true,
		OpenWorld:   true,
	},

	// ==========================================================================
	// MEDIA TOOLS
	// ==========================================================================
	{
		Name:     "dokuwiki_list_attachments",
		Method:   "ListAttachments",
		Title:    "List Attachments",
		Category: "media",
		Description: `List media files stored in a namespace.

USE WHEN: User asks "which images are in namespace X", "list uploaded files", or needs media ids before downloading.

NOT FOR: Listing pages.

PARAMETERS:
- namespace: Media namespace, e.g. "wiki" (empty for the root namespace)

RETURNS: Count plus one record per file with id, file name, size and any extra fields the server reports.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "dokuwiki_get_attachment",
		Method:   "GetAttachment",
		Title:    "Get Attachment",
		Category: "media",
		Description: `Download a media file.

USE WHEN: User wants the contents of an uploaded image or document.

NOT FOR: Page text (use dokuwiki_get_page).

PARAMETERS:
- id: Media id, e.g. "wiki:logo.png" (required)

RETURNS: File bytes encoded as standard base64, and the decoded size.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "dokuwiki_put_attachment",
		Method:   "PutAttachment",
		Title:    "Put Attachment",
		Category: "media",
		Description: `Upload a media file.

USE WHEN: User says "upload this image to namespace X", "attach this file to the wiki".

NOT FOR: Page markup (use dokuwiki_put_page).

PARAMETERS:
- id: Media id to create, e.g. "test:data.jpeg" (required)
- base64: File contents as standard base64 (required)

RETURNS: The server's result value, usually the stored media id.`,
		Destructive: true,
		OpenWorld:   true,
	},
}

// ToolsByCategory returns the tools in the given category.
func ToolsByCategory(category string) []ToolSpec {
	var result []ToolSpec
	for _, spec := range AllTools {
		if spec.Category == category {
			result = append(result, spec)
		}
	}
	return result
}
