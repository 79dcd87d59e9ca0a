package doku

// GetPageArgs contains parameters for reading a page
type GetPageArgs struct {
	ID string `json:"id" jsonschema:"Page id, namespaces separated by colons (e.g. wiki:start)"`
}

// GetPageResult is the result of reading a page
type GetPageResult struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Size    int    `json:"size"`
}

// PutPageArgs contains parameters for replacing a page's text
type PutPageArgs struct {
	ID      string `json:"id" jsonschema:"Page id to write (e.g. wiki:start)"`
	Content string `json:"content" jsonschema:"Full DokuWiki markup that replaces the page text"`
}

// PutPageResult is the result of writing a page
type PutPageResult struct {
	ID     string `json:"id"`
	Result string `json:"result"`
	Size   int    `json:"size"`
}

// ListAttachmentsArgs contains parameters for listing media files
type ListAttachmentsArgs struct {
	Namespace string `json:"namespace,omitempty" jsonschema:"Media namespace to list (empty for the root namespace)"`
}

// ListAttachmentsResult is the result of listing media files
type ListAttachmentsResult struct {
	Namespace   string       `json:"namespace"`
	Count       int          `json:"count"`
	Attachments []Attachment `json:"attachments"`
}

// GetAttachmentArgs contains parameters for downloading a media file
type GetAttachmentArgs struct {
	ID string `json:"id" jsonschema:"Media id (e.g. wiki:logo.png)"`
}

// GetAttachmentResult carries the file bytes as standard base64
type GetAttachmentResult struct {
	ID     string `json:"id"`
	Size   int    `json:"size"`
	Base64 string `json:"base64"`
}

// PutAttachmentArgs contains parameters for uploading a media file
type PutAttachmentArgs struct {
	ID     string `json:"id" jsonschema:"Media id to create (e.g. wiki:logo.png)"`
	Base64 string `json:"base64" jsonschema:"File contents encoded as standard base64"`
}

// PutAttachmentResult is the result of uploading a media file
type PutAttachmentResult struct {
	ID     string `json:"id"`
	Size   int    `json:"size"`
	Result string `json:"result"`
}
