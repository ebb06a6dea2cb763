package domain

// PreviewLimit is the maximum number of characters in a source content preview.
const PreviewLimit = 200

// UnknownTitle is used for documents indexed without a title.
const UnknownTitle = "Unknown"

// Document is a record retrieved from the vector index.
type Document struct {
	Title    string
	Content  string
	Metadata map[string]any
}

// DisplayTitle returns the document title, or UnknownTitle when absent.
func (d Document) DisplayTitle() string {
	if d.Title == "" {
		return UnknownTitle
	}
	return d.Title
}

// Source is the response-facing view of a retrieved document.
type Source struct {
	Title          string         `json:"title"`
	ContentPreview string         `json:"content_preview"`
	Metadata       map[string]any `json:"metadata"`
}

// SourceOf builds the response view of a document: title defaulted, content
// truncated to PreviewLimit characters with an ellipsis iff it was longer.
func SourceOf(d Document) Source {
	meta := d.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return Source{
		Title:          d.DisplayTitle(),
		ContentPreview: previewOf(d.Content),
		Metadata:       meta,
	}
}

// previewOf truncates content at PreviewLimit characters, not bytes.
func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLimit {
		return content
	}
	return string(runes[:PreviewLimit]) + "..."
}
