package doxindex

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be a documentation block (e.g., from an Extractor).
	Convert(html string) (string, error)
}
