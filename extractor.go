package doxindex

// ExtractResult holds the documentation extracted for one occurrence.
type ExtractResult struct {
	// Title is the member or page title.
	Title string

	// ContentHTML is the documentation block as HTML.
	ContentHTML string
}

// Extractor extracts the documentation an occurrence points at.
type Extractor interface {
	// Extract locates the element identified by anchor in a generated page
	// and returns its documentation block. An empty anchor selects the
	// main contents of the page.
	// Returns ENOTFOUND if the anchor does not exist in the page.
	Extract(html, anchor string) (*ExtractResult, error)
}
