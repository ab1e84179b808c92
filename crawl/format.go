package crawl

import "fmt"

// TruncateURL fits url into width bytes. Long URLs keep their tail, where
// the table file name is, behind a "..." marker; widths too small for the
// marker keep the head instead.
func TruncateURL(url string, width int) string {
	switch {
	case width <= 0:
		return ""
	case len(url) <= width:
		return url
	case width < 4:
		return url[:width]
	}
	return "..." + url[len(url)-(width-3):]
}

// FormatProgress formats a progress event as a single status line.
func FormatProgress(event ProgressEvent, maxURLLen int) string {
	switch event.Type {
	case ProgressStarted:
		return fmt.Sprintf("fetching %d search tables", event.Total)
	case ProgressCompleted:
		return fmt.Sprintf("  [%d/%d] %s", event.Completed, event.Total, TruncateURL(event.URL, maxURLLen))
	case ProgressRetrying:
		return fmt.Sprintf("  retry %s (attempt %d): %v", TruncateURL(event.URL, maxURLLen), event.Attempt, event.Error)
	case ProgressFailed:
		return fmt.Sprintf("  failed %s: %v", TruncateURL(event.URL, maxURLLen), event.Error)
	case ProgressFinished:
		return fmt.Sprintf("fetched %d search tables", event.Total)
	default:
		return ""
	}
}
