package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doxindex"
)

// Ensure LoggingIndexLoader implements doxindex.IndexLoader.
var _ doxindex.IndexLoader = (*LoggingIndexLoader)(nil)

// LoggingIndexLoader wraps an IndexLoader with logging.
type LoggingIndexLoader struct {
	next   doxindex.IndexLoader
	logger *slog.Logger
}

// NewLoggingIndexLoader creates a new LoggingIndexLoader.
func NewLoggingIndexLoader(next doxindex.IndexLoader, logger *slog.Logger) *LoggingIndexLoader {
	return &LoggingIndexLoader{next: next, logger: logger}
}

// LoadIndex delegates to the wrapped loader and logs the table size.
func (l *LoggingIndexLoader) LoadIndex(ctx context.Context, source string) (idx *doxindex.Index, err error) {
	defer func(begin time.Time) {
		var entries, occurrences int
		if idx != nil {
			entries, occurrences = idx.Len(), idx.OccurrenceCount()
		}
		l.logger.Info("load index",
			"source", source,
			"entries", entries,
			"occurrences", occurrences,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.LoadIndex(ctx, source)
}
