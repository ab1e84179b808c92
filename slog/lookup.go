package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doxindex"
)

// Ensure LoggingLookupService implements doxindex.LookupService.
var _ doxindex.LookupService = (*LoggingLookupService)(nil)

// LoggingLookupService wraps a LookupService with logging.
type LoggingLookupService struct {
	next   doxindex.LookupService
	logger *slog.Logger
}

// NewLoggingLookupService creates a new LoggingLookupService.
func NewLoggingLookupService(next doxindex.LookupService, logger *slog.Logger) *LoggingLookupService {
	return &LoggingLookupService{next: next, logger: logger}
}

// Lookup delegates to the wrapped service and logs the query.
func (s *LoggingLookupService) Lookup(ctx context.Context, projectID, query string, limit int) (entries []*doxindex.Entry, err error) {
	defer func(begin time.Time) {
		s.logger.Info("lookup",
			"project", projectID,
			"query", query,
			"limit", limit,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Lookup(ctx, projectID, query, limit)
}
