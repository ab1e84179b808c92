// Package slog provides logging decorators for the doxindex services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/doxindex"
)

var _ doxindex.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs every fetch made through the wrapped Fetcher.
// Failures are logged at warn level.
type LoggingFetcher struct {
	next   doxindex.Fetcher
	logger *slog.Logger
}

func NewLoggingFetcher(next doxindex.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (content string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		f.logger.Log(ctx, level, "fetch",
			"url", url,
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
