// Package crawl loads search tables from a documentation site over HTTP.
// It fetches the section listing, then every table file of the selected
// section concurrently, and merges them into one Index.
package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/doxindex"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of table files fetched at once.
const DefaultConcurrency = 4

// sectionsFile lists the sections of a search directory.
const sectionsFile = "searchdata.js"

// Ensure Loader implements doxindex.IndexLoader at compile time.
var _ doxindex.IndexLoader = (*Loader)(nil)

// Loader loads search tables published by a documentation site.
type Loader struct {
	Fetcher       doxindex.Fetcher
	IndexParser   doxindex.IndexParser
	SectionParser doxindex.SectionParser
	RateLimiter   doxindex.HostLimiter

	// Section selects the table family. Defaults to doxindex.DefaultSection.
	Section     string
	Concurrency int
	RetryDelays []time.Duration

	// Options are applied to the merged Index.
	Options []doxindex.IndexOption

	// Progress, if set, receives an event per table file.
	Progress ProgressFunc
}

// ProgressEvent reports progress during a load.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error

	// Attempt is the upcoming attempt number of a ProgressRetrying event.
	Attempt int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressRetrying
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting load progress.
type ProgressFunc func(event ProgressEvent)

// LoadIndex loads source, which is the URL of a table file, a search
// directory, or the HTML output directory holding one. Any table that cannot
// be fetched or parsed fails the whole load.
func (l *Loader) LoadIndex(ctx context.Context, source string) (*doxindex.Index, error) {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, doxindex.Errorf(doxindex.EINVALID, "source must be an http(s) URL: %q", source)
	}

	if strings.HasSuffix(u.Path, ".js") {
		content, err := l.fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		return l.IndexParser.ParseIndex(ctx, strings.NewReader(content))
	}

	dir, names, err := l.tableFiles(ctx, u)
	if err != nil {
		return nil, err
	}

	return l.loadTables(ctx, dir, names)
}

// tableFiles locates the search directory under u and lists the table
// files of the selected section.
func (l *Loader) tableFiles(ctx context.Context, u *url.URL) (*url.URL, []string, error) {
	section := l.Section
	if section == "" {
		section = doxindex.DefaultSection
	}

	var lastErr error
	for _, dir := range searchDirs(u) {
		content, err := l.fetch(ctx, dir.JoinPath(sectionsFile))
		if doxindex.ErrorCode(err) == doxindex.ENOTFOUND {
			lastErr = err
			continue
		} else if err != nil {
			return nil, nil, err
		}

		sections, err := l.SectionParser.ParseSections(ctx, strings.NewReader(content))
		if err != nil {
			return nil, nil, err
		}
		s, err := doxindex.FindSection(sections, section)
		if err != nil {
			return nil, nil, err
		}
		return dir, s.FileNames(), nil
	}

	return nil, nil, doxindex.Errorf(doxindex.ENOTFOUND, "no search tables found at %s: %s", u, doxindex.ErrorMessage(lastErr))
}

// loadTables fetches and parses every named table under dir concurrently.
func (l *Loader) loadTables(ctx context.Context, dir *url.URL, names []string) (*doxindex.Index, error) {
	concurrency := l.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(names)
	l.notify(ProgressEvent{Type: ProgressStarted, Total: total})

	indexes := make([]*doxindex.Index, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		target := dir.JoinPath(name)
		g.Go(func() error {
			idx, err := l.loadTable(gctx, target)
			if err != nil {
				l.notify(ProgressEvent{
					Type:      ProgressFailed,
					Completed: int(completed.Load()),
					Total:     total,
					URL:       target.String(),
					Error:     err,
				})
				return err
			}
			indexes[i] = idx
			l.notify(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: int(completed.Add(1)),
				Total:     total,
				URL:       target.String(),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.notify(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	return doxindex.Merge(indexes, l.Options...)
}

func (l *Loader) loadTable(ctx context.Context, target *url.URL) (*doxindex.Index, error) {
	content, err := l.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	idx, err := l.IndexParser.ParseIndex(ctx, strings.NewReader(content))
	if err != nil {
		if doxindex.ErrorCode(err) == doxindex.EMALFORMED {
			return nil, doxindex.Errorf(doxindex.EMALFORMED, "%s: %s", target, doxindex.ErrorMessage(err))
		}
		return nil, err
	}
	return idx, nil
}

// fetch waits for the rate limiter, then fetches target with retries.
func (l *Loader) fetch(ctx context.Context, target *url.URL) (string, error) {
	if l.RateLimiter != nil {
		if err := l.RateLimiter.Wait(ctx, target.Host); err != nil {
			return "", err
		}
	}

	retry := Retry{
		Delays: l.RetryDelays,
		OnRetry: func(u string, attempt int, err error) {
			l.notify(ProgressEvent{Type: ProgressRetrying, URL: u, Attempt: attempt, Error: err})
		},
	}
	if retry.Delays == nil {
		retry.Delays = DefaultRetryDelays()
	}
	return retry.Do(ctx, target.String(), l.Fetcher.Fetch)
}

func (l *Loader) notify(event ProgressEvent) {
	if l.Progress != nil {
		l.Progress(event)
	}
}

// searchDirs returns the candidate search directories for u: u itself when
// it already names one, otherwise its search subdirectory and then u.
func searchDirs(u *url.URL) []*url.URL {
	dir := *u
	dir.RawQuery = ""
	dir.Fragment = ""
	if !strings.HasSuffix(dir.Path, "/") {
		// A trailing page name such as index.html is not part of the directory.
		if last := dir.Path[strings.LastIndex(dir.Path, "/")+1:]; strings.Contains(last, ".") {
			dir.Path = dir.Path[:len(dir.Path)-len(last)]
		}
	}

	if strings.TrimSuffix(dir.Path, "/") != "" && lastSegment(dir.Path) == "search" {
		return []*url.URL{&dir}
	}
	return []*url.URL{dir.JoinPath("search"), &dir}
}

func lastSegment(p string) string {
	p = strings.TrimSuffix(p, "/")
	return p[strings.LastIndex(p, "/")+1:]
}
