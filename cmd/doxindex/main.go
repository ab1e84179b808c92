package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/bleve"
	"github.com/fwojciec/doxindex/bloom"
	"github.com/fwojciec/doxindex/crawl"
	"github.com/fwojciec/doxindex/etree"
	"github.com/fwojciec/doxindex/fs"
	"github.com/fwojciec/doxindex/goquery"
	"github.com/fwojciec/doxindex/htmltomarkdown"
	doxhttp "github.com/fwojciec/doxindex/http"
	"github.com/fwojciec/doxindex/js"
	"github.com/fwojciec/doxindex/lru"
	"github.com/fwojciec/doxindex/mcp"
	"github.com/fwojciec/doxindex/show"
	doxslog "github.com/fwojciec/doxindex/slog"
	"github.com/fwojciec/doxindex/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Stdin is read by the serve command.
	Stdin io.Reader

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ProjectService doxindex.ProjectService
	EntryService   doxindex.EntryService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("doxindex"),
		kong.Description("Import and query the search tables of generated API documentation."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'doxindex --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	keyFilter := doxindex.WithKeyFilter(bloom.NewKeyFilter)
	deps.NewLoader = newLoaderFunc(deps.Logger, stderr, cli.Verbose)
	deps.Encoder = js.NewEncoder()
	deps.NewSearcher = func(idx *doxindex.Index) (doxindex.Searcher, error) {
		s, err := bleve.NewSearcher(idx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	// check works on sources alone and needs no catalog.
	if cmd == "check" {
		return kongCtx.Run(deps)
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOXINDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.ProjectService = sqlite.NewProjectService(m.DB)
	m.EntryService = sqlite.NewEntryService(m.DB, keyFilter)
	deps.Projects = m.ProjectService
	deps.Entries = m.EntryService
	deps.Lookups = doxslog.NewLoggingLookupService(m.EntryService, deps.Logger)

	if cmd == "show" || cmd == "serve" {
		fetcher := doxslog.NewLoggingFetcher(doxhttp.NewFetcher(), deps.Logger)
		defer fetcher.Close()
		files := fs.NewFetcher()

		deps.Renderer = &show.Renderer{
			Fetchers: map[string]doxindex.Fetcher{
				"http":  fetcher,
				"https": fetcher,
				"file":  files,
			},
			Extractor: goquery.NewMemberExtractor(),
			NewConverter: func(pageURL string) doxindex.Converter {
				return htmltomarkdown.NewConverter(htmltomarkdown.WithBaseURL(pageURL))
			},
		}
	}

	if cmd == "serve" {
		srv := mcp.NewServer(m.ProjectService, m.EntryService)
		srv.Lookups = lru.NewLookupCache(deps.Lookups, lru.DefaultSize, lru.DefaultTTL)
		srv.NewSearcher = deps.NewSearcher
		srv.Renderer = deps.Renderer
		deps.MCP = srv
	}

	return kongCtx.Run(deps)
}

// newLoaderFunc returns a LoaderFunc choosing the loader by the form of the
// source: URLs are crawled, tag files are parsed as XML, anything else is
// read from disk.
func newLoaderFunc(logger *slog.Logger, stderr io.Writer, verbose bool) LoaderFunc {
	return func(source string, opts LoadOptions) doxindex.IndexLoader {
		parser := js.NewParser()
		keyFilter := doxindex.WithKeyFilter(bloom.NewKeyFilter)

		var loader doxindex.IndexLoader
		switch {
		case isURL(source):
			l := &crawl.Loader{
				Fetcher:       doxslog.NewLoggingFetcher(doxhttp.NewFetcher(), logger),
				IndexParser:   parser,
				SectionParser: parser,
				RateLimiter:   crawl.NewHostLimiter(defaultRequestsPerSecond, defaultRequestBurst),
				Section:       opts.Section,
				Concurrency:   opts.Concurrency,
				RetryDelays:   crawl.DefaultRetryDelays(),
				Options:       []doxindex.IndexOption{keyFilter},
			}
			if verbose {
				l.Progress = func(event crawl.ProgressEvent) {
					fmt.Fprintln(stderr, crawl.FormatProgress(event, progressURLWidth))
				}
			}
			loader = l
		case strings.EqualFold(filepath.Ext(source), ".tag"):
			loader = etree.NewTagfileParser(keyFilter)
		default:
			l := fs.NewLoader(parser, keyFilter)
			if opts.Section != "" {
				l.Section = opts.Section
			}
			loader = l
		}
		return doxslog.NewLoggingIndexLoader(loader, logger)
	}
}

// Table fetches per host.
const (
	defaultRequestsPerSecond = 5.0
	defaultRequestBurst      = 2
)

const progressURLWidth = 60

func isURL(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func defaultDBPath() string {
	if path := os.Getenv("DOXINDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "doxindex.db"
	}
	dir := filepath.Join(home, ".doxindex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "doxindex.db")
}
