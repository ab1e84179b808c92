// Package mcp exposes the catalog as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/show"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Server name and version reported to clients.
const (
	Name    = "doxindex"
	Version = "1.0.0"
)

// Default result limits.
const (
	DefaultLookupLimit = 20
	DefaultSearchLimit = 10
)

// searcherCacheSize is the number of full-text indexes kept in memory.
const searcherCacheSize = 8

// SearcherFunc builds a full-text searcher over one table.
type SearcherFunc func(idx *doxindex.Index) (doxindex.Searcher, error)

// Server answers tool calls against the catalog.
type Server struct {
	Projects doxindex.ProjectService
	Entries  doxindex.EntryService

	// Lookups answers lookup_symbol. Defaults to Entries.
	Lookups doxindex.LookupService

	// NewSearcher enables search_symbols when set.
	NewSearcher SearcherFunc

	// Renderer enables show_symbol when set.
	Renderer *show.Renderer

	searchers *searcherCache

	// hashes holds the last content hash seen per project ID.
	hashes sync.Map
}

// Invalidator drops cached results of one project.
type Invalidator interface {
	Invalidate(projectID string)
}

// NewServer creates a new Server.
func NewServer(projects doxindex.ProjectService, entries doxindex.EntryService) *Server {
	return &Server{
		Projects:  projects,
		Entries:   entries,
		Lookups:   entries,
		searchers: newSearcherCache(searcherCacheSize),
	}
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

// MCPServer returns an MCP server with every available tool registered.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	srv := mcpserver.NewMCPServer(Name, Version, mcpserver.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the documentation projects whose search index has been imported."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	), s.ListProjects)

	srv.AddTool(mcp.NewTool("lookup_symbol",
		mcp.WithDescription("Look up symbols by name prefix in a project's search index, the way the documentation search box does. Returns each matching symbol with its documentation locations."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project name as shown by list_projects")),
		mcp.WithString("prefix", mcp.Required(), mcp.Description("Start of the symbol name, e.g. \"fetch\" or \"std::vec\"")),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of symbols to return (default %d)", DefaultLookupLimit))),
	), s.LookupSymbol)

	if s.NewSearcher != nil {
		srv.AddTool(mcp.NewTool("search_symbols",
			mcp.WithDescription("Search a project's symbols by words in their names and enclosing scopes. Use when the exact name prefix is unknown."),
			mcp.WithToolAnnotation(readOnlyAnnotation),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name as shown by list_projects")),
			mcp.WithString("query", mcp.Required(), mcp.Description("Words to search for")),
			mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum number of symbols to return (default %d)", DefaultSearchLimit))),
		), s.SearchSymbols)
	}

	if s.Renderer != nil {
		srv.AddTool(mcp.NewTool("show_symbol",
			mcp.WithDescription("Show the documentation of a symbol as Markdown, fetched from the page its search entry points at."),
			mcp.WithToolAnnotation(readOnlyAnnotation),
			mcp.WithString("project", mcp.Required(), mcp.Description("Project name as shown by list_projects")),
			mcp.WithString("symbol", mcp.Required(), mcp.Description("Symbol name or search key")),
			mcp.WithNumber("occurrence", mcp.Description("Which location to show when the symbol has several (default 1)")),
		), s.ShowSymbol)
	}

	return srv
}

// ServeStdio serves tool calls on stdin and stdout until ctx is canceled.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	return mcpserver.NewStdioServer(s.MCPServer()).Listen(ctx, stdin, stdout)
}

// ListProjects handles list_projects.
func (s *Server) ListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.Projects.FindProjects(ctx, doxindex.ProjectFilter{})
	if err != nil {
		return toolError(err), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("No projects imported."), nil
	}

	var b strings.Builder
	for _, p := range projects {
		fmt.Fprintf(&b, "%s (%d entries): %s\n", p.Name, p.EntryCount, p.SourceURL)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// LookupSymbol handles lookup_symbol.
func (s *Server) LookupSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := req.GetString("prefix", "")
	if strings.TrimSpace(prefix) == "" {
		return mcp.NewToolResultError("prefix is required"), nil
	}

	project, err := s.findProject(ctx, req.GetString("project", ""))
	if err != nil {
		return toolError(err), nil
	}

	s.checkContentHash(project)

	limit := req.GetInt("limit", DefaultLookupLimit)
	if limit <= 0 {
		limit = DefaultLookupLimit
	}

	entries, err := s.Lookups.Lookup(ctx, project.ID, prefix, limit)
	if err != nil {
		return toolError(err), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No symbols in %s start with %q.", project.Name, prefix)), nil
	}
	return mcp.NewToolResultText(doxindex.FormatEntries(entries)), nil
}

// SearchSymbols handles search_symbols.
func (s *Server) SearchSymbols(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.NewSearcher == nil {
		return mcp.NewToolResultError("full-text search is not available"), nil
	}
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	project, err := s.findProject(ctx, req.GetString("project", ""))
	if err != nil {
		return toolError(err), nil
	}

	searcher, err := s.searcher(ctx, project)
	if err != nil {
		return toolError(err), nil
	}
	defer searcher.release()

	limit := req.GetInt("limit", DefaultSearchLimit)
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	results, err := searcher.Search(ctx, query, limit)
	if err != nil {
		return toolError(err), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No symbols in %s match %q.", project.Name, query)), nil
	}

	entries := make([]*doxindex.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, r.Entry)
	}
	return mcp.NewToolResultText(doxindex.FormatEntries(entries)), nil
}

// ShowSymbol handles show_symbol.
func (s *Server) ShowSymbol(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.Renderer == nil {
		return mcp.NewToolResultError("showing documentation is not available"), nil
	}
	name := req.GetString("symbol", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("symbol is required"), nil
	}

	project, err := s.findProject(ctx, req.GetString("project", ""))
	if err != nil {
		return toolError(err), nil
	}

	entry, err := show.FindEntry(ctx, s.Entries, project.ID, name)
	if err != nil {
		return toolError(err), nil
	}

	doc, err := s.Renderer.RenderEntry(ctx, project, entry, req.GetInt("occurrence", 1)-1)
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	if doc.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	}
	fmt.Fprintf(&b, "Source: %s\n\n", doc.URL)
	b.WriteString(doc.Markdown)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) findProject(ctx context.Context, name string) (*doxindex.Project, error) {
	if name == "" {
		return nil, doxindex.Errorf(doxindex.EINVALID, "project is required")
	}
	projects, err := s.Projects.FindProjects(ctx, doxindex.ProjectFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "project %q not found. Use list_projects to see available projects.", name)
	}
	return projects[0], nil
}

// searcher returns the cached full-text searcher of project, building it
// from the stored table on first use. The caller must release it.
func (s *Server) searcher(ctx context.Context, project *doxindex.Project) (*sharedSearcher, error) {
	return s.searchers.acquire(ctx, project.ID+":"+project.ContentHash, func() (doxindex.Searcher, error) {
		idx, err := s.Entries.LoadIndex(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		return s.NewSearcher(idx)
	})
}

// checkContentHash invalidates cached lookups of project when its table
// was replaced since the last call.
func (s *Server) checkContentHash(project *doxindex.Project) {
	prev, loaded := s.hashes.Swap(project.ID, project.ContentHash)
	if !loaded || prev.(string) == project.ContentHash {
		return
	}
	if inv, ok := s.Lookups.(Invalidator); ok {
		inv.Invalidate(project.ID)
	}
}

// toolError reports err to the client. Domain errors carry their message,
// anything else is reported as is.
func toolError(err error) *mcp.CallToolResult {
	if doxindex.ErrorCode(err) == doxindex.EINTERNAL {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(doxindex.ErrorMessage(err))
}
