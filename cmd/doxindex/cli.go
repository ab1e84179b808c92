package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/mcp"
	"github.com/fwojciec/doxindex/show"
)

// LoaderFunc returns the loader for a table source.
type LoaderFunc func(source string, opts LoadOptions) doxindex.IndexLoader

// LoadOptions holds the import flags that affect loading.
type LoadOptions struct {
	Section     string
	Concurrency int
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	Projects    doxindex.ProjectService
	Entries     doxindex.EntryService
	Lookups     doxindex.LookupService
	NewLoader   LoaderFunc
	NewSearcher mcp.SearcherFunc
	Encoder     doxindex.IndexEncoder
	Renderer    *show.Renderer
	MCP         *mcp.Server
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Log operations to stderr"`

	Import ImportCmd `cmd:"" help:"Import a search table as a project"`
	Check  CheckCmd  `cmd:"" help:"Load a search table without importing it"`
	List   ListCmd   `cmd:"" help:"List imported projects"`
	Delete DeleteCmd `cmd:"" help:"Delete a project and its search table"`
	Lookup LookupCmd `cmd:"" help:"Look up symbols by name prefix"`
	Search SearchCmd `cmd:"" help:"Search symbols by words in their names and scopes"`
	Show   ShowCmd   `cmd:"" help:"Show the documentation of a symbol"`
	Export ExportCmd `cmd:"" help:"Write a project's table as a search directory"`
	Serve  ServeCmd  `cmd:"" help:"Serve MCP tools on stdin and stdout"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	Name        string `arg:"" help:"Project name"`
	Source      string `arg:"" help:"Table file, search directory, HTML directory, tag file or URL"`
	Force       bool   `short:"f" help:"Replace an existing project"`
	Section     string `short:"s" default:"all" help:"Search section to import"`
	Concurrency int    `short:"c" default:"4" help:"Concurrent table fetches for URLs"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct {
	Source  string `arg:"" help:"Table file, search directory, HTML directory, tag file or URL"`
	Prefix  string `arg:"" optional:"" help:"Look up this prefix in the loaded table"`
	Section string `short:"s" default:"all" help:"Search section to load"`
	Limit   int    `short:"n" default:"20" help:"Maximum number of symbols to print"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Project name"`
	Force bool   `help:"Confirm deletion"`
}

// LookupCmd is the "lookup" subcommand.
type LookupCmd struct {
	Name   string `arg:"" help:"Project name"`
	Prefix string `arg:"" help:"Start of the symbol name"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of symbols (0 for all)"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Name  string `arg:"" help:"Project name"`
	Query string `arg:"" help:"Words to search for"`
	Limit int    `short:"n" default:"10" help:"Maximum number of symbols"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Name       string `arg:"" help:"Project name"`
	Symbol     string `arg:"" help:"Symbol name or search key"`
	Occurrence int    `short:"o" default:"1" help:"Which location to show when the symbol has several"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Name  string `arg:"" help:"Project name"`
	Dir   string `arg:"" help:"Output search directory"`
	Force bool   `short:"f" help:"Replace a directory that is not a search directory"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct{}
