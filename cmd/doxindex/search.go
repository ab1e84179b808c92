package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/doxindex"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	idx, err := deps.Entries.LoadIndex(deps.Ctx, project.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}

	searcher, err := deps.NewSearcher(idx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to build search index: %v\n", err)
		return err
	}
	if closer, ok := searcher.(io.Closer); ok {
		defer closer.Close()
	}

	results, err := searcher.Search(deps.Ctx, c.Query, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No symbols in %s match %q.\n", project.Name, c.Query)
		return nil
	}

	entries := make([]*doxindex.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, r.Entry)
	}
	fmt.Fprintln(deps.Stdout, doxindex.FormatEntries(entries))
	return nil
}
