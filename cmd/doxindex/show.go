package main

import (
	"fmt"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/show"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	entry, err := show.FindEntry(deps.Ctx, deps.Entries, project.ID, c.Symbol)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'doxindex lookup' to find symbol names.\n", doxindex.ErrorMessage(err))
		return err
	}

	doc, err := deps.Renderer.RenderEntry(deps.Ctx, project, entry, c.Occurrence-1)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", loadErrorMessage(err))
		return err
	}

	if doc.Title != "" {
		fmt.Fprintf(deps.Stdout, "# %s\n\n", doc.Title)
	}
	fmt.Fprintf(deps.Stdout, "Source: %s\n\n", doc.URL)
	fmt.Fprintln(deps.Stdout, doc.Markdown)
	return nil
}
