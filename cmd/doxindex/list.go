package main

import (
	"fmt"

	"github.com/fwojciec/doxindex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	projects, err := deps.Projects.FindProjects(deps.Ctx, doxindex.ProjectFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}

	if len(projects) == 0 {
		fmt.Fprintln(deps.Stdout, "No projects found. Use 'doxindex import' to create one.")
		return nil
	}

	for _, p := range projects {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d entries  %s\n", p.ID, p.Name, p.EntryCount, p.SourceURL)
	}

	return nil
}
