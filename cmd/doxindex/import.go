package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/doxindex"
)

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	// Local sources are stored as absolute paths.
	source := c.Source
	if !isURL(source) {
		abs, err := filepath.Abs(source)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: invalid source %q: %v\n", source, err)
			return err
		}
		source = abs
	}

	existing, err := deps.Projects.FindProjects(deps.Ctx, doxindex.ProjectFilter{Name: &c.Name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}
	if len(existing) > 0 && !c.Force {
		fmt.Fprintf(deps.Stderr, "error: project %q already exists. Use --force to replace it.\n", c.Name)
		return doxindex.Errorf(doxindex.ECONFLICT, "project %q already exists", c.Name)
	}

	// A failed load leaves the catalog unchanged.
	loader := deps.NewLoader(source, LoadOptions{Section: c.Section, Concurrency: c.Concurrency})
	idx, err := loader.LoadIndex(deps.Ctx, source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", loadErrorMessage(err))
		return err
	}

	var project *doxindex.Project
	if len(existing) > 0 {
		// The table is replaced in place, so a failure keeps the old one.
		project = existing[0]
		if err := deps.Entries.ReplaceEntries(deps.Ctx, project.ID, idx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
			return err
		}
		if _, err := deps.Projects.UpdateProject(deps.Ctx, project.ID, doxindex.ProjectUpdate{
			SourceURL: &source,
			Section:   &c.Section,
		}); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
			return err
		}
	} else {
		project = &doxindex.Project{
			Name:      c.Name,
			SourceURL: source,
			Section:   c.Section,
		}
		if err := deps.Projects.CreateProject(deps.Ctx, project); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
			return err
		}
		if err := deps.Entries.ReplaceEntries(deps.Ctx, project.ID, idx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
			_ = deps.Projects.DeleteProject(deps.Ctx, project.ID)
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Imported project %q (%s): %d entries, %d occurrences\n",
		project.Name, project.ID, idx.Len(), idx.OccurrenceCount())
	return nil
}

// loadErrorMessage returns the message of a load failure. Read and network
// failures are not domain errors but their text is what the user needs.
func loadErrorMessage(err error) string {
	if doxindex.ErrorCode(err) == doxindex.EINTERNAL {
		return err.Error()
	}
	return doxindex.ErrorMessage(err)
}
