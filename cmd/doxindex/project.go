package main

import (
	"fmt"

	"github.com/fwojciec/doxindex"
)

// findProject looks up a project by name, reporting failures on stderr.
func findProject(deps *Dependencies, name string) (*doxindex.Project, error) {
	projects, err := deps.Projects.FindProjects(deps.Ctx, doxindex.ProjectFilter{Name: &name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return nil, err
	}

	if len(projects) == 0 {
		fmt.Fprintf(deps.Stderr, "error: project %q not found. Use 'doxindex list' to see available projects.\n", name)
		return nil, doxindex.Errorf(doxindex.ENOTFOUND, "project %q not found", name)
	}

	return projects[0], nil
}
