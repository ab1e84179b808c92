package main

import (
	"fmt"

	"github.com/fwojciec/doxindex"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return doxindex.Errorf(doxindex.EINVALID, "use --force to confirm deletion")
	}

	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	if err := deps.Projects.DeleteProject(deps.Ctx, project.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted project %q\n", project.Name)
	return nil
}
