package main

import (
	"fmt"

	"github.com/fwojciec/doxindex"
)

// Run executes the lookup command.
func (c *LookupCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	entries, err := deps.Lookups.Lookup(deps.Ctx, project.ID, c.Prefix, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No symbols in %s start with %q.\n", project.Name, c.Prefix)
		return nil
	}

	fmt.Fprintln(deps.Stdout, doxindex.FormatEntries(entries))
	return nil
}
