package main

import (
	"fmt"
	"path/filepath"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	project, err := findProject(deps, c.Name)
	if err != nil {
		return err
	}

	idx, err := deps.Entries.LoadIndex(deps.Ctx, project.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", doxindex.ErrorMessage(err))
		return err
	}

	dir := filepath.Clean(c.Dir)
	exporter := fs.NewExporter(deps.Encoder, filepath.Dir(dir), filepath.Base(dir))
	if !c.Force {
		if err := exporter.CheckTarget(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Use --force to replace it.\n", doxindex.ErrorMessage(err))
			return err
		}
	}
	if err := exporter.Export(deps.Ctx, idx); err != nil {
		_ = exporter.Abort()
		fmt.Fprintf(deps.Stderr, "error: failed to export: %v\n", err)
		return err
	}
	if err := exporter.Commit(); err != nil {
		_ = exporter.Abort()
		fmt.Fprintf(deps.Stderr, "error: failed to export: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d entries to %s\n", idx.Len(), dir)
	return nil
}
