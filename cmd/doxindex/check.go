package main

import (
	"fmt"

	"github.com/fwojciec/doxindex"
	"github.com/fwojciec/doxindex/crawl"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	loader := deps.NewLoader(c.Source, LoadOptions{Section: c.Section, Concurrency: crawl.DefaultConcurrency})
	idx, err := loader.LoadIndex(deps.Ctx, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", loadErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%d entries, %d occurrences\n", idx.Len(), idx.OccurrenceCount())

	if c.Prefix == "" {
		return nil
	}

	var entries []*doxindex.Entry
	for e := range idx.Lookup(c.Prefix) {
		if c.Limit > 0 && len(entries) == c.Limit {
			break
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		fmt.Fprintf(deps.Stdout, "No symbols start with %q.\n", c.Prefix)
		return nil
	}
	fmt.Fprintln(deps.Stdout, doxindex.FormatEntries(entries))
	return nil
}
