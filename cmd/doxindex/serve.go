package main

import (
	"context"
	"errors"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	err := deps.MCP.ServeStdio(deps.Ctx, deps.Stdin, deps.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
