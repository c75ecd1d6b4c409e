package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"supatodo/internal/config"
	"supatodo/internal/exitcode"
	"supatodo/internal/output"
	"supatodo/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between open and done" }
func (c *ToggleCmd) Usage() string     { return "supatodo toggle <id>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	sync, _ := newSynchronizer(cfg, svc, errOut)
	if err := sync.Load(ctx); err != nil {
		return reportError(errOut, err)
	}

	task, ok := sync.Find(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	}
	if err := sync.Toggle(ctx, task); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if updated, ok := sync.Find(id); ok {
			output.FormatTask(out, updated)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
