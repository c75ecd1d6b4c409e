package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"supatodo/internal/config"
	"supatodo/internal/exitcode"
	"supatodo/internal/output"
	"supatodo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "supatodo add <content...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(errOut, "error: content required")
		return exitcode.UserError
	}

	sync, alerts := newSynchronizer(cfg, svc, errOut)
	sync.SetDraft(content)
	if err := sync.Insert(ctx); err != nil {
		if alerts.alerted {
			return exitcode.BackendError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if tasks := sync.Tasks(); len(tasks) > 0 {
			output.FormatTask(out, tasks[0])
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
