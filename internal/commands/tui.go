package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"supatodo/internal/config"
	"supatodo/internal/exitcode"
	"supatodo/internal/service"
	"supatodo/internal/tasklist"
	"supatodo/internal/tui"
)

// tuiLogFile receives diagnostics while the terminal is taken over.
const tuiLogFile = "tui.log"

func init() {
	Register(&TUICmd{})
}

// TUICmd implements the tui command.
type TUICmd struct{}

func (c *TUICmd) Name() string      { return "tui" }
func (c *TUICmd) Aliases() []string { return nil }
func (c *TUICmd) Synopsis() string  { return "Open the interactive terminal UI" }
func (c *TUICmd) Usage() string     { return "supatodo tui" }
func (c *TUICmd) NeedsStore() bool  { return true }

func (c *TUICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TUICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if svc == nil {
		fmt.Fprintf(errOut, "warning: %v (set %s and %s)\n", tasklist.ErrNotConfigured, config.EnvURL, config.EnvKey)
	}

	logger := slog.New(slog.DiscardHandler)
	if cfg.Debug {
		if err := cfg.EnsureDir(); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		f, err := os.OpenFile(filepath.Join(cfg.Dir, tuiLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			fmt.Fprintf(errOut, "error: open log: %v\n", err)
			return exitcode.UserError
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	alerts := tui.NewAlerts()
	sync := tasklist.New(svc, tasklist.WithLogger(logger), tasklist.WithAlerter(alerts))
	app := tui.NewApp(ctx, sync, alerts)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(out))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
