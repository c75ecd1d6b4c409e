package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"supatodo/internal/config"
	"supatodo/internal/exitcode"
	"supatodo/internal/service"
	"supatodo/internal/tasklist"
)

// newLogger returns the diagnostic logger for one-shot commands.
// Diagnostics are only written with --debug; failures reach the user
// as "error:" lines instead.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if !cfg.Debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// errAlerter prints alerts as error lines and remembers that it did.
type errAlerter struct {
	w       io.Writer
	alerted bool
}

func (a *errAlerter) Alert(msg string) {
	a.alerted = true
	fmt.Fprintf(a.w, "error: %s\n", msg)
}

// newSynchronizer builds a synchronizer whose alerts are printed to errOut.
func newSynchronizer(cfg *config.Config, svc service.Service, errOut io.Writer) (*tasklist.Synchronizer, *errAlerter) {
	alerts := &errAlerter{w: errOut}
	sync := tasklist.New(svc,
		tasklist.WithLogger(newLogger(cfg, errOut)),
		tasklist.WithAlerter(alerts),
	)
	return sync, alerts
}

// reportError prints err and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, tasklist.ErrNotConfigured):
		fmt.Fprintf(errOut, "error: %v (set %s and %s)\n", err, config.EnvURL, config.EnvKey)
		return exitcode.ConfigError
	case errors.Is(err, tasklist.ErrEmptyDraft):
		fmt.Fprintln(errOut, "error: content required")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// parseID parses a single positional task ID.
func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("task id required")
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	s := strings.TrimSpace(args[0])
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}
