package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"supatodo/internal/tasklist"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

const busyAlert = "Still syncing, try again."

const helpLine = "enter add · tab switch · space toggle · d delete · r reload · q quit"

// App is the main TUI application model.
// Layout: TITLE | INPUT | ALERT | LIST | FOOTER
type App struct {
	ctx    context.Context
	sync   *tasklist.Synchronizer
	alerts *Alerts

	input   textinput.Model
	spinner spinner.Model

	focus    focus
	cursor   int
	alert    string
	width    int
	quitting bool
}

// NewApp creates the application. alerts should be the Alerter the
// synchronizer was built with.
func NewApp(ctx context.Context, sync *tasklist.Synchronizer, alerts *Alerts) *App {
	if alerts == nil {
		alerts = NewAlerts()
	}

	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(sync.Draft())
	ti.Focus()

	return &App{
		ctx:     ctx,
		sync:    sync,
		alerts:  alerts,
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(MutedStyle)),
	}
}

// Init focuses the input and starts the initial load.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.Focus(), a.spinner.Tick, a.run("load", a.sync.Load))
}

// Update handles messages and updates state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.input.Width = max(msg.Width-4, 10)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case opDoneMsg:
		if msg.op == "insert" && msg.err == nil {
			a.input.SetValue(a.sync.Draft())
		}
		if alert := a.alerts.take(); alert != "" {
			a.alert = alert
		}
		if errors.Is(msg.err, tasklist.ErrBusy) {
			a.alert = busyAlert
		}
		a.clampCursor()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	case "tab", "shift+tab":
		return a, a.toggleFocus()
	}

	if a.focus == focusInput {
		if msg.String() == "enter" {
			a.alert = ""
			a.sync.SetDraft(a.input.Value())
			return a, a.run("insert", a.sync.Insert)
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		a.sync.SetDraft(a.input.Value())
		return a, cmd
	}

	tasks := a.sync.Tasks()
	switch msg.String() {
	case "q", "esc":
		a.quitting = true
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(tasks)-1 {
			a.cursor++
		}
	case " ", "space", "enter":
		if a.cursor < len(tasks) {
			task := tasks[a.cursor]
			return a, a.run("toggle", func(ctx context.Context) error {
				return a.sync.Toggle(ctx, task)
			})
		}
	case "d", "x", "delete":
		if a.cursor < len(tasks) {
			id := tasks[a.cursor].ID
			return a, a.run("delete", func(ctx context.Context) error {
				return a.sync.Delete(ctx, id)
			})
		}
	case "r":
		return a, a.run("load", a.sync.Load)
	}
	return a, nil
}

func (a *App) toggleFocus() tea.Cmd {
	if a.focus == focusInput {
		a.focus = focusList
		a.input.Blur()
		return nil
	}
	a.focus = focusInput
	return a.input.Focus()
}

// run wraps a synchronizer operation as a tea.Cmd.
func (a *App) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		err := fn(ctx)
		if errors.Is(err, tasklist.ErrEmptyDraft) {
			err = nil
		}
		return opDoneMsg{op: op, err: err}
	}
}

func (a *App) clampCursor() {
	n := len(a.sync.Tasks())
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// View renders the application.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	snap := a.sync.Snapshot()
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Todos"))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	if snap.Busy {
		b.WriteString("  " + a.spinner.View() + MutedStyle.Render(" Loading…"))
	}
	b.WriteString("\n")
	if a.alert != "" {
		b.WriteString(ErrorStyle.Render(a.alert))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(snap.Tasks) == 0 && !snap.Busy {
		b.WriteString(MutedStyle.Render("No tasks yet."))
		b.WriteString("\n")
	}
	for i, t := range snap.Tasks {
		marker := "  "
		if a.focus == focusList && i == a.cursor {
			marker = CursorStyle.Render("> ")
		}
		box, content := "[ ]", t.Content
		if t.Done {
			box = "[x]"
			content = DoneStyle.Render(content)
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, box, content)
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(helpLine))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
