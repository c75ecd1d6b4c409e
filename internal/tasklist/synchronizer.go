// Package tasklist keeps a local, ordered list of tasks consistent with the
// remote record store.
//
// Every mutation is confirmed by the store before the local list changes;
// nothing is applied optimistically. Results are merged back by task ID,
// never by position.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"supatodo/internal/service"
)

var (
	// ErrNotConfigured is returned by every operation when no store handle
	// was injected.
	ErrNotConfigured = errors.New("record store not configured")

	// ErrEmptyDraft is returned by Insert when the trimmed draft is empty.
	ErrEmptyDraft = errors.New("content required")

	// ErrBusy is returned by Insert while a load or another insert is in flight.
	ErrBusy = errors.New("operation in progress")
)

// Alerter surfaces a message to the user, not only to the log.
type Alerter interface {
	Alert(msg string)
}

// AlertFunc adapts a function to the Alerter interface.
type AlertFunc func(msg string)

// Alert calls f(msg).
func (f AlertFunc) Alert(msg string) { f(msg) }

// Snapshot is a consistent view of the synchronizer state.
type Snapshot struct {
	Tasks    []service.Task `json:"tasks"`
	Draft    string         `json:"draft"`
	Busy     bool           `json:"busy"`
	Revision uint64         `json:"revision"`
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithAlerter sets the user-facing alert channel.
func WithAlerter(a Alerter) Option {
	return func(s *Synchronizer) { s.alerter = a }
}

// Synchronizer reconciles the local task list with a service.Service.
// It is safe for concurrent use.
type Synchronizer struct {
	svc     service.Service
	log     *slog.Logger
	alerter Alerter
	state   *State

	mu       sync.Mutex
	draft    string
	inflight int // loads and inserts
}

// New creates a Synchronizer. A nil svc means the store is not configured;
// every operation then fails with ErrNotConfigured before any I/O.
func New(svc service.Service, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		svc:   svc,
		log:   slog.Default(),
		state: NewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns a copy of the current list.
func (s *Synchronizer) Tasks() []service.Task {
	tasks, _ := s.state.Tasks()
	return tasks
}

// Find returns the local task with the given ID.
func (s *Synchronizer) Find(id int64) (service.Task, bool) {
	for _, t := range s.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// SetDraft stores the pending new-task text.
func (s *Synchronizer) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the pending new-task text.
func (s *Synchronizer) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Busy reports whether a load or insert is in flight.
func (s *Synchronizer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Snapshot returns the list, draft and busy flag together.
func (s *Synchronizer) Snapshot() Snapshot {
	tasks, rev := s.state.Tasks()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Tasks:    tasks,
		Draft:    s.draft,
		Busy:     s.inflight > 0,
		Revision: rev,
	}
}

// Load replaces the list with the store's current contents.
// On failure the list is left unchanged.
func (s *Synchronizer) Load(ctx context.Context) error {
	log := s.opLogger("load")
	if s.svc == nil {
		log.Error("record store not configured", "hint", "set SUPABASE_URL and SUPABASE_ANON_KEY")
		return ErrNotConfigured
	}

	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	defer s.done()

	return s.load(ctx, log)
}

func (s *Synchronizer) load(ctx context.Context, log *slog.Logger) error {
	base := s.state.BeginLoad()
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		s.state.AbortLoad(base)
		log.Error("load failed", "error", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	rev := s.state.CommitLoad(base, tasks)
	log.Debug("load applied", "count", len(tasks), "revision", rev)
	return nil
}

// Insert sends the trimmed draft as a new task.
//
// When the store echoes the new row it is prepended and the draft is
// cleared. When the store reports success without a row, the list is
// reloaded instead. On failure the user is alerted and the draft is kept.
func (s *Synchronizer) Insert(ctx context.Context) error {
	return s.insert(ctx, "", true)
}

// InsertText sends text as a new task without touching the draft. The
// busy check and the submission happen under one lock, so concurrent
// callers each either insert their own text or get ErrBusy.
func (s *Synchronizer) InsertText(ctx context.Context, text string) error {
	return s.insert(ctx, text, false)
}

func (s *Synchronizer) insert(ctx context.Context, text string, fromDraft bool) error {
	log := s.opLogger("insert")

	s.mu.Lock()
	if fromDraft {
		text = s.draft
	}
	content := strings.TrimSpace(text)
	if content == "" {
		s.mu.Unlock()
		return ErrEmptyDraft
	}
	if s.svc == nil {
		s.mu.Unlock()
		log.Error("record store not configured")
		return ErrNotConfigured
	}
	if s.inflight > 0 {
		s.mu.Unlock()
		log.Debug("insert rejected while busy")
		return ErrBusy
	}
	s.inflight++
	s.mu.Unlock()
	defer s.done()

	rows, err := s.svc.InsertTask(ctx, service.NewTask{Content: content, Done: false})
	if err != nil {
		log.Error("insert failed", "error", err)
		s.alert(fmt.Sprintf("Could not add task: %v", err))
		return fmt.Errorf("insert task: %w", err)
	}

	if fromDraft {
		s.clearDraft(content)
	}

	if len(rows) == 0 {
		log.Warn("insert returned no row, reloading")
		return s.load(ctx, log)
	}

	rev := s.state.Prepend(rows[0])
	log.Debug("insert applied", "id", rows[0].ID, "revision", rev)
	return nil
}

// Toggle flips the done flag of t in the store and replaces the local
// entry with the row the store returns.
func (s *Synchronizer) Toggle(ctx context.Context, t service.Task) error {
	log := s.opLogger("toggle").With("id", t.ID)
	if s.svc == nil {
		log.Error("record store not configured")
		return ErrNotConfigured
	}

	rows, err := s.svc.SetDone(ctx, t.ID, !t.Done)
	if err != nil {
		log.Error("update failed", "error", err)
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	if len(rows) == 0 {
		log.Warn("update returned no row, reloading")
		return s.load(ctx, log)
	}

	rev := s.state.Replace(rows[0])
	log.Debug("update applied", "done", rows[0].Done, "revision", rev)
	return nil
}

// Delete removes the task with the given ID from the store and then from
// the local list.
func (s *Synchronizer) Delete(ctx context.Context, id int64) error {
	log := s.opLogger("delete").With("id", id)
	if s.svc == nil {
		log.Error("record store not configured")
		return ErrNotConfigured
	}

	if err := s.svc.DeleteTask(ctx, id); err != nil {
		log.Error("delete failed", "error", err)
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	rev := s.state.Remove(id)
	log.Debug("delete applied", "revision", rev)
	return nil
}

// clearDraft empties the draft unless it was edited while the insert ran.
func (s *Synchronizer) clearDraft(submitted string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.draft) == submitted {
		s.draft = ""
	}
}

func (s *Synchronizer) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

func (s *Synchronizer) alert(msg string) {
	if s.alerter != nil {
		s.alerter.Alert(msg)
	}
}

func (s *Synchronizer) opLogger(op string) *slog.Logger {
	return s.log.With("op", op, "op_id", uuid.NewString())
}
