package tasklist

import (
	"slices"
	"sync"

	"supatodo/internal/service"
)

type patchKind int

const (
	patchPrepend patchKind = iota + 1
	patchReplace
	patchRemove
)

// patch is a single confirmed reconciliation keyed by task ID.
type patch struct {
	rev  uint64
	kind patchKind
	task service.Task
	id   int64
}

// applyTo returns a new slice with p applied. tasks is never modified.
func (p patch) applyTo(tasks []service.Task) []service.Task {
	switch p.kind {
	case patchPrepend:
		out := make([]service.Task, 0, len(tasks)+1)
		out = append(out, p.task)
		for _, t := range tasks {
			if t.ID != p.task.ID {
				out = append(out, t)
			}
		}
		return out
	case patchReplace:
		out := slices.Clone(tasks)
		for i := range out {
			if out[i].ID == p.task.ID {
				out[i] = p.task
			}
		}
		return out
	case patchRemove:
		out := make([]service.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.ID != p.id {
				out = append(out, t)
			}
		}
		return out
	}
	return tasks
}

// rebase applies p on top of a load result. A prepended row the load
// already holds is left as loaded; a missing one is placed by ID
// descending so the list stays ordered.
func (p patch) rebase(tasks []service.Task) []service.Task {
	if p.kind != patchPrepend {
		return p.applyTo(tasks)
	}
	if slices.ContainsFunc(tasks, func(t service.Task) bool { return t.ID == p.task.ID }) {
		return tasks
	}
	i := slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID < p.task.ID })
	if i < 0 {
		i = len(tasks)
	}
	return slices.Insert(slices.Clone(tasks), i, p.task)
}

// State is the revision-tagged container for the local task list.
//
// Every change bumps the revision. While a load is in flight, patches are
// also kept in a log so that the load's result can be rebased on top of
// them when it completes; a slow load never erases a confirmed insert,
// toggle or delete.
type State struct {
	mu    sync.Mutex
	tasks []service.Task
	rev   uint64
	log   []patch
	loads map[uint64]int // base revision -> loads in flight
}

// NewState returns an empty state at revision 0.
func NewState() *State {
	return &State{tasks: []service.Task{}, loads: make(map[uint64]int)}
}

// Tasks returns a copy of the current list and its revision.
func (s *State) Tasks() ([]service.Task, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks), s.rev
}

// Revision returns the current revision.
func (s *State) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// BeginLoad registers a load and returns the revision it is based on.
// Every BeginLoad must be paired with CommitLoad or AbortLoad.
func (s *State) BeginLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads[s.rev]++
	return s.rev
}

// CommitLoad replaces the list with tasks, then replays every patch
// applied after base. Returns the new revision.
func (s *State) CommitLoad(base uint64, tasks []service.Task) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.Clone(tasks)
	if next == nil {
		next = []service.Task{}
	}
	for _, p := range s.log {
		if p.rev > base {
			next = p.rebase(next)
		}
	}
	s.tasks = next
	s.rev++
	s.release(base)
	return s.rev
}

// AbortLoad unregisters a failed load without touching the list.
func (s *State) AbortLoad(base uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(base)
}

// Prepend puts t at position 0, dropping any entry with the same ID.
func (s *State) Prepend(t service.Task) uint64 {
	return s.apply(patch{kind: patchPrepend, task: t})
}

// Replace swaps the entry matching t.ID. Missing IDs are ignored.
func (s *State) Replace(t service.Task) uint64 {
	return s.apply(patch{kind: patchReplace, task: t})
}

// Remove drops the entry with the given ID.
func (s *State) Remove(id int64) uint64 {
	return s.apply(patch{kind: patchRemove, id: id})
}

func (s *State) apply(p patch) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = p.applyTo(s.tasks)
	s.rev++
	p.rev = s.rev
	if len(s.loads) > 0 {
		s.log = append(s.log, p)
	}
	return s.rev
}

// release must be called with mu held.
func (s *State) release(base uint64) {
	if s.loads[base] <= 1 {
		delete(s.loads, base)
	} else {
		s.loads[base]--
	}

	if len(s.loads) == 0 {
		s.log = nil
		return
	}
	oldest := s.rev
	for b := range s.loads {
		oldest = min(oldest, b)
	}
	s.log = slices.DeleteFunc(s.log, func(p patch) bool { return p.rev <= oldest })
}
