// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"sync"

	"supatodo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// IDs are assigned from an increasing counter and never reused.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int64
	calls  map[string]int

	// Error injection for testing
	ListTasksErr  error
	InsertTaskErr error
	SetDoneErr    error
	DeleteTaskErr error

	// EmptyInsert makes InsertTask store the task but echo no row.
	EmptyInsert bool

	// EmptyUpdate makes SetDone apply the change but echo no row.
	EmptyUpdate bool

	// AfterList, if set, runs after ListTasks has read its result and
	// before it returns. Tests use it to hold a load in flight.
	AfterList func()

	// AfterInsert, if set, runs after InsertTask has stored the row and
	// before it returns.
	AfterInsert func()
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddTask seeds a task and returns it with its assigned ID.
func (f *FakeService) AddTask(content string, done bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{ID: f.nextID, Content: content, Done: done}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t
}

// Calls returns how many times the named method was invoked.
// An empty name returns the total across all methods.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if method != "" {
		return f.calls[method]
	}
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Stored returns the stored tasks ordered by ID descending without
// counting as a call.
func (f *FakeService) Stored() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	f.calls["ListTasks"]++
	if f.ListTasksErr != nil {
		err := f.ListTasksErr
		f.mu.Unlock()
		return nil, err
	}
	result := f.sorted()
	hook := f.AfterList
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return result, nil
}

// InsertTask implements service.Service.
func (f *FakeService) InsertTask(ctx context.Context, nt service.NewTask) ([]service.Task, error) {
	f.mu.Lock()
	f.calls["InsertTask"]++
	if f.InsertTaskErr != nil {
		err := f.InsertTaskErr
		f.mu.Unlock()
		return nil, err
	}

	t := service.Task{ID: f.nextID, Content: nt.Content, Done: nt.Done}
	f.nextID++
	f.tasks = append(f.tasks, t)
	rows := []service.Task{t}
	if f.EmptyInsert {
		rows = []service.Task{}
	}
	hook := f.AfterInsert
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return rows, nil
}

// SetDone implements service.Service.
func (f *FakeService) SetDone(ctx context.Context, id int64, done bool) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SetDone"]++
	if f.SetDoneErr != nil {
		return nil, f.SetDoneErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Done = done
			if f.EmptyUpdate {
				return []service.Task{}, nil
			}
			return []service.Task{f.tasks[i]}, nil
		}
	}
	// A filter that matches nothing is not an error for a row store.
	return []service.Task{}, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["DeleteTask"]++
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// sorted must be called with mu held.
func (f *FakeService) sorted() []service.Task {
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}
