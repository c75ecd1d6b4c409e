package tasklist_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"supatodo/internal/service"
	"supatodo/internal/tasklist"
	"supatodo/internal/testutil"
)

// alerts records every user-facing alert.
type alerts struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alerts) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

func (a *alerts) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.msgs)
}

func newSync(t *testing.T, svc service.Service) (*tasklist.Synchronizer, *alerts) {
	t.Helper()
	a := &alerts{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return tasklist.New(svc, tasklist.WithLogger(logger), tasklist.WithAlerter(a)), a
}

func loadOrFail(t *testing.T, s *tasklist.Synchronizer) {
	t.Helper()
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func ids(tasks []service.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestLoad_Idempotent(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", true)
	s, _ := newSync(t, svc)

	loadOrFail(t, s)
	first := s.Tasks()
	loadOrFail(t, s)
	second := s.Tasks()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical loads, got %v and %v", first, second)
	}
}

func TestLoad_OrderedByIDDescending(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("one", false)
	svc.AddTask("two", false)
	svc.AddTask("three", false)
	s, _ := newSync(t, svc)

	loadOrFail(t, s)

	want := []int64{3, 2, 1}
	if got := ids(s.Tasks()); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLoad_FailureKeepsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("keep me", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)

	svc.ListTasksErr = errors.New("boom")
	err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(s.Tasks()) != 1 {
		t.Errorf("expected stale list of 1, got %v", s.Tasks())
	}
	if s.Busy() {
		t.Error("expected busy cleared after failure")
	}
}

func TestInsert_PrependsAndClearsDraft(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("old", false)
	s, a := newSync(t, svc)
	loadOrFail(t, s)

	s.SetDraft("  new task  ")
	if err := s.Insert(context.Background()); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	tasks := s.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Content != "new task" || tasks[0].ID != 2 || tasks[0].Done {
		t.Errorf("expected new task at position 0, got %+v", tasks[0])
	}
	if s.Draft() != "" {
		t.Errorf("expected draft cleared, got %q", s.Draft())
	}
	if a.count() != 0 {
		t.Errorf("expected no alerts, got %d", a.count())
	}
	if s.Busy() {
		t.Error("expected busy cleared")
	}
}

func TestInsert_EmptyDraftIsNoop(t *testing.T) {
	svc := testutil.NewFakeService()
	s, _ := newSync(t, svc)

	s.SetDraft("   \t ")
	err := s.Insert(context.Background())
	if !errors.Is(err, tasklist.ErrEmptyDraft) {
		t.Fatalf("expected ErrEmptyDraft, got %v", err)
	}
	if svc.Calls("") != 0 {
		t.Errorf("expected no store calls, got %d", svc.Calls(""))
	}
	if s.Draft() != "   \t " {
		t.Errorf("expected draft untouched, got %q", s.Draft())
	}
}

func TestInsert_FailureKeepsDraftAndAlerts(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.InsertTaskErr = errors.New("permission denied")
	s, a := newSync(t, svc)

	s.SetDraft("Buy milk")
	err := s.Insert(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if s.Draft() != "Buy milk" {
		t.Errorf("expected draft kept, got %q", s.Draft())
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("expected no tasks, got %v", s.Tasks())
	}
	if a.count() != 1 {
		t.Errorf("expected 1 alert, got %d", a.count())
	}
	if s.Busy() {
		t.Error("expected busy cleared after failure")
	}
}

func TestInsert_NoRowFallsBackToLoad(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("first", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)

	// Written elsewhere; the local list is now stale.
	svc.AddTask("external", false)
	svc.EmptyInsert = true

	s.SetDraft("mine")
	if err := s.Insert(context.Background()); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	want := svc.Stored()
	if got := s.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected list to equal a fresh load %v, got %v", want, got)
	}
	if svc.Calls("ListTasks") != 2 {
		t.Errorf("expected a second ListTasks call, got %d", svc.Calls("ListTasks"))
	}
}

func TestInsert_RejectedWhileBusy(t *testing.T) {
	svc := testutil.NewFakeService()
	s, _ := newSync(t, svc)

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.AfterList = func() {
		close(entered)
		<-release
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Load(context.Background()) }()
	<-entered

	if !s.Busy() {
		t.Error("expected busy while load is in flight")
	}
	s.SetDraft("hurry")
	if err := s.Insert(context.Background()); !errors.Is(err, tasklist.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if svc.Calls("InsertTask") != 0 {
		t.Errorf("expected no insert call, got %d", svc.Calls("InsertTask"))
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Draft() != "hurry" {
		t.Errorf("expected draft kept, got %q", s.Draft())
	}
}

func TestInsertText_LeavesDraftAlone(t *testing.T) {
	svc := testutil.NewFakeService()
	s, _ := newSync(t, svc)
	s.SetDraft("typing")

	if err := s.InsertText(context.Background(), "  Buy milk "); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].Content != "Buy milk" {
		t.Errorf("expected [Buy milk], got %v", got)
	}
	if s.Draft() != "typing" {
		t.Errorf("expected draft untouched, got %q", s.Draft())
	}
	if err := s.InsertText(context.Background(), "  "); !errors.Is(err, tasklist.ErrEmptyDraft) {
		t.Errorf("expected ErrEmptyDraft, got %v", err)
	}
}

func TestInsertText_ConcurrentCallerGetsBusy(t *testing.T) {
	svc := testutil.NewFakeService()
	s, _ := newSync(t, svc)

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.AfterInsert = func() {
		close(entered)
		<-release
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.InsertText(context.Background(), "first") }()
	<-entered

	if err := s.InsertText(context.Background(), "second"); !errors.Is(err, tasklist.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].Content != "first" {
		t.Errorf("expected only [first], got %v", got)
	}
	if n := svc.Calls("InsertTask"); n != 1 {
		t.Errorf("expected 1 insert call, got %d", n)
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("flip", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)
	ctx := context.Background()

	task, _ := s.Find(1)
	if err := s.Toggle(ctx, task); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	task, _ = s.Find(1)
	if !task.Done {
		t.Fatal("expected done after first toggle")
	}
	if err := s.Toggle(ctx, task); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	task, _ = s.Find(1)
	if task.Done {
		t.Error("expected local done restored to false")
	}
	loadOrFail(t, s)
	task, _ = s.Find(1)
	if task.Done {
		t.Error("expected stored done restored to false")
	}
}

func TestToggle_FailureLeavesTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("stay", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)

	svc.SetDoneErr = errors.New("network down")
	task, _ := s.Find(1)
	if err := s.Toggle(context.Background(), task); err == nil {
		t.Fatal("expected error")
	}
	task, _ = s.Find(1)
	if task.Done {
		t.Error("expected no optimistic update")
	}
}

func TestToggle_NoRowFallsBackToLoad(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("x", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)

	svc.EmptyUpdate = true
	task, _ := s.Find(1)
	if err := s.Toggle(context.Background(), task); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := s.Tasks(); !reflect.DeepEqual(got, svc.Stored()) {
		t.Errorf("expected reload result %v, got %v", svc.Stored(), got)
	}
}

func TestDelete_Finality(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)

	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Find(1); ok {
		t.Error("expected id 1 removed locally")
	}
	loadOrFail(t, s)
	if _, ok := s.Find(1); ok {
		t.Error("expected id 1 absent after reload")
	}
	if want := []int64{2}; !reflect.DeepEqual(ids(s.Tasks()), want) {
		t.Errorf("expected %v, got %v", want, ids(s.Tasks()))
	}
}

func TestDelete_FailureLeavesTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)

	svc.DeleteTaskErr = errors.New("forbidden")
	if err := s.Delete(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := s.Find(1); !ok {
		t.Error("expected task kept after failed delete")
	}
}

func TestNotConfigured_Guard(t *testing.T) {
	s, a := newSync(t, nil)
	ctx := context.Background()
	s.SetDraft("draft")

	checks := map[string]error{
		"load":   s.Load(ctx),
		"insert": s.Insert(ctx),
		"toggle": s.Toggle(ctx, service.Task{ID: 1}),
		"delete": s.Delete(ctx, 1),
	}
	for name, err := range checks {
		if !errors.Is(err, tasklist.ErrNotConfigured) {
			t.Errorf("%s: expected ErrNotConfigured, got %v", name, err)
		}
	}

	if len(s.Tasks()) != 0 {
		t.Errorf("expected no tasks, got %v", s.Tasks())
	}
	if s.Draft() != "draft" {
		t.Errorf("expected draft unchanged, got %q", s.Draft())
	}
	if a.count() != 0 {
		t.Errorf("expected no user alert for configuration errors, got %d", a.count())
	}
	if s.Busy() {
		t.Error("expected not busy")
	}
}

func TestScenario_BuyMilk(t *testing.T) {
	svc := testutil.NewFakeService()
	s, _ := newSync(t, svc)
	ctx := context.Background()
	loadOrFail(t, s)

	s.SetDraft("Buy milk")
	if err := s.Insert(ctx); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	want := []service.Task{{ID: 1, Content: "Buy milk", Done: false}}
	if got := s.Tasks(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after insert: expected %v, got %v", want, got)
	}
	if s.Draft() != "" {
		t.Errorf("expected empty draft, got %q", s.Draft())
	}

	if err := s.Toggle(ctx, s.Tasks()[0]); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !s.Tasks()[0].Done {
		t.Error("expected tasks[0].done == true")
	}

	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("expected empty list, got %v", s.Tasks())
	}
}

func TestSlowLoad_DoesNotUndoConcurrentMutations(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("to delete", false)
	svc.AddTask("to toggle", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	svc.AfterList = func() {
		close(entered)
		<-release
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.Load(ctx) }()
	<-entered

	// The in-flight load already read both rows unchanged.
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	task, _ := s.Find(2)
	if err := s.Toggle(ctx, task); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []service.Task{{ID: 2, Content: "to toggle", Done: true}}
	if got := s.Tasks(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestInsert_OverlappingLoadKeepsIDOrder(t *testing.T) {
	svc := testutil.NewFakeService()
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		svc.AddTask(c, false)
	}
	s, _ := newSync(t, svc)
	loadOrFail(t, s)
	ctx := context.Background()

	insertEntered := make(chan struct{})
	insertRelease := make(chan struct{})
	svc.AfterInsert = func() {
		close(insertEntered)
		<-insertRelease
	}

	s.SetDraft("mine")
	insertErr := make(chan error, 1)
	go func() { insertErr <- s.Insert(ctx) }()
	<-insertEntered // the store assigned id 6

	if other := svc.AddTask("theirs", false); other.ID != 7 {
		t.Fatalf("expected id 7 for the other client, got %d", other.ID)
	}

	loadEntered := make(chan struct{})
	loadRelease := make(chan struct{})
	svc.AfterList = func() {
		close(loadEntered)
		<-loadRelease
	}
	loadErr := make(chan error, 1)
	go func() { loadErr <- s.Load(ctx) }()
	<-loadEntered // the load read [7 6 5 4 3 2 1]

	close(insertRelease)
	if err := <-insertErr; err != nil {
		t.Fatalf("Insert: %v", err)
	}
	close(loadRelease)
	if err := <-loadErr; err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []int64{7, 6, 5, 4, 3, 2, 1}
	if got := ids(s.Tasks()); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSnapshot(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	s, _ := newSync(t, svc)
	loadOrFail(t, s)
	s.SetDraft("typing")

	snap := s.Snapshot()
	if len(snap.Tasks) != 1 || snap.Draft != "typing" || snap.Busy {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Revision == 0 {
		t.Error("expected revision to advance after load")
	}
}
