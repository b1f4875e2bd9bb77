package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-sync/internal/editsession"
	"github.com/idilsaglam/todo-sync/internal/model"
)

var errBackend = errors.New("backend down")

type fakeRemote struct {
	todos  []model.Todo
	nextID int64
	fail   map[string]error
	calls  map[string]int
	// listFor overrides List results per scope.
	listFor map[bool][]model.Todo
	// normalize rewrites names on update to mimic backend canonicalization.
	normalize func(string) string
	// silentComplete answers complete with an empty body.
	silentComplete bool
}

const completedOn = "2024-01-15"

func newFakeRemote(todos ...model.Todo) *fakeRemote {
	return &fakeRemote{
		todos:  todos,
		nextID: 100,
		fail:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeRemote) List(ctx context.Context, showCompleted bool) ([]model.Todo, error) {
	f.calls["list"]++
	if err := f.fail["list"]; err != nil {
		return nil, err
	}
	if l, ok := f.listFor[showCompleted]; ok {
		return l, nil
	}
	out := []model.Todo{}
	for _, t := range f.todos {
		if showCompleted || !t.Completed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRemote) Create(ctx context.Context, d model.Draft) (model.Todo, error) {
	f.calls["create"]++
	if err := f.fail["create"]; err != nil {
		return model.Todo{}, err
	}
	f.nextID++
	t := model.Todo{ID: f.nextID, Name: d.Name, DueDate: d.DueDate, Completed: d.Completed}
	if d.Completed {
		t.CompletionDate = d.CompletionDate
	}
	f.todos = append(f.todos, t)
	return t, nil
}

func (f *fakeRemote) Complete(ctx context.Context, id int64) (model.Todo, error) {
	f.calls["complete"]++
	if err := f.fail["complete"]; err != nil {
		return model.Todo{}, err
	}
	for i, t := range f.todos {
		if t.ID == id {
			f.todos[i].Completed = true
			if f.todos[i].CompletionDate == "" {
				f.todos[i].CompletionDate = completedOn
			}
			if f.silentComplete {
				return model.Todo{}, nil
			}
			return f.todos[i], nil
		}
	}
	return model.Todo{}, nil
}

func (f *fakeRemote) Update(ctx context.Context, id int64, d model.Draft) (model.Todo, error) {
	f.calls["update"]++
	if err := f.fail["update"]; err != nil {
		return model.Todo{}, err
	}
	name := d.Name
	if f.normalize != nil {
		name = f.normalize(name)
	}
	return model.Todo{ID: id, Name: name, DueDate: d.DueDate, Completed: d.Completed}, nil
}

func (f *fakeRemote) Delete(ctx context.Context, id int64) error {
	f.calls["delete"]++
	return f.fail["delete"]
}

func newTestController(t *testing.T, r Remote, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(context.Background(), r, opts...)
}

// run executes cmd the way the Bubble Tea runtime would and feeds the result back.
func run(t *testing.T, c *Controller, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	if !c.Handle(cmd()) {
		t.Fatal("controller did not handle its own message")
	}
}

func seed() []model.Todo {
	return []model.Todo{
		{ID: 1, Name: "open a", DueDate: "2024-01-01"},
		{ID: 2, Name: "done b", DueDate: "2024-01-02", Completed: true, CompletionDate: "2024-01-03"},
		{ID: 5, Name: "Buy milk", DueDate: "2024-01-05"},
	}
}

func visibleIDs(c *Controller) []int64 {
	var out []int64
	for _, t := range c.Visible() {
		out = append(out, t.ID)
	}
	return out
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterFidelity(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)

	run(t, c, c.SetShowCompleted(true))
	if got := visibleIDs(c); !sameIDs(got, []int64{1, 2, 5}) {
		t.Fatalf("showCompleted=true: expected [1 2 5], got %v", got)
	}

	run(t, c, c.ToggleShowCompleted())
	if c.ShowCompleted() {
		t.Fatal("expected filter off after toggle")
	}
	if r.calls["list"] != 2 {
		t.Errorf("expected each filter change to refetch, got %d list calls", r.calls["list"])
	}
	if got := visibleIDs(c); !sameIDs(got, []int64{1, 5}) {
		t.Fatalf("showCompleted=false: expected [1 5], got %v", got)
	}
}

func TestProjectionHidesCompletedEvenIfBackendReturnsThem(t *testing.T) {
	r := newFakeRemote()
	r.listFor = map[bool][]model.Todo{false: seed()}
	c := newTestController(t, r)

	run(t, c, c.Load())
	if got := visibleIDs(c); !sameIDs(got, []int64{1, 5}) {
		t.Errorf("expected completed record hidden, got %v", got)
	}
}

func TestStaleResponseOrdering(t *testing.T) {
	r := newFakeRemote()
	r.listFor = map[bool][]model.Todo{
		false: {{ID: 1, Name: "open"}},
		true:  {{ID: 1, Name: "open"}, {ID: 2, Name: "done", Completed: true}},
	}
	c := newTestController(t, r)

	// showCompleted=false goes out first, then true before it resolves
	first := c.Load()
	second := c.SetShowCompleted(true)

	// the newer request resolves first
	if !c.Handle(second()) {
		t.Fatal("second response not handled")
	}
	if got := visibleIDs(c); !sameIDs(got, []int64{1, 2}) {
		t.Fatalf("expected true-scope state, got %v", got)
	}

	// the older response arrives late and must be ignored
	c.Handle(first())
	if got := visibleIDs(c); !sameIDs(got, []int64{1, 2}) {
		t.Fatalf("stale response overwrote state: %v", got)
	}
}

func TestListFailureKeepsState(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	r.fail["list"] = errBackend
	run(t, c, c.Load())

	if got := visibleIDs(c); !sameIDs(got, []int64{1, 5}) {
		t.Errorf("expected stale-but-consistent list, got %v", got)
	}
	if _, ok := c.Notice(); ok {
		t.Error("list failures must not raise a blocking notice")
	}
}

func TestEmptyNameRejection(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		r := newFakeRemote(seed()...)
		c := newTestController(t, r)
		run(t, c, c.Load())

		c.SetFormName(name)
		cmd, err := c.SubmitCreate()
		if !errors.Is(err, model.ErrNameRequired) {
			t.Fatalf("name %q: expected ErrNameRequired, got %v", name, err)
		}
		if cmd != nil {
			t.Fatalf("name %q: expected no command", name)
		}
		if r.calls["create"] != 0 {
			t.Errorf("name %q: expected no network request", name)
		}
		if len(c.Visible()) != 2 {
			t.Errorf("name %q: collection changed", name)
		}
		if c.Pending() != 0 {
			t.Errorf("name %q: pending counter moved", name)
		}
	}
}

func TestCreateRoundTrip(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	c.SetFormName("Buy milk")
	c.SetFormDueDate("2024-01-01")
	cmd, err := c.SubmitCreate()
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}
	if c.Pending() != 1 {
		t.Errorf("expected 1 pending call, got %d", c.Pending())
	}
	if len(c.Visible()) != 2 {
		t.Fatal("record appended before backend confirmed")
	}

	run(t, c, cmd)

	items := c.Visible()
	if len(items) != 3 {
		t.Fatalf("expected exactly one record appended, got %d", len(items))
	}
	last := items[len(items)-1]
	if last.ID != 101 || last.Name != "Buy milk" || last.DueDate != "2024-01-01" {
		t.Errorf("unexpected appended record: %+v", last)
	}
	if c.Form() != (model.Draft{}) {
		t.Errorf("expected form reset, got %+v", c.Form())
	}
	if c.Pending() != 0 {
		t.Errorf("expected no pending calls, got %d", c.Pending())
	}
}

func TestCreateFailureKeepsFormAndState(t *testing.T) {
	r := newFakeRemote(seed()...)
	r.fail["create"] = errBackend
	c := newTestController(t, r)
	run(t, c, c.Load())

	c.SetFormName("Buy milk")
	cmd, _ := c.SubmitCreate()
	run(t, c, cmd)

	if len(c.Visible()) != 2 {
		t.Error("collection changed on failed create")
	}
	if c.Form().Name != "Buy milk" {
		t.Error("form was reset on failed create")
	}
	n, ok := c.Notice()
	if !ok || n.Op != "create" || !errors.Is(n.Err, errBackend) {
		t.Fatalf("expected create notice, got %+v %v", n, ok)
	}
	if n.String() != "Error creating todo: backend down" {
		t.Errorf("unexpected notice text %q", n.String())
	}
	c.Acknowledge()
	if _, ok := c.Notice(); ok {
		t.Error("expected notice cleared after acknowledge")
	}
}

func TestCreateCompletedOutOfScopeIsNotHeld(t *testing.T) {
	r := newFakeRemote()
	c := newTestController(t, r)
	run(t, c, c.Load())

	c.SetFormName("already done")
	c.ToggleFormCompleted()
	c.SetFormCompletionDate("2024-01-01")
	cmd, err := c.SubmitCreate()
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}
	run(t, c, cmd)

	if len(c.store.Items()) != 0 {
		t.Errorf("completed record held while scope excludes completed: %+v", c.store.Items())
	}
	if c.Form() != (model.Draft{}) {
		t.Error("expected form reset after successful create")
	}
}

func TestCompleteConfirmThenApply(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r, WithShowCompleted(true))
	run(t, c, c.Load())

	r.fail["complete"] = errBackend
	run(t, c, c.Complete(5))
	if got, _ := c.Get(5); got.Completed {
		t.Fatal("record completed despite backend failure")
	}
	if n, ok := c.Notice(); !ok || n.Op != "complete" {
		t.Fatalf("expected complete notice, got %+v", n)
	}
	c.Acknowledge()

	delete(r.fail, "complete")
	cmd := c.Complete(5)
	if got, _ := c.Get(5); got.Completed {
		t.Fatal("record completed before response resolved")
	}
	run(t, c, cmd)
	if got, _ := c.Get(5); !got.Completed {
		t.Fatal("expected record completed after success")
	}
}

func TestCompleteMergesStampedRecord(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r, WithShowCompleted(true))
	run(t, c, c.Load())

	run(t, c, c.Complete(5))
	got, _ := c.Get(5)
	if !got.Completed || got.CompletionDate != completedOn {
		t.Errorf("expected completion date %s from the backend, got %+v", completedOn, got)
	}

	r.silentComplete = true
	run(t, c, c.Complete(1))
	got, _ = c.Get(1)
	if !got.Completed || got.CompletionDate != "" {
		t.Errorf("expected completed flag only without a body, got %+v", got)
	}
}

func TestCompleteHidesRecordWhenScopeExcludesCompleted(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	run(t, c, c.Complete(1))
	if got := visibleIDs(c); !sameIDs(got, []int64{5}) {
		t.Errorf("expected completed record hidden, got %v", got)
	}
}

func TestDeleteConfirmThenApply(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r, WithShowCompleted(true))
	run(t, c, c.Load())

	r.fail["delete"] = errBackend
	run(t, c, c.Delete(2))
	if _, ok := c.Get(2); !ok {
		t.Fatal("record removed despite backend failure")
	}
	c.Acknowledge()

	delete(r.fail, "delete")
	run(t, c, c.Delete(2))
	if got := visibleIDs(c); !sameIDs(got, []int64{1, 5}) {
		t.Fatalf("expected only id 2 removed, got %v", got)
	}
}

func TestEditSaveRoundTrip(t *testing.T) {
	r := newFakeRemote(seed()...)
	r.normalize = func(s string) string { return s + " (2%)" }
	c := newTestController(t, r)
	run(t, c, c.Load())

	if err := c.BeginEdit(5); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	if err := c.EditName(5, "Buy oat milk"); err != nil {
		t.Fatalf("EditName failed: %v", err)
	}
	if got, _ := c.Get(5); got.Name != "Buy milk" {
		t.Fatalf("typed edit leaked into stored record: %q", got.Name)
	}

	cmd, err := c.SaveEdit(5)
	if err != nil {
		t.Fatalf("SaveEdit failed: %v", err)
	}
	if c.EditState(5) != editsession.Editing {
		t.Fatal("left Editing before backend confirmed")
	}
	run(t, c, cmd)

	if c.EditState(5) != editsession.Viewing {
		t.Error("expected Viewing after successful save")
	}
	got, _ := c.Get(5)
	if got.Name != "Buy oat milk (2%)" {
		t.Errorf("expected backend canonical name, got %q", got.Name)
	}
}

func TestEditSaveFailureStaysEditing(t *testing.T) {
	r := newFakeRemote(seed()...)
	r.fail["update"] = errBackend
	c := newTestController(t, r)
	run(t, c, c.Load())

	_ = c.BeginEdit(5)
	_ = c.EditName(5, "Buy oat milk")
	cmd, _ := c.SaveEdit(5)
	run(t, c, cmd)

	if c.EditState(5) != editsession.Editing {
		t.Fatal("expected record to stay Editing after failed save")
	}
	d, _ := c.Draft(5)
	if d.Name != "Buy oat milk" {
		t.Errorf("typed edit lost after failed save: %q", d.Name)
	}
	if n, ok := c.Notice(); !ok || n.Op != "update" {
		t.Errorf("expected update notice, got %+v", n)
	}
	if r.calls["update"] != 1 {
		t.Errorf("expected no retry, got %d update calls", r.calls["update"])
	}
}

func TestCancelEditReverts(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	_ = c.BeginEdit(5)
	_ = c.EditName(5, "something else")
	_ = c.EditDueDate(5, "2030-01-01")
	c.CancelEdit(5)

	if c.EditState(5) != editsession.Viewing {
		t.Fatal("expected Viewing after cancel")
	}
	got, _ := c.Get(5)
	if got.Name != "Buy milk" || got.DueDate != "2024-01-05" {
		t.Errorf("cancel did not revert: %+v", got)
	}
	if r.calls["update"] != 0 {
		t.Error("cancel must not call the backend")
	}
}

func TestBeginEditRules(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r, WithShowCompleted(true))
	run(t, c, c.Load())

	if err := c.BeginEdit(2); !errors.Is(err, editsession.ErrCompleted) {
		t.Errorf("expected ErrCompleted, got %v", err)
	}
	if err := c.BeginEdit(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.SaveEdit(1); !errors.Is(err, editsession.ErrNotEditing) {
		t.Errorf("expected ErrNotEditing, got %v", err)
	}
}

func TestSaveEditValidates(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	_ = c.BeginEdit(1)
	_ = c.EditName(1, "  ")
	if _, err := c.SaveEdit(1); !errors.Is(err, model.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if r.calls["update"] != 0 {
		t.Error("invalid draft was sent")
	}
}

func TestRowsCarryDrafts(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	_ = c.BeginEdit(1)
	_ = c.EditName(1, "typed")

	rows := c.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].State != editsession.Editing || rows[0].Draft.Name != "typed" || rows[0].Todo.Name != "open a" {
		t.Errorf("unexpected editing row: %+v", rows[0])
	}
	if rows[1].State != editsession.Viewing {
		t.Errorf("unexpected viewing row: %+v", rows[1])
	}
}

func TestRefetchDropsSessionsOutOfScope(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())
	_ = c.BeginEdit(1)

	r.listFor = map[bool][]model.Todo{false: {{ID: 5, Name: "Buy milk"}}}
	run(t, c, c.Load())

	if c.EditState(1) != editsession.Viewing {
		t.Error("expected session for vanished record to end")
	}
}

func TestDeleteEndsEditSession(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())
	_ = c.BeginEdit(1)

	run(t, c, c.Delete(1))
	if c.EditState(1) != editsession.Viewing {
		t.Error("expected session to end with the record")
	}
}

func TestHandleIgnoresForeignMessages(t *testing.T) {
	c := newTestController(t, newFakeRemote())
	if c.Handle(tea.KeyMsg{}) {
		t.Error("expected foreign message to be ignored")
	}
}

func TestRefreshIssuedBeforeDeleteDoesNotRestoreRecord(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r, WithShowCompleted(true))
	run(t, c, c.Load())

	// the list is served before the delete lands on the backend
	refresh := c.Refresh()
	before := refresh()

	run(t, c, c.Delete(1))
	r.todos = r.todos[1:]
	c.Handle(before)
	if !sameIDs(visibleIDs(c), []int64{2, 5}) {
		t.Fatalf("list issued before the delete restored it: %v", visibleIDs(c))
	}

	resync := c.Resync()
	if resync == nil {
		t.Fatal("expected a fresh fetch after the superseded one")
	}
	run(t, c, resync)
	if got := visibleIDs(c); !sameIDs(got, []int64{2, 5}) {
		t.Errorf("after resync: expected [2 5], got %v", got)
	}
	if c.Resync() != nil {
		t.Error("resync should be one-shot")
	}
}

func TestRefreshIssuedBeforeSaveDoesNotRevertEdit(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	refresh := c.Refresh()
	before := refresh()

	if err := c.BeginEdit(5); err != nil {
		t.Fatalf("BeginEdit failed: %v", err)
	}
	_ = c.EditName(5, "Buy oat milk")
	save, err := c.SaveEdit(5)
	if err != nil {
		t.Fatalf("SaveEdit failed: %v", err)
	}
	run(t, c, save)

	c.Handle(before)
	if got, _ := c.Get(5); got.Name != "Buy oat milk" {
		t.Errorf("saved edit reverted by an older list: %q", got.Name)
	}
}

func TestResyncIdleWithoutInflightFetch(t *testing.T) {
	r := newFakeRemote(seed()...)
	c := newTestController(t, r)
	run(t, c, c.Load())

	run(t, c, c.Delete(1))
	if c.Resync() != nil {
		t.Error("no fetch was in flight, nothing to resync")
	}
}
