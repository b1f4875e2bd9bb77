// Package controller turns user intents into backend calls and applies the
// confirmed results to local state.
//
// Intent methods are called from the UI's update loop. Anything that talks to
// the backend is returned as a tea.Cmd; its result comes back as a message that
// must be passed to Handle on the same loop. Local state only changes in
// Handle, after the backend has answered, with one exception: field edits go
// straight into the record's edit draft.
package controller

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-sync/internal/editsession"
	"github.com/idilsaglam/todo-sync/internal/model"
	"github.com/idilsaglam/todo-sync/internal/todostore"
)

var ErrNotFound = errors.New("todo not found")

// Remote is the backend the controller syncs with.
type Remote interface {
	List(ctx context.Context, showCompleted bool) ([]model.Todo, error)
	Create(ctx context.Context, d model.Draft) (model.Todo, error)
	Complete(ctx context.Context, id int64) (model.Todo, error)
	Update(ctx context.Context, id int64, d model.Draft) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Row is a record as the UI should show it.
type Row struct {
	Todo  model.Todo
	State editsession.State
	// Draft is only set while State is Editing.
	Draft model.Draft
}

type Controller struct {
	ctx     context.Context
	remote  Remote
	store   *todostore.Store
	edits   *editsession.Sessions
	log     *slog.Logger
	form    model.Draft
	notice  *Notice
	pending int

	// inflight is set while the active list fetch has not answered.
	inflight bool
	// resync is set when a confirmed mutation invalidated that fetch.
	resync   bool
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithShowCompleted sets the initial filter scope.
func WithShowCompleted(v bool) Option {
	return func(c *Controller) { c.store = todostore.New(v) }
}

// New builds a controller. ctx bounds every backend call it issues.
func New(ctx context.Context, remote Remote, opts ...Option) *Controller {
	c := &Controller{
		ctx:    ctx,
		remote: remote,
		store:  todostore.New(false),
		edits:  editsession.New(),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---------- reads ----------

func (c *Controller) ShowCompleted() bool { return c.store.ShowCompleted() }

// Visible is the filtered collection in display order.
func (c *Controller) Visible() []model.Todo {
	return todostore.Project(c.store.Items(), c.store.ShowCompleted())
}

// Rows is Visible with each record's edit state attached.
func (c *Controller) Rows() []Row {
	visible := c.Visible()
	rows := make([]Row, 0, len(visible))
	for _, t := range visible {
		r := Row{Todo: t, State: c.edits.State(t.ID)}
		if d, ok := c.edits.Draft(t.ID); ok {
			r.Draft = d
		}
		rows = append(rows, r)
	}
	return rows
}

func (c *Controller) Get(id int64) (model.Todo, bool) { return c.store.Get(id) }

func (c *Controller) EditState(id int64) editsession.State { return c.edits.State(id) }

func (c *Controller) Draft(id int64) (model.Draft, bool) { return c.edits.Draft(id) }

// Pending counts mutating calls that have not answered yet.
func (c *Controller) Pending() int { return c.pending }

// Notice returns the failure waiting for acknowledgement, if any.
func (c *Controller) Notice() (Notice, bool) {
	if c.notice == nil {
		return Notice{}, false
	}
	return *c.notice, true
}

func (c *Controller) Acknowledge() { c.notice = nil }

// ---------- list + filter ----------

// Load fetches the current scope. Used on start and for manual refresh.
func (c *Controller) Load() tea.Cmd {
	return c.fetch(c.store.Reload())
}

// Refresh is Load under the name the refresh key uses.
func (c *Controller) Refresh() tea.Cmd { return c.Load() }

// Resync reissues a list fetch that a confirmed mutation made stale. It
// returns nil when nothing was invalidated. Call it after Handle.
func (c *Controller) Resync() tea.Cmd {
	if !c.resync {
		return nil
	}
	return c.Load()
}

func (c *Controller) ToggleShowCompleted() tea.Cmd {
	return c.SetShowCompleted(!c.store.ShowCompleted())
}

// SetShowCompleted switches scope and refetches. Cached data is never
// re-filtered locally; only the response for the new scope is applied.
func (c *Controller) SetShowCompleted(v bool) tea.Cmd {
	return c.fetch(c.store.SetShowCompleted(v))
}

func (c *Controller) fetch(tag todostore.Tag) tea.Cmd {
	c.inflight = true
	c.resync = false
	ctx, remote, show := c.ctx, c.remote, c.store.ShowCompleted()
	return func() tea.Msg {
		todos, err := remote.List(ctx, show)
		return FetchedMsg{Tag: tag, ShowCompleted: show, Todos: todos, Err: err}
	}
}

// ---------- create form ----------

func (c *Controller) Form() model.Draft { return c.form }

func (c *Controller) SetFormName(v string)           { c.form.Name = v }
func (c *Controller) SetFormDueDate(v string)        { c.form.DueDate = v }
func (c *Controller) SetFormCompletionDate(v string) { c.form.CompletionDate = v }
func (c *Controller) ToggleFormCompleted()           { c.form.Completed = !c.form.Completed }

func (c *Controller) ResetForm() { c.form = model.Draft{} }

// SubmitCreate validates the form and returns the create call. A validation
// error is returned synchronously and nothing is sent.
func (c *Controller) SubmitCreate() (tea.Cmd, error) {
	d := c.form
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c.pending++
	ctx, remote := c.ctx, c.remote
	return func() tea.Msg {
		t, err := remote.Create(ctx, d)
		return CreatedMsg{Todo: t, Err: err}
	}, nil
}

// ---------- per-record actions ----------

func (c *Controller) Complete(id int64) tea.Cmd {
	c.pending++
	ctx, remote := c.ctx, c.remote
	return func() tea.Msg {
		t, err := remote.Complete(ctx, id)
		return CompletedMsg{ID: id, Todo: t, Err: err}
	}
}

func (c *Controller) Delete(id int64) tea.Cmd {
	c.pending++
	ctx, remote := c.ctx, c.remote
	return func() tea.Msg {
		return DeletedMsg{ID: id, Err: remote.Delete(ctx, id)}
	}
}

// BeginEdit moves id into Editing. Completed records are refused.
func (c *Controller) BeginEdit(id int64) error {
	t, ok := c.store.Get(id)
	if !ok {
		return ErrNotFound
	}
	return c.edits.Begin(t)
}

func (c *Controller) EditName(id int64, v string) error { return c.edits.SetName(id, v) }

func (c *Controller) EditDueDate(id int64, v string) error { return c.edits.SetDueDate(id, v) }

func (c *Controller) EditCompletionDate(id int64, v string) error {
	return c.edits.SetCompletionDate(id, v)
}

// SaveEdit sends the draft for id. The record stays in Editing until the
// backend confirms.
func (c *Controller) SaveEdit(id int64) (tea.Cmd, error) {
	d, ok := c.edits.Draft(id)
	if !ok {
		return nil, editsession.ErrNotEditing
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c.pending++
	ctx, remote := c.ctx, c.remote
	return func() tea.Msg {
		t, err := remote.Update(ctx, id, d)
		return UpdatedMsg{ID: id, Todo: t, Err: err}
	}, nil
}

// CancelEdit discards the draft; the stored record is unchanged.
func (c *Controller) CancelEdit(id int64) { c.edits.Cancel(id) }

// ---------- results ----------

// Handle applies a backend result. It reports whether msg was one of ours.
func (c *Controller) Handle(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case FetchedMsg:
		c.handleFetched(msg)
	case CreatedMsg:
		c.pending--
		if msg.Err != nil {
			c.fail("create", msg.Err)
			return true
		}
		c.insert(msg.Todo)
		c.ResetForm()
		c.invalidateFetch()
	case CompletedMsg:
		c.pending--
		if msg.Err != nil {
			c.fail("complete", msg.Err)
			return true
		}
		if msg.Todo.ID == msg.ID && msg.Todo.Completed {
			c.store.PatchByID(msg.ID, model.PatchFrom(msg.Todo))
		} else {
			done := true
			c.store.PatchByID(msg.ID, model.Patch{Completed: &done})
		}
		c.edits.Drop(msg.ID)
		c.invalidateFetch()
	case UpdatedMsg:
		c.pending--
		if msg.Err != nil {
			c.fail("update", msg.Err)
			return true
		}
		c.store.PatchByID(msg.ID, model.PatchFrom(msg.Todo))
		c.edits.Commit(msg.ID)
		c.invalidateFetch()
	case DeletedMsg:
		c.pending--
		if msg.Err != nil {
			c.fail("delete", msg.Err)
			return true
		}
		c.store.RemoveByID(msg.ID)
		c.edits.Drop(msg.ID)
		c.invalidateFetch()
	default:
		return false
	}
	return true
}

func (c *Controller) handleFetched(msg FetchedMsg) {
	if msg.Tag != c.store.Active() {
		c.log.Debug("dropping stale list response", "tag", msg.Tag, "active", c.store.Active())
		return
	}
	c.inflight = false
	if msg.Err != nil {
		c.log.Warn("fetch todos failed", "show_completed", msg.ShowCompleted, "err", msg.Err)
		return
	}
	c.store.ApplyFetch(msg.Tag, msg.Todos)
	c.edits.Retain(c.store.IDs())
}

// invalidateFetch retires an in-flight list fetch. Its response was served
// before the mutation just applied and must not overwrite it.
func (c *Controller) invalidateFetch() {
	if !c.inflight {
		return
	}
	c.store.Reload()
	c.inflight = false
	c.resync = true
	c.log.Debug("list fetch superseded by confirmed mutation", "active", c.store.Active())
}

// insert appends a created record, keeping ids unique and the collection
// within the current scope.
func (c *Controller) insert(t model.Todo) {
	if !c.store.ShowCompleted() && t.Completed {
		return
	}
	if c.store.PatchByID(t.ID, model.PatchFrom(t)) {
		return
	}
	c.store.Append(t)
}

func (c *Controller) fail(op string, err error) {
	c.log.Warn(op+" todo failed", "err", err)
	c.notice = &Notice{Op: op, Err: err}
}
