// Package tui is the interactive list view. It owns no todo state of its
// own: every row comes from the controller and every change goes through it.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-sync/internal/controller"
	"github.com/idilsaglam/todo-sync/internal/editsession"
	"github.com/idilsaglam/todo-sync/internal/model"
	"github.com/idilsaglam/todo-sync/internal/todostore"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

type Model struct {
	ctrl *controller.Controller
	list list.Model
	keys keyMap

	mode   mode
	form   form
	editID int64
	status string

	width  int
	height int
}

// New builds the list view around ctrl.
func New(ctrl *controller.Controller) Model {
	keys := defaultKeys()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("todo", "todos")
	l.AdditionalShortHelpKeys = keys.listHelp
	l.AdditionalFullHelpKeys = keys.listHelp

	m := Model{
		ctrl:   ctrl,
		list:   l,
		keys:   keys,
		width:  80,
		height: 24,
	}
	m.syncItems()
	return m
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(ctrl *controller.Controller) error {
	p := tea.NewProgram(New(ctrl), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init loads the first page of todos for the current scope.
func (m Model) Init() tea.Cmd { return m.ctrl.Load() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.ctrl.Handle(msg) {
		m.afterResult(msg)
		m.syncItems()
		return m, m.ctrl.Resync()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if _, ok := m.ctrl.Notice(); ok {
			return m.updateNotice(msg)
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// afterResult closes forms whose save the backend just confirmed, and the
// edit form whose record is no longer being edited.
func (m *Model) afterResult(msg tea.Msg) {
	switch msg := msg.(type) {
	case controller.CreatedMsg:
		if msg.Err == nil {
			m.status = "added"
			if m.mode == modeAdd {
				m.mode = modeList
			}
		}
	case controller.UpdatedMsg:
		if msg.Err == nil {
			m.status = "saved"
			if m.mode == modeEdit && m.editID == msg.ID {
				m.mode = modeList
			}
		}
	case controller.CompletedMsg:
		if msg.Err == nil {
			m.status = "completed"
		}
	case controller.DeletedMsg:
		if msg.Err == nil {
			m.status = "deleted"
		}
	}

	// a refetch, delete or complete can end the session under the open form
	if m.mode == modeEdit && m.ctrl.EditState(m.editID) != editsession.Editing {
		m.mode = modeList
		m.form.err = ""
		if m.status == "" || m.status == "saving…" {
			m.status = "todo no longer available"
		}
	}
}

func (m Model) updateNotice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ":
		m.ctrl.Acknowledge()
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Add):
		m.mode = modeAdd
		m.form = newForm(m.ctrl.Form(), true)
		return m, m.form.Focus()

	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.ctrl.BeginEdit(it.Todo.ID); err != nil {
			m.status = errorText(err)
			return m, nil
		}
		d, _ := m.ctrl.Draft(it.Todo.ID)
		m.mode = modeEdit
		m.editID = it.Todo.ID
		m.form = newForm(d, false)
		m.syncItems()
		return m, m.form.Focus()

	case key.Matches(msg, m.keys.Complete):
		it, ok := m.selected()
		if !ok || it.Todo.Completed {
			return m, nil
		}
		m.status = "completing…"
		return m, m.ctrl.Complete(it.Todo.ID)

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.status = "deleting…"
		return m, m.ctrl.Delete(it.Todo.ID)

	case key.Matches(msg, m.keys.Filter):
		return m, m.ctrl.ToggleShowCompleted()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.ctrl.Refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		cmd, err := m.ctrl.SubmitCreate()
		if err != nil {
			m.form.err = errorText(err)
			return m, nil
		}
		m.form.err = ""
		m.status = "saving…"
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.ToggleFormCompleted()
		m.form.completed = m.ctrl.Form().Completed
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.form.move(-1)
	}

	cmd := m.form.update(msg)
	m.ctrl.SetFormName(m.form.value(fieldName))
	m.ctrl.SetFormDueDate(m.form.value(fieldDue))
	m.ctrl.SetFormCompletionDate(m.form.value(fieldCompletion))
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.editID
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.CancelEdit(id)
		m.mode = modeList
		m.status = "edit cancelled"
		m.syncItems()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		cmd, err := m.ctrl.SaveEdit(id)
		if err != nil {
			m.form.err = errorText(err)
			return m, nil
		}
		m.form.err = ""
		m.status = "saving…"
		return m, cmd
	case key.Matches(msg, m.keys.Next):
		return m, m.form.move(1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.form.move(-1)
	}

	cmd := m.form.update(msg)
	var err error
	switch m.form.focus {
	case fieldName:
		err = m.ctrl.EditName(id, m.form.value(fieldName))
	case fieldDue:
		err = m.ctrl.EditDueDate(id, m.form.value(fieldDue))
	case fieldCompletion:
		err = m.ctrl.EditCompletionDate(id, m.form.value(fieldCompletion))
	}
	if errors.Is(err, editsession.ErrNotEditing) {
		// the record went away underneath us (refresh or delete)
		m.mode = modeList
		m.status = "todo no longer available"
	}
	m.syncItems()
	return m, cmd
}

func (m Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// syncItems rebuilds the list from the controller, keeping the cursor on the
// same record when it is still visible.
func (m *Model) syncItems() {
	var keepID int64 = -1
	if it, ok := m.selected(); ok {
		keepID = it.Todo.ID
	}

	rows := m.ctrl.Rows()
	items := make([]list.Item, 0, len(rows))
	idx := 0
	for i, r := range rows {
		if r.Todo.ID == keepID {
			idx = i
		}
		items = append(items, listItem{Row: r})
	}
	m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(idx)
	}
	m.list.Title = m.header(rows)
}

func (m Model) header(rows []controller.Row) string {
	todos := make([]model.Todo, len(rows))
	for i, r := range rows {
		todos[i] = r.Todo
	}
	done, pending := todostore.Stats(todos)

	scope := "open"
	if m.ctrl.ShowCompleted() {
		scope = "all"
	}
	h := fmt.Sprintf("%s   %s %d  %s %d  %s %s",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Showing"), scope,
	)
	if n := m.ctrl.Pending(); n > 0 {
		h += "  " + mutedStyle.Render(fmt.Sprintf("⟳ %d", n))
	}
	return h
}

func (m Model) View() string {
	w, h := m.width, m.height
	listHeight := h - 4
	if m.mode != modeList {
		listHeight = h - 12
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(w-4, listHeight)

	parts := []string{m.list.View()}
	switch m.mode {
	case modeAdd:
		parts = append(parts, m.form.view("Add new todo"))
	case modeEdit:
		parts = append(parts, m.form.view(fmt.Sprintf("Edit todo #%d", m.editID)))
	}
	if n, ok := m.ctrl.Notice(); ok {
		body := errorStyle.Render(n.Title()) + "\n" + n.Err.Error() + "\n" + helpStyle.Render("press enter to dismiss")
		parts = append(parts, noticeStyle.Render(body))
	} else if m.status != "" {
		parts = append(parts, mutedStyle.Render(m.status))
	}
	return panelString(strings.Join(parts, "\n"))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, model.ErrNameRequired):
		return "Todo name is required"
	case errors.Is(err, model.ErrInvalidDate):
		return "Dates must be YYYY-MM-DD"
	case errors.Is(err, editsession.ErrCompleted):
		return "Completed todos cannot be edited"
	}
	return err.Error()
}
