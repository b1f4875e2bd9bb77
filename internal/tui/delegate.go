package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-sync/internal/controller"
	"github.com/idilsaglam/todo-sync/internal/editsession"
)

// listItem adapts a controller row to bubbles/list.Item
type listItem struct {
	controller.Row
}

func (i listItem) FilterValue() string { return i.Todo.Name }

// name is what the row shows: the draft while editing, the record otherwise.
func (i listItem) name() string {
	if i.State == editsession.Editing {
		return i.Draft.Name
	}
	return i.Todo.Name
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := it.name()
	if r := []rune(text); len(r) > 60 {
		text = string(r[:57]) + "..."
	}
	if it.Todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	var cols []string
	cols = append(cols, fmt.Sprintf("%s %s", box, text))
	if it.Todo.DueDate != "" {
		cols = append(cols, mutedStyle.Render("due "+it.Todo.DueDate))
	}
	if it.Todo.Completed && it.Todo.CompletionDate != "" {
		cols = append(cols, successStyle.Render("done "+it.Todo.CompletionDate))
	}
	if it.State == editsession.Editing {
		cols = append(cols, editingStyle.Render(editMark+" editing"))
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+strings.Join(cols, "  "))
}
