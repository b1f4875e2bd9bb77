package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todo-sync/internal/model"
)

const (
	fieldName = iota
	fieldDue
	fieldCompletion
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Due", "Done on"}

// form is the shared inline editor used for add and edit.
type form struct {
	inputs    [fieldCount]textinput.Model
	focus     int
	completed bool
	toggle    bool // offer the completed toggle (add only)
	err       string
}

func newForm(d model.Draft, toggle bool) form {
	f := form{completed: d.Completed, toggle: toggle}
	values := [fieldCount]string{d.Name, d.DueDate, d.CompletionDate}
	placeholders := [fieldCount]string{"Todo name...", "YYYY-MM-DD", "YYYY-MM-DD (optional)"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		ti.SetValue(values[i])
		ti.CursorEnd()
		f.inputs[i] = ti
	}
	f.inputs[fieldDue].CharLimit = len(model.DateLayout)
	f.inputs[fieldCompletion].CharLimit = len(model.DateLayout)
	return f
}

// Focus puts the cursor on the first field.
func (f *form) Focus() tea.Cmd {
	f.focus = fieldName
	return f.inputs[fieldName].Focus()
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	// the completion date only matters for completed drafts
	if !f.completed && f.focus == fieldCompletion {
		f.focus = (f.focus + delta + fieldCount) % fieldCount
	}
	return f.inputs[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

func (f form) view(title string) string {
	if f.err != "" {
		title += " — " + errorStyle.Render(f.err)
	}
	lines := []string{title}
	for i, in := range f.inputs {
		if !f.completed && i == fieldCompletion {
			continue
		}
		label := mutedStyle.Render(padRight(fieldLabels[i], 8))
		lines = append(lines, label+in.View())
	}
	if f.toggle {
		state := pendingStyle.Render(boxUnchecked + " not completed")
		if f.completed {
			state = successStyle.Render(boxChecked + " completed")
		}
		lines = append(lines, mutedStyle.Render(padRight("Status", 8))+state+mutedStyle.Render("  (ctrl+t)"))
	}
	lines = append(lines, helpStyle.Render("tab next • enter save • esc cancel"))
	return barStyle.Render(strings.Join(lines, "\n"))
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
