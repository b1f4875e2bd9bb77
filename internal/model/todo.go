package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO calendar-date form used for every date on the wire.
const DateLayout = "2006-01-02"

var (
	ErrNameRequired = errors.New("name is required")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
)

// Todo is the domain model for a todo entry as the backend returns it.
// Client-only state (edit mode) lives in editsession, never here.
type Todo struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	DueDate        string `json:"dueDate"`
	CompletionDate string `json:"completionDate,omitempty"`
	Completed      bool   `json:"completed"`
}

// Draft holds the user-editable fields of a todo: the create form and the
// isolated copy used while editing.
type Draft struct {
	Name           string
	DueDate        string
	CompletionDate string
	Completed      bool
}

// Payload is the request body for create and update.
type Payload struct {
	Name           string  `json:"name"`
	DueDate        string  `json:"dueDate"`
	CompletionDate *string `json:"completionDate,omitempty"`
	Completed      bool    `json:"completed"`
}

// DraftOf clones the editable fields of t.
func DraftOf(t Todo) Draft {
	return Draft{
		Name:           t.Name,
		DueDate:        t.DueDate,
		CompletionDate: t.CompletionDate,
		Completed:      t.Completed,
	}
}

// Validate checks the draft before anything is sent to the backend.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if !validDate(d.DueDate) {
		return ErrInvalidDate
	}
	if d.Completed && !validDate(d.CompletionDate) {
		return ErrInvalidDate
	}
	return nil
}

// Payload builds the wire body. completionDate is only sent for completed drafts.
func (d Draft) Payload() Payload {
	p := Payload{
		Name:      d.Name,
		DueDate:   d.DueDate,
		Completed: d.Completed,
	}
	if d.Completed && d.CompletionDate != "" {
		cd := d.CompletionDate
		p.CompletionDate = &cd
	}
	return p
}

// Patch is a partial update merged into a stored record. Nil fields are left alone.
type Patch struct {
	Name           *string
	DueDate        *string
	CompletionDate *string
	Completed      *bool
}

// PatchFrom returns a patch that overwrites every field with t's values.
func PatchFrom(t Todo) Patch {
	return Patch{
		Name:           &t.Name,
		DueDate:        &t.DueDate,
		CompletionDate: &t.CompletionDate,
		Completed:      &t.Completed,
	}
}

// Apply merges p into t and returns the result.
func (p Patch) Apply(t Todo) Todo {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.CompletionDate != nil {
		t.CompletionDate = *p.CompletionDate
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	// a completion date only means something on a completed record
	if !t.Completed {
		t.CompletionDate = ""
	}
	return t
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// Today returns the current date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}
