package controller

import (
	"fmt"

	"github.com/idilsaglam/todo-sync/internal/model"
	"github.com/idilsaglam/todo-sync/internal/todostore"
)

// FetchedMsg carries a list response back to the update loop.
type FetchedMsg struct {
	Tag           todostore.Tag
	ShowCompleted bool
	Todos         []model.Todo
	Err           error
}

type CreatedMsg struct {
	Todo model.Todo
	Err  error
}

// CompletedMsg carries the backend's record when it sent one; Todo is zero
// otherwise.
type CompletedMsg struct {
	ID   int64
	Todo model.Todo
	Err  error
}

type UpdatedMsg struct {
	ID   int64
	Todo model.Todo
	Err  error
}

type DeletedMsg struct {
	ID  int64
	Err error
}

// Notice is a failure the user has to acknowledge.
type Notice struct {
	Op  string
	Err error
}

var noticeTitles = map[string]string{
	"create":   "Error creating todo",
	"complete": "Error completing todo",
	"update":   "Error updating todo",
	"delete":   "Error deleting todo",
}

func (n Notice) Title() string {
	if t, ok := noticeTitles[n.Op]; ok {
		return t
	}
	return "Error"
}

func (n Notice) String() string {
	return fmt.Sprintf("%s: %v", n.Title(), n.Err)
}
