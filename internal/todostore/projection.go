package todostore

import "github.com/idilsaglam/todo-sync/internal/model"

// Project returns the records to display: everything when showCompleted is
// set, otherwise only open records. The backend already scopes list results;
// this is a second filter over the cached collection. items is not modified.
func Project(items []model.Todo, showCompleted bool) []model.Todo {
	out := make([]model.Todo, 0, len(items))
	for _, t := range items {
		if showCompleted || !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// Stats counts completed and open records.
func Stats(items []model.Todo) (done, pending int) {
	for _, t := range items {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
