// Package editsession tracks which records are being edited in place.
//
// Each record is either Viewing (no entry) or Editing (an entry holding an
// isolated draft). Field changes only touch the draft, so cancelling leaves
// the stored record exactly as the backend last confirmed it.
package editsession

import (
	"errors"
	"sort"

	"github.com/idilsaglam/todo-sync/internal/model"
)

var (
	ErrCompleted  = errors.New("completed todos cannot be edited")
	ErrNotEditing = errors.New("todo is not being edited")
)

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Sessions maps record ids to their edit drafts. Several records may be in
// Editing at the same time. Not safe for concurrent use.
type Sessions struct {
	drafts map[int64]model.Draft
}

func New() *Sessions {
	return &Sessions{drafts: make(map[int64]model.Draft)}
}

// Begin moves t into Editing with a draft cloned from its current fields.
// A record that is already Editing keeps its draft.
func (s *Sessions) Begin(t model.Todo) error {
	if t.Completed {
		return ErrCompleted
	}
	if _, ok := s.drafts[t.ID]; ok {
		return nil
	}
	s.drafts[t.ID] = model.DraftOf(t)
	return nil
}

func (s *Sessions) State(id int64) State {
	if _, ok := s.drafts[id]; ok {
		return Editing
	}
	return Viewing
}

func (s *Sessions) Draft(id int64) (model.Draft, bool) {
	d, ok := s.drafts[id]
	return d, ok
}

// Editing lists the ids currently being edited, ascending.
func (s *Sessions) Editing() []int64 {
	ids := make([]int64, 0, len(s.drafts))
	for id := range s.drafts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Sessions) SetName(id int64, v string) error {
	return s.update(id, func(d *model.Draft) { d.Name = v })
}

func (s *Sessions) SetDueDate(id int64, v string) error {
	return s.update(id, func(d *model.Draft) { d.DueDate = v })
}

func (s *Sessions) SetCompletionDate(id int64, v string) error {
	return s.update(id, func(d *model.Draft) { d.CompletionDate = v })
}

// Commit returns id to Viewing once a save has been confirmed.
func (s *Sessions) Commit(id int64) {
	delete(s.drafts, id)
}

// Cancel discards the draft. The stored record is not touched.
func (s *Sessions) Cancel(id int64) {
	delete(s.drafts, id)
}

// Drop ends the session of a record that no longer exists.
func (s *Sessions) Drop(id int64) {
	delete(s.drafts, id)
}

// Retain drops every session whose id is not in ids.
func (s *Sessions) Retain(ids []int64) {
	keep := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	for id := range s.drafts {
		if _, ok := keep[id]; !ok {
			delete(s.drafts, id)
		}
	}
}

func (s *Sessions) update(id int64, fn func(*model.Draft)) error {
	d, ok := s.drafts[id]
	if !ok {
		return ErrNotEditing
	}
	fn(&d)
	s.drafts[id] = d
	return nil
}
