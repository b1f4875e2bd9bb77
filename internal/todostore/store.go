// Package todostore holds the client's copy of the backend collection.
//
// The store is a thin cache of exactly what the last accepted list fetch
// returned (plus records created since). It is not safe for concurrent use;
// the controller mutates it from a single goroutine.
package todostore

import "github.com/idilsaglam/todo-sync/internal/model"

// Tag identifies one issued list fetch. Only the most recent tag is active.
type Tag uint64

type Store struct {
	items         []model.Todo
	showCompleted bool
	tag           Tag
}

func New(showCompleted bool) *Store {
	return &Store{showCompleted: showCompleted}
}

// Replace discards the collection and installs list in the given order.
func (s *Store) Replace(list []model.Todo) {
	s.items = append(make([]model.Todo, 0, len(list)), list...)
}

// Append inserts t at the end of the collection.
func (s *Store) Append(t model.Todo) {
	s.items = append(s.items, t)
}

// PatchByID merges p into the record with the given id.
// It reports whether a record was found.
func (s *Store) PatchByID(id int64, p model.Patch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items[i] = p.Apply(s.items[i])
	return true
}

// RemoveByID drops the record with the given id.
func (s *Store) RemoveByID(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *Store) Get(id int64) (model.Todo, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Todo{}, false
	}
	return s.items[i], true
}

// Items returns a copy of the collection in store order.
func (s *Store) Items() []model.Todo {
	return append([]model.Todo(nil), s.items...)
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) IDs() []int64 {
	ids := make([]int64, 0, len(s.items))
	for _, t := range s.items {
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *Store) ShowCompleted() bool { return s.showCompleted }

// SetShowCompleted switches the filter scope and issues the fetch tag that
// the response for the new scope must carry.
func (s *Store) SetShowCompleted(v bool) Tag {
	s.showCompleted = v
	return s.Reload()
}

// Reload issues a new fetch tag for the current scope. Responses to any
// earlier tag become stale.
func (s *Store) Reload() Tag {
	s.tag++
	return s.tag
}

// Active returns the tag of the most recently issued fetch.
func (s *Store) Active() Tag { return s.tag }

// ApplyFetch replaces the collection with list if tag is still active.
// Stale responses are dropped and reported as false.
func (s *Store) ApplyFetch(tag Tag, list []model.Todo) bool {
	if tag != s.tag {
		return false
	}
	s.Replace(list)
	return true
}

func (s *Store) index(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
