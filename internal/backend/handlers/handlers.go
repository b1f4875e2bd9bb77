// Package handlers serves the /todos record contract over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/idilsaglam/todo-sync/internal/backend/store"
	"github.com/idilsaglam/todo-sync/internal/model"
)

// Store is the persistence the handlers need.
type Store interface {
	List(ctx context.Context, includeCompleted bool) ([]model.Todo, error)
	Get(ctx context.Context, id int64) (model.Todo, error)
	Create(ctx context.Context, t *model.Todo) error
	Update(ctx context.Context, t model.Todo) error
	Complete(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store         Store
	log           *slog.Logger
	token         string
	allowedOrigin string
}

type Option func(*Handlers)

// WithToken requires "Authorization: Bearer <token>" on /todos routes.
func WithToken(token string) Option {
	return func(h *Handlers) { h.token = strings.TrimSpace(token) }
}

func WithAllowedOrigin(origin string) Option {
	return func(h *Handlers) { h.allowedOrigin = strings.TrimSpace(origin) }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) { h.log = l }
}

// New creates a new Handlers instance.
func New(s Store, opts ...Option) *Handlers {
	h := &Handlers{store: s, log: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router mounts the todo routes with the standard middleware stack.
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.corsMiddleware)

	r.Route("/todos", func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Patch("/{id}", h.UpdateTodo)
		r.Patch("/{id}/complete", h.CompleteTodo)
		r.Delete("/{id}", h.DeleteTodo)
	})
	return r
}

type todoRequest struct {
	Name           string  `json:"name"`
	DueDate        string  `json:"dueDate"`
	CompletionDate *string `json:"completionDate"`
	Completed      bool    `json:"completed"`
}

func (req todoRequest) todo() model.Todo {
	t := model.Todo{
		Name:      strings.TrimSpace(req.Name),
		DueDate:   strings.TrimSpace(req.DueDate),
		Completed: req.Completed,
	}
	if req.Completed && req.CompletionDate != nil {
		t.CompletionDate = strings.TrimSpace(*req.CompletionDate)
	}
	return t
}

// ListTodos returns open todos, or every todo when showCompleted=true.
func (h *Handlers) ListTodos(w http.ResponseWriter, r *http.Request) {
	showCompleted, _ := strconv.ParseBool(r.URL.Query().Get("showCompleted"))

	todos, err := h.store.List(r.Context(), showCompleted)
	if err != nil {
		h.respondServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (h *Handlers) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	t := req.todo()
	if err := model.DraftOf(t).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Create(r.Context(), &t); err != nil {
		h.respondServerError(w, r, err)
		return
	}
	h.writeTodo(w, r, http.StatusCreated, t.ID)
}

func (h *Handlers) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req todoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	t := req.todo()
	t.ID = id
	if err := model.DraftOf(t).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Update(r.Context(), t); err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	h.writeTodo(w, r, http.StatusOK, id)
}

func (h *Handlers) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.Complete(r.Context(), id); err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	h.writeTodo(w, r, http.StatusOK, id)
}

func (h *Handlers) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeTodo(w http.ResponseWriter, r *http.Request, status int, id int64) {
	t, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err)
		return
	}
	writeJSON(w, status, t)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid todo id")
		return 0, false
	}
	return id, true
}

func (h *Handlers) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	h.respondServerError(w, r, err)
}

func (h *Handlers) respondServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("internal server error",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *Handlers) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(got), "bearer ") || strings.TrimSpace(got[7:]) != h.token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := h.allowedOrigin
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
