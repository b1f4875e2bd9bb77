// Package store persists todos for the reference backend.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/idilsaglam/todo-sync/internal/model"
)

var ErrNotFound = errors.New("todo not found")

// SQLiteStore keeps todos in a single SQLite table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		due_date TEXT NOT NULL DEFAULT '',
		completion_date TEXT,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos(completed);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns todos ordered by id. Completed todos are included only when
// includeCompleted is set.
func (s *SQLiteStore) List(ctx context.Context, includeCompleted bool) ([]model.Todo, error) {
	query := `SELECT id, name, due_date, completion_date, completed FROM todos`
	if !includeCompleted {
		query += ` WHERE completed = FALSE`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (model.Todo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, due_date, completion_date, completed
		FROM todos WHERE id = ?
	`, id)
	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, err
	}
	return t, nil
}

// Create inserts t and sets its ID.
func (s *SQLiteStore) Create(ctx context.Context, t *model.Todo) error {
	now := s.now()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (name, due_date, completion_date, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, t.Name, t.DueDate, completionDate(*t), t.Completed, now, now)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	t.ID = id
	return nil
}

// Update overwrites every editable field of t.
func (s *SQLiteStore) Update(ctx context.Context, t model.Todo) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE todos
		SET name = ?, due_date = ?, completion_date = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`, t.Name, t.DueDate, completionDate(t), t.Completed, s.now(), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return expectOne(result)
}

// Complete marks id completed, stamping today's date if none is set.
func (s *SQLiteStore) Complete(ctx context.Context, id int64) error {
	now := s.now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE todos
		SET completed = TRUE,
			completion_date = COALESCE(NULLIF(completion_date, ''), ?),
			updated_at = ?
		WHERE id = ?
	`, now.Format(model.DateLayout), now, id)
	if err != nil {
		return fmt.Errorf("failed to complete todo: %w", err)
	}
	return expectOne(result)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return expectOne(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(sc scanner) (model.Todo, error) {
	var t model.Todo
	var cd sql.NullString
	if err := sc.Scan(&t.ID, &t.Name, &t.DueDate, &cd, &t.Completed); err != nil {
		return model.Todo{}, err
	}
	if t.Completed && cd.Valid {
		t.CompletionDate = cd.String
	}
	return t, nil
}

func completionDate(t model.Todo) any {
	if !t.Completed || t.CompletionDate == "" {
		return nil
	}
	return t.CompletionDate
}

func expectOne(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
