package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"tasklist-api/domain"
)

//go:embed schema.sql
var schema string

// Store persists tasks in a sqlite database. AUTOINCREMENT on the id
// column guarantees ids are never reused after a delete.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and initializes
// the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const taskColumns = "id, title, description, is_completed, sort_order, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.IsCompleted, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTasks returns every task ordered by sort_order ascending, the
// canonical display order.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY sort_order ASC`)
	if err != nil {
		return nil, domain.StorageError{Op: "list tasks", Err: err}
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, domain.StorageError{Op: "list tasks", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "get task", Err: err}
	}
	return t, nil
}

// CreateTask inserts a new task at the requested position. The prepend path
// shifts every existing row's sort order up by one; shift and insert run in
// the same transaction so no reader observes duplicate sort orders.
func (s *Store) CreateTask(ctx context.Context, title, description string, pos domain.InsertPosition) (domain.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
	}
	defer tx.Rollback()

	order := 0
	switch pos {
	case domain.InsertEnd:
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order), -1) + 1 FROM tasks`).Scan(&order); err != nil {
			return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
		}
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET sort_order = sort_order + 1`); err != nil {
			return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (title, description, sort_order) VALUES (?, ?, ?)`,
		title, description, order)
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
	}

	t, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, domain.StorageError{Op: "create task", Err: err}
	}
	return t, nil
}

// UpdateTask sets the title and description of an existing task.
func (s *Store) UpdateTask(ctx context.Context, id int64, title, description string) (domain.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, id)
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "update task", Err: err}
	}
	if err := requireRow(res, "update task"); err != nil {
		return domain.Task{}, err
	}
	return s.GetTask(ctx, id)
}

// ToggleTask flips the completion flag of an existing task.
func (s *Store) ToggleTask(ctx context.Context, id int64) (domain.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET is_completed = 1 - is_completed, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return domain.Task{}, domain.StorageError{Op: "toggle task", Err: err}
	}
	if err := requireRow(res, "toggle task"); err != nil {
		return domain.Task{}, err
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task. Remaining sort orders keep their gaps; only a
// full reorder re-normalizes to 0..N-1.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return domain.StorageError{Op: "delete task", Err: err}
	}
	return requireRow(res, "delete task")
}

// ReorderTasks applies the given sort-order assignments as a single atomic
// update. An assignment matching no row aborts the whole operation and
// rolls back; a subsequent read returns the pre-call order unchanged.
func (s *Store) ReorderTasks(ctx context.Context, assignments []domain.OrderAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError{Op: "reorder tasks", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE tasks SET sort_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
	if err != nil {
		return domain.StorageError{Op: "reorder tasks", Err: err}
	}
	defer stmt.Close()

	for _, a := range assignments {
		res, err := stmt.ExecContext(ctx, a.SortOrder, a.ID)
		if err != nil {
			return domain.StorageError{Op: "reorder tasks", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return domain.StorageError{Op: "reorder tasks", Err: err}
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", domain.ErrTaskNotFound, a.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.StorageError{Op: "reorder tasks", Err: err}
	}
	return nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError{Op: op, Err: err}
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
