// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

// Package postgres implements the task repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskloom/taskloom/internal/task"
)

// poolIface is the subset of pgxpool.Pool the repository uses.
// pgxmock pools satisfy it in unit tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TaskRepository implements task.Repository using PostgreSQL.
// Every query below is scoped by owner_id; a non-owner cannot tell an
// existing task from a missing one.
type TaskRepository struct {
	pool poolIface
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool poolIface) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create stores a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, owner_id, title, description, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.ID.String(),
		t.OwnerID.String(),
		t.Title,
		t.Description,
		string(t.State),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_CREATE_FAILED").
			With("operation", "insert task").
			With("id", t.ID.String()).
			Wrap(err)
	}
	return nil
}

// Get retrieves a task by ID within the owner's scope.
func (r *TaskRepository) Get(ctx context.Context, ownerID, id ulid.ULID) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, description, state, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1 AND id = $2
	`, ownerID.String(), id.String())

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").
			With("id", id.String()).
			Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_GET_FAILED").
			With("operation", "get task").
			With("id", id.String()).
			Wrap(err)
	}
	return t, nil
}

// List returns the owner's tasks matching the filter, ordered by ID.
func (r *TaskRepository) List(ctx context.Context, ownerID ulid.ULID, filter task.Filter) ([]*task.Task, error) {
	var (
		conds = []string{"owner_id = $1"}
		args  = []any{ownerID.String()}
	)

	if filter.Title != "" {
		args = append(args, "%"+escapeLike(filter.Title)+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if filter.Description != "" {
		args = append(args, "%"+escapeLike(filter.Description)+"%")
		conds = append(conds, fmt.Sprintf("description ILIKE $%d", len(args)))
	}
	if filter.State != "" {
		args = append(args, string(filter.State))
		conds = append(conds, fmt.Sprintf("state = $%d", len(args)))
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, state, created_at, updated_at
		FROM tasks
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "list tasks").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, oops.Code("TASK_LIST_FAILED").
				With("operation", "scan task row").
				Wrap(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "iterate tasks").
			Wrap(err)
	}
	return tasks, nil
}

// Update persists a modified task within the owner's scope.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE tasks SET
			title = $3,
			description = $4,
			state = $5,
			updated_at = $6
		WHERE owner_id = $1 AND id = $2
	`,
		t.OwnerID.String(),
		t.ID.String(),
		t.Title,
		t.Description,
		string(t.State),
		time.Now(),
	)
	if err != nil {
		return oops.Code("TASK_UPDATE_FAILED").
			With("operation", "update task").
			With("id", t.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").
			With("id", t.ID.String()).
			Wrap(task.ErrNotFound)
	}
	return nil
}

// Delete removes a task by ID within the owner's scope.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE owner_id = $1 AND id = $2
	`, ownerID.String(), id.String())
	if err != nil {
		return oops.Code("TASK_DELETE_FAILED").
			With("operation", "delete task").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TASK_NOT_FOUND").
			With("id", id.String()).
			Wrap(task.ErrNotFound)
	}
	return nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// scanTask scans a single row into a Task.
// Callers are responsible for handling pgx.ErrNoRows.
func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		idStr       string
		ownerIDStr  string
		title       string
		description string
		state       string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&idStr, &ownerIDStr, &title, &description, &state, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TASK_SCAN_FAILED").
			With("operation", "scan task").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TASK_INVALID_ID").
			With("operation", "parse task id").
			With("id", idStr).
			Wrap(err)
	}
	ownerID, err := ulid.Parse(ownerIDStr)
	if err != nil {
		return nil, oops.Code("TASK_INVALID_OWNER_ID").
			With("operation", "parse owner id").
			With("owner_id", ownerIDStr).
			Wrap(err)
	}

	return &task.Task{
		ID:          id,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		State:       task.State(state),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// Compile-time interface check.
var _ task.Repository = (*TaskRepository)(nil)
