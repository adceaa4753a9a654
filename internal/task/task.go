// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

// Package task provides the owner-scoped task-list domain.
//
// Every task belongs to exactly one owner. Repository queries are
// scoped by the owner's ID, so tasks owned by someone else are
// indistinguishable from tasks that do not exist.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrNotFound is returned when a task does not exist within the
// caller's owner scope.
var ErrNotFound = errors.New("task not found")

// ErrValidation is wrapped by field validation failures so the
// boundary can classify them without enumerating every rule.
var ErrValidation = errors.New("invalid input")

// State is the lifecycle state of a task.
type State string

// Task states.
const (
	StateTodo  State = "todo"
	StateDoing State = "doing"
	StateDone  State = "done"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateTodo, StateDoing, StateDone:
		return true
	}
	return false
}

// Task represents a single to-do item.
type Task struct {
	ID          ulid.ULID
	OwnerID     ulid.ULID
	Title       string
	Description string
	State       State
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch carries a partial task update. Nil fields were omitted by the
// caller; non-nil fields are applied even when empty.
type Patch struct {
	Title       *string
	Description *string
	State       *State
}

// Filter narrows a task listing. Title and Description are substring
// matches; State is an exact match; zero values disable a criterion.
type Filter struct {
	Title       string
	Description string
	State       State
	Limit       int
	Offset      int
}

// Pagination defaults for task listing.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// New creates a validated Task owned by ownerID.
func New(ownerID ulid.ULID, title, description string, state State) (*Task, error) {
	if ownerID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TASK_INVALID_OWNER").Wrapf(ErrValidation, "owner ID cannot be zero")
	}
	if title == "" {
		return nil, oops.Code("TASK_INVALID_TITLE").Wrapf(ErrValidation, "title cannot be empty")
	}
	if state == "" {
		state = StateTodo
	}
	if !state.Valid() {
		return nil, oops.Code("TASK_INVALID_STATE").
			With("state", string(state)).
			Wrapf(ErrValidation, "unknown task state %q", state)
	}

	now := time.Now()
	return &Task{
		ID:          ulid.Make(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		State:       state,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Repository manages task persistence. Get, Update, and Delete take the
// owner's ID and must not observe tasks outside that scope.
type Repository interface {
	// Create stores a new task.
	Create(ctx context.Context, task *Task) error

	// Get retrieves a task by ID within the owner's scope.
	Get(ctx context.Context, ownerID, id ulid.ULID) (*Task, error)

	// List returns the owner's tasks matching the filter, ordered by ID.
	List(ctx context.Context, ownerID ulid.ULID, filter Filter) ([]*Task, error)

	// Update persists a modified task within the owner's scope.
	Update(ctx context.Context, task *Task) error

	// Delete removes a task by ID within the owner's scope.
	Delete(ctx context.Context, ownerID, id ulid.ULID) error
}
