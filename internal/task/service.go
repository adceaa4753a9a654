// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskloom Contributors

package task

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service coordinates task operations for an authenticated owner.
type Service struct {
	tasks  Repository
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(tasks Repository) (*Service, error) {
	if tasks == nil {
		return nil, oops.Code("TASK_NIL_DEPENDENCY").Errorf("tasks repository is required")
	}
	return &Service{tasks: tasks, logger: slog.Default()}, nil
}

// NewServiceWithLogger creates a new Service with a custom logger.
func NewServiceWithLogger(tasks Repository, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Code("TASK_NIL_DEPENDENCY").Errorf("logger is required")
	}
	svc, err := NewService(tasks)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// Create adds a task to the owner's list.
func (s *Service) Create(ctx context.Context, ownerID ulid.ULID, title, description string, state State) (*Task, error) {
	t, err := New(ownerID, title, description, state)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "task created", "task_id", t.ID.String(), "owner_id", ownerID.String())
	return t, nil
}

// List returns the owner's tasks matching the filter.
func (s *Service) List(ctx context.Context, ownerID ulid.ULID, filter Filter) ([]*Task, error) {
	if filter.State != "" && !filter.State.Valid() {
		return nil, oops.Code("TASK_INVALID_STATE").
			With("state", string(filter.State)).
			Wrapf(ErrValidation, "unknown task state %q", filter.State)
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.tasks.List(ctx, ownerID, filter)
}

// Update applies a partial update to one of the owner's tasks. A task
// outside the owner's scope surfaces as ErrNotFound.
func (s *Service) Update(ctx context.Context, ownerID, id ulid.ULID, patch Patch) (*Task, error) {
	t, err := s.tasks.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, oops.Code("TASK_INVALID_TITLE").Wrapf(ErrValidation, "title cannot be empty")
		}
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.State != nil {
		if !patch.State.Valid() {
			return nil, oops.Code("TASK_INVALID_STATE").
				With("state", string(*patch.State)).
				Wrapf(ErrValidation, "unknown task state %q", *patch.State)
		}
		t.State = *patch.State
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "task updated", "task_id", t.ID.String(), "owner_id", ownerID.String())
	return t, nil
}

// Delete removes one of the owner's tasks.
func (s *Service) Delete(ctx context.Context, ownerID, id ulid.ULID) error {
	if err := s.tasks.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "task deleted", "task_id", id.String(), "owner_id", ownerID.String())
	return nil
}
