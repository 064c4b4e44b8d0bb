package api

import (
	"context"

	"tasklist-api/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, title, description string, pos domain.InsertPosition) (domain.Task, error)
	UpdateTask(ctx context.Context, id int64, title, description string) (domain.Task, error)
	ToggleTask(ctx context.Context, id int64) (domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ReorderTasks(ctx context.Context, assignments []domain.OrderAssignment) error
	Ping(ctx context.Context) error
}
