package work

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository defines persistence operations for projects
type ProjectRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Project, error)
	List(ctx context.Context, userID uuid.UUID, filter ProjectFilter) (shared.PageResult[Project], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Project, error)
	Save(ctx context.Context, project *Project) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// TaskRepository defines persistence operations for tasks
type TaskRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) (shared.PageResult[Task], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Save(ctx context.Context, task *Task) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
