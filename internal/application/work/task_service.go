package work

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
)

// TaskService handles task operations
type TaskService struct {
	repo  work.TaskRepository
	cache *query.Client
	now   func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(repo work.TaskRepository, cache *query.Client) *TaskService {
	return &TaskService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// ListTasks returns a page of the user's tasks
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter TaskListFilter) (shared.Paginated[TaskResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[TaskResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceTasks, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[TaskResponse], error) {
		page, err := s.repo.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[TaskResponse]{}, fmt.Errorf("list tasks: %w", err)
		}
		return shared.MapPage(page, ToTaskResponses).ToPaginated(), nil
	})
}

// GetTask returns a task by id
func (s *TaskService) GetTask(ctx context.Context, userID, id uuid.UUID) (*TaskResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceTasks, id), query.TierUserData, func(ctx context.Context) (TaskResponse, error) {
		task, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return TaskResponse{}, err
		}
		return ToTaskResponse(task), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTask creates a task
func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	task, err := work.NewTask(userID, req.Title)
	if err != nil {
		return nil, err
	}
	if err := task.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceTasks)

	response := ToTaskResponse(task)
	return &response, nil
}

// UpdateTask applies a partial update
func (s *TaskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	task, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := task.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceTasks)

	response := ToTaskResponse(task)
	return &response, nil
}

// UpdateTaskStatus changes the status optimistically: the cached task shows
// the new status until the write settles and reverts if it fails.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, userID, id uuid.UUID, status work.TaskStatus) (*TaskResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid task status")
	}
	now := s.now()
	predict := func(prev TaskResponse) TaskResponse {
		if status == work.TaskStatusDone && prev.Status != string(work.TaskStatusDone) {
			prev.CompletedAt = &now
		} else if status != work.TaskStatusDone {
			prev.CompletedAt = nil
		}
		prev.Status = string(status)
		return prev
	}
	resp, err := query.Run(ctx, s.cache, userID, query.ResourceTasks, query.DetailKey(query.ResourceTasks, id), query.TierUserData, predict,
		func(ctx context.Context) (TaskResponse, error) {
			task, err := s.repo.FindByID(ctx, userID, id)
			if err != nil {
				return TaskResponse{}, err
			}
			if err := task.SetStatus(status); err != nil {
				return TaskResponse{}, err
			}
			if err := s.repo.Save(ctx, task); err != nil {
				return TaskResponse{}, fmt.Errorf("update task status: %w", err)
			}
			return ToTaskResponse(task), nil
		})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceTasks)
	return nil
}

// GetTaskStats returns statistics over all of the user's tasks
func (s *TaskService) GetTaskStats(ctx context.Context, userID uuid.UUID) (*work.TaskStats, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	stats, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceTasks), query.TierUserData, func(ctx context.Context) (work.TaskStats, error) {
		tasks, err := s.repo.ListAll(ctx, userID)
		if err != nil {
			return work.TaskStats{}, fmt.Errorf("load tasks: %w", err)
		}
		return work.ComputeTaskStats(tasks, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
