package work

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskStatus represents the workflow status of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether work is still expected on the task
func (s TaskStatus) IsOpen() bool {
	return s != TaskStatusDone && s != TaskStatusCancelled
}

var ErrTaskNotFound = shared.NewNotFoundError("Task")

// Task is a unit of work, optionally attached to a project and client
type Task struct {
	shared.OwnedEntity
	ProjectID      *uuid.UUID
	ClientID       *uuid.UUID
	Title          string
	Description    string
	Status         TaskStatus
	Priority       Priority
	DueDate        *time.Time
	CompletedAt    *time.Time
	EstimatedHours decimal.Decimal
	ActualHours    decimal.Decimal
	Assignee       string
	Tags           shared.StringList
}

// NewTask creates a todo task with medium priority
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	return &Task{
		OwnedEntity:    shared.NewOwnedEntity(userID),
		Title:          title,
		Status:         TaskStatusTodo,
		Priority:       PriorityMedium,
		EstimatedHours: decimal.Zero,
		ActualHours:    decimal.Zero,
		Tags:           shared.StringList{},
	}, nil
}

// SetStatus changes the status; done stamps CompletedAt, leaving done clears it
func (t *Task) SetStatus(status TaskStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid task status")
	}
	if status == TaskStatusDone && t.Status != TaskStatusDone {
		now := time.Now()
		t.CompletedAt = &now
	}
	if status != TaskStatusDone {
		t.CompletedAt = nil
	}
	t.Status = status
	t.Touch()
	return nil
}

// IsOverdue reports whether an open task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status.IsOpen() && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskUpdate is a partial update; nil fields are left unchanged
type TaskUpdate struct {
	ProjectID      *uuid.UUID
	ClientID       *uuid.UUID
	Title          *string
	Description    *string
	Status         *TaskStatus
	Priority       *Priority
	DueDate        *time.Time
	EstimatedHours *decimal.Decimal
	ActualHours    *decimal.Decimal
	Assignee       *string
	Tags           []string
}

// Apply merges the update into the task
func (t *Task) Apply(u TaskUpdate) error {
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
		}
		t.Title = title
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
		}
		t.Priority = *u.Priority
	}
	if u.Status != nil {
		if err := t.SetStatus(*u.Status); err != nil {
			return err
		}
	}
	if u.EstimatedHours != nil {
		t.EstimatedHours = *u.EstimatedHours
	}
	if u.ActualHours != nil {
		t.ActualHours = *u.ActualHours
	}
	if u.ProjectID != nil {
		t.ProjectID = u.ProjectID
	}
	if u.ClientID != nil {
		t.ClientID = u.ClientID
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.Assignee != nil {
		t.Assignee = *u.Assignee
	}
	if u.Tags != nil {
		t.Tags = shared.StringList(u.Tags)
	}
	t.Touch()
	return nil
}

// TaskFilter narrows task list queries
type TaskFilter struct {
	shared.Filter
	Statuses    []TaskStatus
	Priorities  []Priority
	ProjectID   *uuid.UUID
	Due         shared.DateRange
	OverdueOnly bool
}

// TaskStats are derived from a user's tasks
type TaskStats struct {
	Total               int             `json:"total"`
	Todo                int             `json:"todo"`
	InProgress          int             `json:"in_progress"`
	Review              int             `json:"review"`
	Done                int             `json:"done"`
	Cancelled           int             `json:"cancelled"`
	Overdue             int             `json:"overdue"`
	CompletionRate      decimal.Decimal `json:"completion_rate"`
	TotalEstimatedHours decimal.Decimal `json:"total_estimated_hours"`
	TotalActualHours    decimal.Decimal `json:"total_actual_hours"`
}

// ComputeTaskStats reduces tasks into TaskStats
func ComputeTaskStats(tasks []Task, now time.Time) TaskStats {
	stats := TaskStats{Total: len(tasks), TotalEstimatedHours: decimal.Zero, TotalActualHours: decimal.Zero}
	for i := range tasks {
		t := &tasks[i]
		switch t.Status {
		case TaskStatusTodo:
			stats.Todo++
		case TaskStatusInProgress:
			stats.InProgress++
		case TaskStatusReview:
			stats.Review++
		case TaskStatusDone:
			stats.Done++
		case TaskStatusCancelled:
			stats.Cancelled++
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		stats.TotalEstimatedHours = stats.TotalEstimatedHours.Add(t.EstimatedHours)
		stats.TotalActualHours = stats.TotalActualHours.Add(t.ActualHours)
	}
	stats.CompletionRate = shared.PercentOf(stats.Done, stats.Total)
	return stats
}
