package work

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Project DTOs
// =============================================================================

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	ClientID    *uuid.UUID       `json:"client_id"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description"`
	Status      string           `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    string           `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	Budget      *decimal.Decimal `json:"budget"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	ClientID    *uuid.UUID       `json:"client_id"`
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Status      *string          `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    *string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	Budget      *decimal.Decimal `json:"budget"`
	Spent       *decimal.Decimal `json:"spent"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	Progress    *int             `json:"progress" binding:"omitempty,min=0,max=100"`
}

// ToDomain converts the request into a domain update
func (r UpdateProjectRequest) ToDomain() work.ProjectUpdate {
	u := work.ProjectUpdate{
		ClientID:    r.ClientID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Budget:      r.Budget,
		Spent:       r.Spent,
		HourlyRate:  r.HourlyRate,
		Progress:    r.Progress,
	}
	if r.Status != nil {
		status := work.ProjectStatus(*r.Status)
		u.Status = &status
	}
	if r.Priority != nil {
		priority := work.Priority(*r.Priority)
		u.Priority = &priority
	}
	return u
}

// ProjectListFilter represents the query string of a project list
type ProjectListFilter struct {
	Page            int              `form:"page"`
	PageSize        int              `form:"page_size"`
	OrderBy         string           `form:"order_by"`
	OrderDir        string           `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search          string           `form:"search"`
	Status          []string         `form:"status"`
	Priority        []string         `form:"priority"`
	ClientID        *uuid.UUID       `form:"client_id"`
	StartFrom       *time.Time       `form:"start_from" time_format:"2006-01-02"`
	StartTo         *time.Time       `form:"start_to" time_format:"2006-01-02"`
	MinBudget       *decimal.Decimal `form:"min_budget"`
	MaxBudget       *decimal.Decimal `form:"max_budget"`
	IncludeArchived bool             `form:"include_archived"`
}

// ToDomain converts the list filter into the repository filter
func (f ProjectListFilter) ToDomain() work.ProjectFilter {
	statuses := make([]work.ProjectStatus, 0, len(f.Status))
	for _, s := range f.Status {
		statuses = append(statuses, work.ProjectStatus(s))
	}
	return work.ProjectFilter{
		Filter:          pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search),
		Statuses:        statuses,
		Priorities:      priorities(f.Priority),
		ClientID:        f.ClientID,
		Start:           shared.DateRange{From: f.StartFrom, To: f.StartTo},
		MinBudget:       f.MinBudget,
		MaxBudget:       f.MaxBudget,
		IncludeArchived: f.IncludeArchived,
	}
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	ClientID    *uuid.UUID      `json:"client_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Progress    int             `json:"progress"`
	IsArchived  bool            `json:"is_archived"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProjectResponse converts a domain Project to ProjectResponse
func ToProjectResponse(p *work.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		ClientID:    p.ClientID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		Priority:    string(p.Priority),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		Spent:       p.Spent,
		HourlyRate:  p.HourlyRate,
		Progress:    p.Progress,
		IsArchived:  p.IsArchived,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectResponses converts a slice of projects
func ToProjectResponses(projects []work.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out
}

// =============================================================================
// Task DTOs
// =============================================================================

// CreateTaskRequest represents a request to create a task
type CreateTaskRequest struct {
	ProjectID      *uuid.UUID       `json:"project_id"`
	ClientID       *uuid.UUID       `json:"client_id"`
	Title          string           `json:"title" binding:"required,min=1,max=300"`
	Description    string           `json:"description"`
	Status         string           `json:"status" binding:"omitempty,oneof=todo in_progress review done cancelled"`
	Priority       string           `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate        *time.Time       `json:"due_date"`
	EstimatedHours *decimal.Decimal `json:"estimated_hours"`
	Assignee       string           `json:"assignee" binding:"max=200"`
	Tags           []string         `json:"tags"`
}

// ToDomain converts the create request into the optional fields update
func (r CreateTaskRequest) ToDomain() work.TaskUpdate {
	u := work.TaskUpdate{
		ProjectID:      r.ProjectID,
		ClientID:       r.ClientID,
		Description:    &r.Description,
		DueDate:        r.DueDate,
		EstimatedHours: r.EstimatedHours,
		Assignee:       &r.Assignee,
		Tags:           r.Tags,
	}
	if r.Status != "" {
		status := work.TaskStatus(r.Status)
		u.Status = &status
	}
	if r.Priority != "" {
		priority := work.Priority(r.Priority)
		u.Priority = &priority
	}
	return u
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	ProjectID      *uuid.UUID       `json:"project_id"`
	ClientID       *uuid.UUID       `json:"client_id"`
	Title          *string          `json:"title" binding:"omitempty,min=1,max=300"`
	Description    *string          `json:"description"`
	Status         *string          `json:"status" binding:"omitempty,oneof=todo in_progress review done cancelled"`
	Priority       *string          `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate        *time.Time       `json:"due_date"`
	EstimatedHours *decimal.Decimal `json:"estimated_hours"`
	ActualHours    *decimal.Decimal `json:"actual_hours"`
	Assignee       *string          `json:"assignee"`
	Tags           []string         `json:"tags"`
}

// ToDomain converts the request into a domain update
func (r UpdateTaskRequest) ToDomain() work.TaskUpdate {
	u := work.TaskUpdate{
		ProjectID:      r.ProjectID,
		ClientID:       r.ClientID,
		Title:          r.Title,
		Description:    r.Description,
		DueDate:        r.DueDate,
		EstimatedHours: r.EstimatedHours,
		ActualHours:    r.ActualHours,
		Assignee:       r.Assignee,
		Tags:           r.Tags,
	}
	if r.Status != nil {
		status := work.TaskStatus(*r.Status)
		u.Status = &status
	}
	if r.Priority != nil {
		priority := work.Priority(*r.Priority)
		u.Priority = &priority
	}
	return u
}

// UpdateTaskStatusRequest represents a status-only change
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in_progress review done cancelled"`
}

// TaskListFilter represents the query string of a task list
type TaskListFilter struct {
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search      string     `form:"search"`
	Status      []string   `form:"status"`
	Priority    []string   `form:"priority"`
	ProjectID   *uuid.UUID `form:"project_id"`
	DueFrom     *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo       *time.Time `form:"due_to" time_format:"2006-01-02"`
	OverdueOnly bool       `form:"overdue_only"`
}

// ToDomain converts the list filter into the repository filter
func (f TaskListFilter) ToDomain() work.TaskFilter {
	statuses := make([]work.TaskStatus, 0, len(f.Status))
	for _, s := range f.Status {
		statuses = append(statuses, work.TaskStatus(s))
	}
	return work.TaskFilter{
		Filter:      pageFilter(f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search),
		Statuses:    statuses,
		Priorities:  priorities(f.Priority),
		ProjectID:   f.ProjectID,
		Due:         shared.DateRange{From: f.DueFrom, To: f.DueTo},
		OverdueOnly: f.OverdueOnly,
	}
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	ProjectID      *uuid.UUID      `json:"project_id,omitempty"`
	ClientID       *uuid.UUID      `json:"client_id,omitempty"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	Priority       string          `json:"priority"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
	ActualHours    decimal.Decimal `json:"actual_hours"`
	Assignee       string          `json:"assignee"`
	Tags           []string        `json:"tags"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToTaskResponse converts a domain Task to TaskResponse
func ToTaskResponse(t *work.Task) TaskResponse {
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:             t.ID,
		UserID:         t.UserID,
		ProjectID:      t.ProjectID,
		ClientID:       t.ClientID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Assignee:       t.Assignee,
		Tags:           tags,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToTaskResponses converts a slice of tasks
func ToTaskResponses(tasks []work.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out
}

func pageFilter(page, size int, orderBy, orderDir, search string) shared.Filter {
	return shared.Filter{
		Page:     page,
		PageSize: size,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
	}.Normalize()
}

func priorities(values []string) []work.Priority {
	out := make([]work.Priority, 0, len(values))
	for _, v := range values {
		out = append(out, work.Priority(v))
	}
	return out
}
