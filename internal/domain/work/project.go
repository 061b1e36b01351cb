package work

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// IsValid checks if the status is a known value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// Priority is shared by projects and tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid checks if the priority is a known value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

var ErrProjectNotFound = shared.NewNotFoundError("Project")

// Project groups work done for a client
type Project struct {
	shared.OwnedEntity
	ClientID    *uuid.UUID
	Name        string
	Description string
	Status      ProjectStatus
	Priority    Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      decimal.Decimal
	Spent       decimal.Decimal
	HourlyRate  decimal.Decimal
	Progress    int
	IsArchived  bool
}

// NewProject creates a project in planning with medium priority
func NewProject(userID uuid.UUID, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	return &Project{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Name:        name,
		Status:      ProjectStatusPlanning,
		Priority:    PriorityMedium,
		Budget:      decimal.Zero,
		Spent:       decimal.Zero,
		HourlyRate:  decimal.Zero,
	}, nil
}

// ProjectUpdate is a partial update; nil fields are left unchanged
type ProjectUpdate struct {
	ClientID    *uuid.UUID
	Name        *string
	Description *string
	Status      *ProjectStatus
	Priority    *Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *decimal.Decimal
	Spent       *decimal.Decimal
	HourlyRate  *decimal.Decimal
	Progress    *int
}

// Apply merges the update into the project
func (p *Project) Apply(u ProjectUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
		}
		p.Name = name
	}
	if u.Status != nil {
		if !u.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Invalid project status")
		}
		p.Status = *u.Status
	}
	if u.Priority != nil {
		if !u.Priority.IsValid() {
			return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
		}
		p.Priority = *u.Priority
	}
	if u.Progress != nil {
		if *u.Progress < 0 || *u.Progress > 100 {
			return shared.NewDomainError("INVALID_PROGRESS", "Progress must be between 0 and 100")
		}
		p.Progress = *u.Progress
	}
	for _, amount := range []*decimal.Decimal{u.Budget, u.Spent, u.HourlyRate} {
		if amount != nil && amount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
		}
	}
	if u.Budget != nil {
		p.Budget = *u.Budget
	}
	if u.Spent != nil {
		p.Spent = *u.Spent
	}
	if u.HourlyRate != nil {
		p.HourlyRate = *u.HourlyRate
	}
	if u.ClientID != nil {
		p.ClientID = u.ClientID
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.StartDate != nil {
		p.StartDate = u.StartDate
	}
	if u.EndDate != nil {
		p.EndDate = u.EndDate
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return shared.NewDomainError("INVALID_DATES", "End date cannot be before start date")
	}
	p.Touch()
	return nil
}

// Archive hides the project from default listings
func (p *Project) Archive() {
	p.IsArchived = true
	p.Touch()
}

// Unarchive restores an archived project
func (p *Project) Unarchive() {
	p.IsArchived = false
	p.Touch()
}

// ProjectFilter narrows project list queries
type ProjectFilter struct {
	shared.Filter
	Statuses        []ProjectStatus
	Priorities      []Priority
	ClientID        *uuid.UUID
	Start           shared.DateRange
	MinBudget       *decimal.Decimal
	MaxBudget       *decimal.Decimal
	IncludeArchived bool
}

// ProjectStats are derived from a user's projects
type ProjectStats struct {
	Total             int             `json:"total"`
	Planning          int             `json:"planning"`
	Active            int             `json:"active"`
	OnHold            int             `json:"on_hold"`
	Completed         int             `json:"completed"`
	Cancelled         int             `json:"cancelled"`
	Archived          int             `json:"archived"`
	TotalBudget       decimal.Decimal `json:"total_budget"`
	TotalSpent        decimal.Decimal `json:"total_spent"`
	BudgetUtilization decimal.Decimal `json:"budget_utilization"`
	AverageProgress   decimal.Decimal `json:"average_progress"`
}

// ComputeProjectStats reduces projects into ProjectStats
func ComputeProjectStats(projects []Project) ProjectStats {
	stats := ProjectStats{Total: len(projects), TotalBudget: decimal.Zero, TotalSpent: decimal.Zero}
	progress := 0
	for _, p := range projects {
		switch p.Status {
		case ProjectStatusPlanning:
			stats.Planning++
		case ProjectStatusActive:
			stats.Active++
		case ProjectStatusOnHold:
			stats.OnHold++
		case ProjectStatusCompleted:
			stats.Completed++
		case ProjectStatusCancelled:
			stats.Cancelled++
		}
		if p.IsArchived {
			stats.Archived++
		}
		stats.TotalBudget = stats.TotalBudget.Add(p.Budget)
		stats.TotalSpent = stats.TotalSpent.Add(p.Spent)
		progress += p.Progress
	}
	stats.BudgetUtilization = shared.Percent(stats.TotalSpent, stats.TotalBudget)
	denominator := stats.Total
	if denominator == 0 {
		denominator = 1
	}
	stats.AverageProgress = shared.Round2(decimal.NewFromInt(int64(progress)).Div(decimal.NewFromInt(int64(denominator))))
	return stats
}
