package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for work.Project
type ProjectModel struct {
	OwnedModel
	ClientID    *uuid.UUID         `gorm:"type:uuid;index"`
	Name        string             `gorm:"type:varchar(200);not null"`
	Description string             `gorm:"type:text"`
	Status      work.ProjectStatus `gorm:"type:varchar(20);not null;default:'planning';index"`
	Priority    work.Priority      `gorm:"type:varchar(20);not null;default:'medium'"`
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Spent       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Progress    int             `gorm:"not null;default:0"`
	IsArchived  bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the model to a domain Project
func (m *ProjectModel) ToDomain() *work.Project {
	return &work.Project{
		OwnedEntity: m.ToOwned(),
		ClientID:    m.ClientID,
		Name:        m.Name,
		Description: m.Description,
		Status:      m.Status,
		Priority:    m.Priority,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		Budget:      m.Budget,
		Spent:       m.Spent,
		HourlyRate:  m.HourlyRate,
		Progress:    m.Progress,
		IsArchived:  m.IsArchived,
	}
}

// ProjectModelFromDomain creates a model from a domain Project
func ProjectModelFromDomain(p *work.Project) *ProjectModel {
	m := &ProjectModel{
		ClientID:    p.ClientID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		Spent:       p.Spent,
		HourlyRate:  p.HourlyRate,
		Progress:    p.Progress,
		IsArchived:  p.IsArchived,
	}
	m.FromOwned(p.OwnedEntity)
	return m
}

// TaskModel is the persistence model for work.Task
type TaskModel struct {
	OwnedModel
	ProjectID      *uuid.UUID      `gorm:"type:uuid;index"`
	ClientID       *uuid.UUID      `gorm:"type:uuid;index"`
	Title          string          `gorm:"type:varchar(300);not null"`
	Description    string          `gorm:"type:text"`
	Status         work.TaskStatus `gorm:"type:varchar(20);not null;default:'todo';index"`
	Priority       work.Priority   `gorm:"type:varchar(20);not null;default:'medium'"`
	DueDate        *time.Time      `gorm:"index"`
	CompletedAt    *time.Time
	EstimatedHours decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	ActualHours    decimal.Decimal   `gorm:"type:decimal(10,2);not null;default:0"`
	Assignee       string            `gorm:"type:varchar(200)"`
	Tags           shared.StringList `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the model to a domain Task
func (m *TaskModel) ToDomain() *work.Task {
	return &work.Task{
		OwnedEntity:    m.ToOwned(),
		ProjectID:      m.ProjectID,
		ClientID:       m.ClientID,
		Title:          m.Title,
		Description:    m.Description,
		Status:         m.Status,
		Priority:       m.Priority,
		DueDate:        m.DueDate,
		CompletedAt:    m.CompletedAt,
		EstimatedHours: m.EstimatedHours,
		ActualHours:    m.ActualHours,
		Assignee:       m.Assignee,
		Tags:           m.Tags,
	}
}

// TaskModelFromDomain creates a model from a domain Task
func TaskModelFromDomain(t *work.Task) *TaskModel {
	m := &TaskModel{
		ProjectID:      t.ProjectID,
		ClientID:       t.ClientID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		DueDate:        t.DueDate,
		CompletedAt:    t.CompletedAt,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Assignee:       t.Assignee,
		Tags:           t.Tags,
	}
	m.FromOwned(t.OwnedEntity)
	return m
}
