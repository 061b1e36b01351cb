package models

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadModel is the persistence model for marketing.Lead
type LeadModel struct {
	OwnedModel
	Name              string               `gorm:"type:varchar(200);not null"`
	Email             string               `gorm:"type:varchar(200);index"`
	Phone             string               `gorm:"type:varchar(50)"`
	Company           string               `gorm:"type:varchar(200)"`
	Source            marketing.LeadSource `gorm:"type:varchar(20);not null;default:'other'"`
	Status            marketing.LeadStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	Score             int                  `gorm:"not null;default:0"`
	EstimatedValue    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Notes             string               `gorm:"type:text"`
	CampaignID        *uuid.UUID           `gorm:"type:uuid;index"`
	ConvertedClientID *uuid.UUID           `gorm:"type:uuid"`
	LastContactedAt   *time.Time
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the model to a domain Lead
func (m *LeadModel) ToDomain() *marketing.Lead {
	return &marketing.Lead{
		BaseAggregateRoot: m.ToAggregate(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		Company:           m.Company,
		Source:            m.Source,
		Status:            m.Status,
		Score:             m.Score,
		EstimatedValue:    m.EstimatedValue,
		Notes:             m.Notes,
		CampaignID:        m.CampaignID,
		ConvertedClientID: m.ConvertedClientID,
		LastContactedAt:   m.LastContactedAt,
	}
}

// LeadModelFromDomain creates a model from a domain Lead
func LeadModelFromDomain(l *marketing.Lead) *LeadModel {
	m := &LeadModel{
		Name:              l.Name,
		Email:             l.Email,
		Phone:             l.Phone,
		Company:           l.Company,
		Source:            l.Source,
		Status:            l.Status,
		Score:             l.Score,
		EstimatedValue:    l.EstimatedValue,
		Notes:             l.Notes,
		CampaignID:        l.CampaignID,
		ConvertedClientID: l.ConvertedClientID,
		LastContactedAt:   l.LastContactedAt,
	}
	m.FromOwned(l.OwnedEntity)
	return m
}

// CampaignModel is the persistence model for marketing.Campaign.
// Metrics and the A/B test are stored as JSON.
type CampaignModel struct {
	OwnedModel
	Name           string                   `gorm:"type:varchar(200);not null"`
	Description    string                   `gorm:"type:text"`
	CampaignType   marketing.CampaignType   `gorm:"type:varchar(20);not null;default:'email'"`
	Status         marketing.CampaignStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Budget         decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	Spent          decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	StartDate      *time.Time
	EndDate        *time.Time
	ScheduledAt    *time.Time
	TargetAudience string            `gorm:"type:text"`
	Metrics        marketing.Metrics `gorm:"type:jsonb"`
	ABTest         *marketing.ABTest `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (CampaignModel) TableName() string {
	return "campaigns"
}

// ToDomain converts the model to a domain Campaign
func (m *CampaignModel) ToDomain() *marketing.Campaign {
	c := &marketing.Campaign{
		OwnedEntity:    m.ToOwned(),
		Name:           m.Name,
		Description:    m.Description,
		CampaignType:   m.CampaignType,
		Status:         m.Status,
		Budget:         m.Budget,
		Spent:          m.Spent,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		ScheduledAt:    m.ScheduledAt,
		TargetAudience: m.TargetAudience,
		Metrics:        m.Metrics,
	}
	// a NULL column scans into an empty test
	if m.ABTest != nil && len(m.ABTest.Variants) > 0 {
		c.ABTest = m.ABTest
	}
	return c
}

// CampaignModelFromDomain creates a model from a domain Campaign
func CampaignModelFromDomain(c *marketing.Campaign) *CampaignModel {
	m := &CampaignModel{
		Name:           c.Name,
		Description:    c.Description,
		CampaignType:   c.CampaignType,
		Status:         c.Status,
		Budget:         c.Budget,
		Spent:          c.Spent,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		ScheduledAt:    c.ScheduledAt,
		TargetAudience: c.TargetAudience,
		Metrics:        c.Metrics,
		ABTest:         c.ABTest,
	}
	m.FromOwned(c.OwnedEntity)
	return m
}
