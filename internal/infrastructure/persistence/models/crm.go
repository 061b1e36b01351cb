package models

import (
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for crm.Client
type ClientModel struct {
	OwnedModel
	Name               string            `gorm:"type:varchar(200);not null"`
	Email              string            `gorm:"type:varchar(200);index"`
	Phone              string            `gorm:"type:varchar(50)"`
	Company            string            `gorm:"type:varchar(200)"`
	Industry           string            `gorm:"type:varchar(100);index"`
	Status             crm.ClientStatus  `gorm:"type:varchar(20);not null;default:'active';index"`
	Address            string            `gorm:"type:text"`
	Website            string            `gorm:"type:varchar(500)"`
	Notes              string            `gorm:"type:text"`
	Tags               shared.StringList `gorm:"type:jsonb"`
	TotalRevenue       decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	OutstandingBalance decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	ProjectCount       int               `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the model to a domain Client
func (m *ClientModel) ToDomain() *crm.Client {
	return &crm.Client{
		OwnedEntity:        m.ToOwned(),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Company:            m.Company,
		Industry:           m.Industry,
		Status:             m.Status,
		Address:            m.Address,
		Website:            m.Website,
		Notes:              m.Notes,
		Tags:               m.Tags,
		TotalRevenue:       m.TotalRevenue,
		OutstandingBalance: m.OutstandingBalance,
		ProjectCount:       m.ProjectCount,
	}
}

// FromDomain populates the model from a domain Client
func (m *ClientModel) FromDomain(c *crm.Client) {
	m.FromOwned(c.OwnedEntity)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Company = c.Company
	m.Industry = c.Industry
	m.Status = c.Status
	m.Address = c.Address
	m.Website = c.Website
	m.Notes = c.Notes
	m.Tags = c.Tags
	m.TotalRevenue = c.TotalRevenue
	m.OutstandingBalance = c.OutstandingBalance
	m.ProjectCount = c.ProjectCount
}

// ClientModelFromDomain creates a model from a domain Client
func ClientModelFromDomain(c *crm.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
