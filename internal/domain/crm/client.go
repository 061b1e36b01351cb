package crm

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientStatus represents the relationship status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
	ClientStatusProspect ClientStatus = "prospect"
	ClientStatusArchived ClientStatus = "archived"
)

// IsValid checks if the status is a known value
func (s ClientStatus) IsValid() bool {
	switch s {
	case ClientStatusActive, ClientStatusInactive, ClientStatusProspect, ClientStatusArchived:
		return true
	}
	return false
}

// ErrClientNotFound is returned when a client does not exist for the user
var ErrClientNotFound = shared.NewNotFoundError("Client")

// Client is a customer of the freelancer or agency
type Client struct {
	shared.OwnedEntity
	Name               string
	Email              string
	Phone              string
	Company            string
	Industry           string
	Status             ClientStatus
	Address            string
	Website            string
	Notes              string
	Tags               shared.StringList
	TotalRevenue       decimal.Decimal
	OutstandingBalance decimal.Decimal
	ProjectCount       int
}

// NewClient creates a client with zeroed financial counters.
// Status defaults to active.
func NewClient(userID uuid.UUID, name, email string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return &Client{
		OwnedEntity:        shared.NewOwnedEntity(userID),
		Name:               name,
		Email:              strings.TrimSpace(email),
		Status:             ClientStatusActive,
		Tags:               shared.StringList{},
		TotalRevenue:       decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}, nil
}

// ClientUpdate is a partial update; nil fields are left unchanged
type ClientUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Company  *string
	Industry *string
	Status   *ClientStatus
	Address  *string
	Website  *string
	Notes    *string
	Tags     []string
}

// Apply merges the update into the client and stamps UpdatedAt
func (c *Client) Apply(u ClientUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
		}
		c.Name = name
	}
	if u.Status != nil {
		if !u.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Invalid client status")
		}
		c.Status = *u.Status
	}
	if u.Email != nil {
		c.Email = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Company != nil {
		c.Company = *u.Company
	}
	if u.Industry != nil {
		c.Industry = *u.Industry
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
	if u.Website != nil {
		c.Website = *u.Website
	}
	if u.Notes != nil {
		c.Notes = *u.Notes
	}
	if u.Tags != nil {
		c.Tags = shared.StringList(u.Tags)
	}
	c.Touch()
	return nil
}

// RecordRevenue adds a paid amount to the client's lifetime revenue
func (c *Client) RecordRevenue(amount decimal.Decimal) {
	c.TotalRevenue = c.TotalRevenue.Add(amount)
	c.Touch()
}

// ClientFilter narrows client list queries; zero fields are unfiltered
type ClientFilter struct {
	shared.Filter
	Statuses []ClientStatus
	Industry string
	Created  shared.DateRange
}

// ClientStats are derived from the full client set of a user
type ClientStats struct {
	Total                   int             `json:"total"`
	Active                  int             `json:"active"`
	Inactive                int             `json:"inactive"`
	Prospects               int             `json:"prospects"`
	Archived                int             `json:"archived"`
	TotalRevenue            decimal.Decimal `json:"total_revenue"`
	AverageRevenuePerClient decimal.Decimal `json:"average_revenue_per_client"`
	NewThisMonth            int             `json:"new_this_month"`
	ChurnRate               decimal.Decimal `json:"churn_rate"`
}

// ComputeClientStats reduces clients into ClientStats
func ComputeClientStats(clients []Client, now time.Time) ClientStats {
	stats := ClientStats{Total: len(clients), TotalRevenue: decimal.Zero}
	monthStart := shared.StartOfMonth(now)
	for _, c := range clients {
		switch c.Status {
		case ClientStatusActive:
			stats.Active++
		case ClientStatusInactive:
			stats.Inactive++
		case ClientStatusProspect:
			stats.Prospects++
		case ClientStatusArchived:
			stats.Archived++
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(c.TotalRevenue)
		if !c.CreatedAt.Before(monthStart) {
			stats.NewThisMonth++
		}
	}
	denominator := stats.Total
	if denominator == 0 {
		denominator = 1
	}
	stats.AverageRevenuePerClient = shared.Round2(stats.TotalRevenue.Div(decimal.NewFromInt(int64(denominator))))
	stats.ChurnRate = shared.PercentOf(stats.Inactive, stats.Total)
	return stats
}
