package crm

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name     string   `json:"name" binding:"required,min=1,max=200"`
	Email    string   `json:"email" binding:"omitempty,email,max=200"`
	Phone    string   `json:"phone" binding:"max=50"`
	Company  string   `json:"company" binding:"max=200"`
	Industry string   `json:"industry" binding:"max=100"`
	Status   string   `json:"status" binding:"omitempty,oneof=active inactive prospect archived"`
	Address  string   `json:"address" binding:"max=500"`
	Website  string   `json:"website" binding:"max=300"`
	Notes    string   `json:"notes"`
	Tags     []string `json:"tags"`
}

// UpdateClientRequest represents a partial client update
type UpdateClientRequest struct {
	Name     *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Email    *string  `json:"email" binding:"omitempty,max=200"`
	Phone    *string  `json:"phone" binding:"omitempty,max=50"`
	Company  *string  `json:"company" binding:"omitempty,max=200"`
	Industry *string  `json:"industry" binding:"omitempty,max=100"`
	Status   *string  `json:"status" binding:"omitempty,oneof=active inactive prospect archived"`
	Address  *string  `json:"address" binding:"omitempty,max=500"`
	Website  *string  `json:"website" binding:"omitempty,max=300"`
	Notes    *string  `json:"notes"`
	Tags     []string `json:"tags"`
}

// ClientListFilter represents the query string of a client list
type ClientListFilter struct {
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search      string     `form:"search"`
	Status      []string   `form:"status"`
	Industry    string     `form:"industry"`
	CreatedFrom *time.Time `form:"created_from" time_format:"2006-01-02"`
	CreatedTo   *time.Time `form:"created_to" time_format:"2006-01-02"`
}

// ToDomain converts the list filter into the repository filter
func (f ClientListFilter) ToDomain() crm.ClientFilter {
	statuses := make([]crm.ClientStatus, 0, len(f.Status))
	for _, s := range f.Status {
		statuses = append(statuses, crm.ClientStatus(s))
	}
	return crm.ClientFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		Statuses: statuses,
		Industry: f.Industry,
		Created:  shared.DateRange{From: f.CreatedFrom, To: f.CreatedTo},
	}
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	Company            string          `json:"company"`
	Industry           string          `json:"industry"`
	Status             string          `json:"status"`
	Address            string          `json:"address"`
	Website            string          `json:"website"`
	Notes              string          `json:"notes"`
	Tags               []string        `json:"tags"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	ProjectCount       int             `json:"project_count"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ToClientResponse converts a domain Client to ClientResponse
func ToClientResponse(c *crm.Client) ClientResponse {
	tags := []string(c.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ClientResponse{
		ID:                 c.ID,
		UserID:             c.UserID,
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Company:            c.Company,
		Industry:           c.Industry,
		Status:             string(c.Status),
		Address:            c.Address,
		Website:            c.Website,
		Notes:              c.Notes,
		Tags:               tags,
		TotalRevenue:       c.TotalRevenue,
		OutstandingBalance: c.OutstandingBalance,
		ProjectCount:       c.ProjectCount,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []crm.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out
}
