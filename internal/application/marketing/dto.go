package marketing

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateLeadRequest represents a request to create a lead
type CreateLeadRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Email          string          `json:"email" binding:"omitempty,email,max=200"`
	Phone          string          `json:"phone" binding:"max=50"`
	Company        string          `json:"company" binding:"max=200"`
	Source         string          `json:"source" binding:"omitempty,oneof=website referral social email ads event other"`
	Score          int             `json:"score" binding:"min=0,max=100"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Notes          string          `json:"notes"`
	CampaignID     *uuid.UUID      `json:"campaign_id"`
}

// UpdateLeadRequest represents a partial lead update
type UpdateLeadRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Email          *string          `json:"email" binding:"omitempty,max=200"`
	Phone          *string          `json:"phone" binding:"omitempty,max=50"`
	Company        *string          `json:"company" binding:"omitempty,max=200"`
	Source         *string          `json:"source" binding:"omitempty,oneof=website referral social email ads event other"`
	Score          *int             `json:"score" binding:"omitempty,min=0,max=100"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	Notes          *string          `json:"notes"`
	CampaignID     *uuid.UUID       `json:"campaign_id"`
}

// ToDomain converts the request into a domain update
func (r UpdateLeadRequest) ToDomain() marketing.LeadUpdate {
	u := marketing.LeadUpdate{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Company:        r.Company,
		Score:          r.Score,
		EstimatedValue: r.EstimatedValue,
		Notes:          r.Notes,
		CampaignID:     r.CampaignID,
	}
	if r.Source != nil {
		src := marketing.LeadSource(*r.Source)
		u.Source = &src
	}
	return u
}

// LeadStatusRequest moves a lead along the pipeline
type LeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted qualified lost"`
}

// LeadListFilter represents the query string of a lead list
type LeadListFilter struct {
	Page       int        `form:"page" json:"page"`
	PageSize   int        `form:"page_size" json:"page_size"`
	OrderBy    string     `form:"order_by" json:"order_by"`
	OrderDir   string     `form:"order_dir" json:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search     string     `form:"search" json:"search"`
	Tab        string     `form:"tab" json:"tab" binding:"omitempty,oneof=all new contacted qualified converted lost"`
	Sources    []string   `form:"source" json:"sources"`
	MinScore   *int       `form:"min_score" json:"min_score" binding:"omitempty,min=0,max=100"`
	MaxScore   *int       `form:"max_score" json:"max_score" binding:"omitempty,min=0,max=100"`
	CampaignID *uuid.UUID `form:"campaign_id" json:"campaign_id"`
}

// ToDomain converts the list filter into the repository filter
func (f LeadListFilter) ToDomain() marketing.LeadFilter {
	sources := make([]marketing.LeadSource, 0, len(f.Sources))
	for _, s := range f.Sources {
		sources = append(sources, marketing.LeadSource(s))
	}
	tab := f.Tab
	if tab == "" {
		tab = marketing.LeadTabAll
	}
	return marketing.LeadFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		Tab:        tab,
		Sources:    sources,
		MinScore:   f.MinScore,
		MaxScore:   f.MaxScore,
		CampaignID: f.CampaignID,
	}
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Phone             string          `json:"phone"`
	Company           string          `json:"company"`
	Source            string          `json:"source"`
	Status            string          `json:"status"`
	Score             int             `json:"score"`
	EstimatedValue    decimal.Decimal `json:"estimated_value"`
	Notes             string          `json:"notes"`
	CampaignID        *uuid.UUID      `json:"campaign_id,omitempty"`
	ConvertedClientID *uuid.UUID      `json:"converted_client_id,omitempty"`
	LastContactedAt   *time.Time      `json:"last_contacted_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToLeadResponse converts a domain Lead
func ToLeadResponse(l *marketing.Lead) LeadResponse {
	return LeadResponse{
		ID:                l.ID,
		Name:              l.Name,
		Email:             l.Email,
		Phone:             l.Phone,
		Company:           l.Company,
		Source:            string(l.Source),
		Status:            string(l.Status),
		Score:             l.Score,
		EstimatedValue:    l.EstimatedValue,
		Notes:             l.Notes,
		CampaignID:        l.CampaignID,
		ConvertedClientID: l.ConvertedClientID,
		LastContactedAt:   l.LastContactedAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// ToLeadResponses converts a slice of leads
func ToLeadResponses(leads []marketing.Lead) []LeadResponse {
	out := make([]LeadResponse, len(leads))
	for i := range leads {
		out[i] = ToLeadResponse(&leads[i])
	}
	return out
}

// ConvertLeadResponse returns the converted lead and the new client id
type ConvertLeadResponse struct {
	Lead     LeadResponse `json:"lead"`
	ClientID uuid.UUID    `json:"client_id"`
}

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Description    string          `json:"description"`
	CampaignType   string          `json:"campaign_type" binding:"omitempty,oneof=email social ads content event"`
	Budget         decimal.Decimal `json:"budget"`
	StartDate      *time.Time      `json:"start_date"`
	EndDate        *time.Time      `json:"end_date"`
	TargetAudience string          `json:"target_audience" binding:"max=500"`
}

// UpdateCampaignRequest represents a partial campaign update
type UpdateCampaignRequest struct {
	Name           *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Description    *string            `json:"description"`
	CampaignType   *string            `json:"campaign_type" binding:"omitempty,oneof=email social ads content event"`
	Budget         *decimal.Decimal   `json:"budget"`
	Spent          *decimal.Decimal   `json:"spent"`
	StartDate      *time.Time         `json:"start_date"`
	EndDate        *time.Time         `json:"end_date"`
	TargetAudience *string            `json:"target_audience" binding:"omitempty,max=500"`
	Metrics        *marketing.Metrics `json:"metrics"`
}

// ToDomain converts the request into a domain update
func (r UpdateCampaignRequest) ToDomain() marketing.CampaignUpdate {
	u := marketing.CampaignUpdate{
		Name:           r.Name,
		Description:    r.Description,
		Budget:         r.Budget,
		Spent:          r.Spent,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
		TargetAudience: r.TargetAudience,
		Metrics:        r.Metrics,
	}
	if r.CampaignType != nil {
		t := marketing.CampaignType(*r.CampaignType)
		u.CampaignType = &t
	}
	return u
}

// ScheduleCampaignRequest sets the launch time of a draft campaign
type ScheduleCampaignRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// CampaignStatusRequest changes a campaign's status
type CampaignStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft scheduled active paused completed"`
}

// ABTestRequest attaches variants to a campaign
type ABTestRequest struct {
	Variants []marketing.Variant `json:"variants" binding:"required,min=2,max=5,dive"`
}

// CampaignListFilter represents the query string of a campaign list
type CampaignListFilter struct {
	Page     int      `form:"page"`
	PageSize int      `form:"page_size"`
	OrderBy  string   `form:"order_by"`
	OrderDir string   `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string   `form:"search"`
	Statuses []string `form:"status"`
	Types    []string `form:"campaign_type"`
}

// ToDomain converts the list filter into the repository filter
func (f CampaignListFilter) ToDomain() marketing.CampaignFilter {
	statuses := make([]marketing.CampaignStatus, 0, len(f.Statuses))
	for _, s := range f.Statuses {
		statuses = append(statuses, marketing.CampaignStatus(s))
	}
	types := make([]marketing.CampaignType, 0, len(f.Types))
	for _, t := range f.Types {
		types = append(types, marketing.CampaignType(t))
	}
	return marketing.CampaignFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		Statuses: statuses,
		Types:    types,
	}
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID             uuid.UUID         `json:"id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	CampaignType   string            `json:"campaign_type"`
	Status         string            `json:"status"`
	Budget         decimal.Decimal   `json:"budget"`
	Spent          decimal.Decimal   `json:"spent"`
	StartDate      *time.Time        `json:"start_date,omitempty"`
	EndDate        *time.Time        `json:"end_date,omitempty"`
	ScheduledAt    *time.Time        `json:"scheduled_at,omitempty"`
	TargetAudience string            `json:"target_audience"`
	Metrics        marketing.Metrics `json:"metrics"`
	ABTest         *marketing.ABTest `json:"ab_test,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ToCampaignResponse converts a domain Campaign
func ToCampaignResponse(c *marketing.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		CampaignType:   string(c.CampaignType),
		Status:         string(c.Status),
		Budget:         c.Budget,
		Spent:          c.Spent,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		ScheduledAt:    c.ScheduledAt,
		TargetAudience: c.TargetAudience,
		Metrics:        c.Metrics,
		ABTest:         c.ABTest,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToCampaignResponses converts a slice of campaigns
func ToCampaignResponses(campaigns []marketing.Campaign) []CampaignResponse {
	out := make([]CampaignResponse, len(campaigns))
	for i := range campaigns {
		out[i] = ToCampaignResponse(&campaigns[i])
	}
	return out
}

// StatsResponse combines lead and campaign statistics
type StatsResponse struct {
	Leads     marketing.LeadStats     `json:"leads"`
	Campaigns marketing.CampaignStats `json:"campaigns"`
}
