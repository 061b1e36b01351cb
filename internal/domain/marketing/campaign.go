package marketing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CampaignType classifies campaigns
type CampaignType string

const (
	CampaignTypeEmail   CampaignType = "email"
	CampaignTypeSocial  CampaignType = "social"
	CampaignTypeAds     CampaignType = "ads"
	CampaignTypeContent CampaignType = "content"
	CampaignTypeEvent   CampaignType = "event"
)

// IsValid checks if the type is a known value
func (t CampaignType) IsValid() bool {
	switch t {
	case CampaignTypeEmail, CampaignTypeSocial, CampaignTypeAds, CampaignTypeContent, CampaignTypeEvent:
		return true
	}
	return false
}

// CampaignStatus is the lifecycle state of a campaign
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// CampaignMachine is the campaign lifecycle
var CampaignMachine = shared.NewStateMachine("Campaign", map[CampaignStatus][]CampaignStatus{
	CampaignStatusDraft:     {CampaignStatusScheduled, CampaignStatusActive},
	CampaignStatusScheduled: {CampaignStatusDraft, CampaignStatusActive},
	CampaignStatusActive:    {CampaignStatusPaused, CampaignStatusCompleted},
	CampaignStatusPaused:    {CampaignStatusActive, CampaignStatusCompleted},
})

var ErrCampaignNotFound = shared.NewNotFoundError("Campaign")

const (
	MinVariants = 2
	MaxVariants = 5
)

// Metrics are the campaign performance counters
type Metrics struct {
	Sent        int             `json:"sent"`
	Opens       int             `json:"opens"`
	Clicks      int             `json:"clicks"`
	Conversions int             `json:"conversions"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Value implements driver.Valuer
func (m Metrics) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *Metrics) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil || len(b) == 0 {
		*m = Metrics{}
		return err
	}
	return json.Unmarshal(b, m)
}

// Variant is one arm of an A/B test
type Variant struct {
	Name        string `json:"name"`
	Subject     string `json:"subject,omitempty"`
	Content     string `json:"content,omitempty"`
	Weight      int    `json:"weight"`
	Sent        int    `json:"sent"`
	Opens       int    `json:"opens"`
	Clicks      int    `json:"clicks"`
	Conversions int    `json:"conversions"`
}

// ABTest is the variant set attached to a campaign
type ABTest struct {
	Variants  []Variant `json:"variants"`
	CreatedAt time.Time `json:"created_at"`
	Winner    string    `json:"winner,omitempty"`
}

// Value implements driver.Valuer
func (t *ABTest) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *ABTest) Scan(value interface{}) error {
	b, err := jsonBytes(value)
	if err != nil || len(b) == 0 {
		*t = ABTest{}
		return err
	}
	return json.Unmarshal(b, t)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, errors.New("failed to scan JSON column: unsupported type")
}

// NewABTest validates variants: 2 to 5, unique non-empty names, weights
// that are positive and sum to 100.
func NewABTest(variants []Variant, now time.Time) (*ABTest, error) {
	if len(variants) < MinVariants || len(variants) > MaxVariants {
		return nil, shared.NewDomainError("INVALID_VARIANTS", "An A/B test needs between 2 and 5 variants")
	}
	seen := map[string]bool{}
	total := 0
	out := make([]Variant, len(variants))
	for i, v := range variants {
		v.Name = strings.TrimSpace(v.Name)
		if v.Name == "" || seen[v.Name] {
			return nil, shared.NewDomainError("INVALID_VARIANTS", "Variant names must be unique and non-empty")
		}
		if v.Weight <= 0 {
			return nil, shared.NewDomainError("INVALID_VARIANTS", "Variant weights must be positive")
		}
		seen[v.Name] = true
		total += v.Weight
		v.Sent, v.Opens, v.Clicks, v.Conversions = 0, 0, 0, 0
		out[i] = v
	}
	if total != 100 {
		return nil, shared.NewDomainError("INVALID_VARIANTS", "Variant weights must sum to 100")
	}
	return &ABTest{Variants: out, CreatedAt: now}, nil
}

// Campaign is a marketing effort
type Campaign struct {
	shared.OwnedEntity
	Name           string
	Description    string
	CampaignType   CampaignType
	Status         CampaignStatus
	Budget         decimal.Decimal
	Spent          decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
	ScheduledAt    *time.Time
	TargetAudience string
	Metrics        Metrics
	ABTest         *ABTest
}

// NewCampaign creates a draft campaign
func NewCampaign(userID uuid.UUID, name string, campaignType CampaignType) (*Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Campaign name cannot be empty")
	}
	if campaignType == "" {
		campaignType = CampaignTypeEmail
	}
	if !campaignType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN_TYPE", "Invalid campaign type")
	}
	return &Campaign{
		OwnedEntity:  shared.NewOwnedEntity(userID),
		Name:         name,
		CampaignType: campaignType,
		Status:       CampaignStatusDraft,
	}, nil
}

// TransitionTo validates and applies a status change
func (c *Campaign) TransitionTo(status CampaignStatus) error {
	if err := CampaignMachine.Validate(c.Status, status); err != nil {
		return err
	}
	c.Status = status
	if status == CampaignStatusDraft {
		c.ScheduledAt = nil
	}
	c.Touch()
	return nil
}

// Schedule sets a future launch time on a draft campaign
func (c *Campaign) Schedule(at, now time.Time) error {
	if c.Status != CampaignStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft campaigns can be scheduled")
	}
	if !at.After(now) {
		return shared.NewDomainError("INVALID_SCHEDULE", "Scheduled time must be in the future")
	}
	if err := c.TransitionTo(CampaignStatusScheduled); err != nil {
		return err
	}
	c.ScheduledAt = &at
	return nil
}

// Launch activates the campaign and stamps the start date if unset
func (c *Campaign) Launch(now time.Time) error {
	if err := c.TransitionTo(CampaignStatusActive); err != nil {
		return err
	}
	if c.StartDate == nil {
		c.StartDate = &now
	}
	return nil
}

// AttachABTest replaces the campaign's A/B test
func (c *Campaign) AttachABTest(test *ABTest) error {
	if c.Status == CampaignStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Completed campaigns cannot get an A/B test")
	}
	c.ABTest = test
	c.Touch()
	return nil
}

// CampaignUpdate holds optional updates. Status changes go through TransitionTo.
type CampaignUpdate struct {
	Name           *string
	Description    *string
	CampaignType   *CampaignType
	Budget         *decimal.Decimal
	Spent          *decimal.Decimal
	StartDate      *time.Time
	EndDate        *time.Time
	TargetAudience *string
	Metrics        *Metrics
}

// Apply applies the update
func (c *Campaign) Apply(u CampaignUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Campaign name cannot be empty")
		}
		c.Name = name
	}
	if u.CampaignType != nil {
		if !u.CampaignType.IsValid() {
			return shared.NewDomainError("INVALID_CAMPAIGN_TYPE", "Invalid campaign type")
		}
		c.CampaignType = *u.CampaignType
	}
	if (u.Budget != nil && u.Budget.IsNegative()) || (u.Spent != nil && u.Spent.IsNegative()) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amounts cannot be negative")
	}
	start, end := c.StartDate, c.EndDate
	if u.StartDate != nil {
		start = u.StartDate
	}
	if u.EndDate != nil {
		end = u.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date must not be before start date")
	}
	if u.Budget != nil {
		c.Budget = *u.Budget
	}
	if u.Spent != nil {
		c.Spent = *u.Spent
	}
	c.StartDate, c.EndDate = start, end
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.TargetAudience != nil {
		c.TargetAudience = *u.TargetAudience
	}
	if u.Metrics != nil {
		c.Metrics = *u.Metrics
	}
	c.Touch()
	return nil
}

// CampaignFilter defines filtering options for campaigns
type CampaignFilter struct {
	shared.Filter
	Statuses []CampaignStatus
	Types    []CampaignType
}
