package marketing

import (
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadSource records where a lead came from
type LeadSource string

const (
	LeadSourceWebsite  LeadSource = "website"
	LeadSourceReferral LeadSource = "referral"
	LeadSourceSocial   LeadSource = "social"
	LeadSourceEmail    LeadSource = "email"
	LeadSourceAds      LeadSource = "ads"
	LeadSourceEvent    LeadSource = "event"
	LeadSourceOther    LeadSource = "other"
)

// IsValid checks if the source is a known value
func (s LeadSource) IsValid() bool {
	switch s {
	case LeadSourceWebsite, LeadSourceReferral, LeadSourceSocial, LeadSourceEmail,
		LeadSourceAds, LeadSourceEvent, LeadSourceOther:
		return true
	}
	return false
}

// LeadStatus is the pipeline stage of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// IsOpen reports whether the lead is still in the pipeline
func (s LeadStatus) IsOpen() bool {
	return s != LeadStatusConverted && s != LeadStatusLost
}

// LeadMachine is the lead pipeline
var LeadMachine = shared.NewStateMachine("Lead", map[LeadStatus][]LeadStatus{
	LeadStatusNew:       {LeadStatusContacted, LeadStatusQualified, LeadStatusLost},
	LeadStatusContacted: {LeadStatusQualified, LeadStatusLost},
	LeadStatusQualified: {LeadStatusConverted, LeadStatusLost},
})

var ErrLeadNotFound = shared.NewNotFoundError("Lead")

// Lead is a prospective client
type Lead struct {
	shared.BaseAggregateRoot
	Name              string
	Email             string
	Phone             string
	Company           string
	Source            LeadSource
	Status            LeadStatus
	Score             int
	EstimatedValue    decimal.Decimal
	Notes             string
	CampaignID        *uuid.UUID
	ConvertedClientID *uuid.UUID
	LastContactedAt   *time.Time
}

// NewLead creates a lead in the new stage
func NewLead(userID uuid.UUID, name, email string, source LeadSource) (*Lead, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Lead name cannot be empty")
	}
	if source == "" {
		source = LeadSourceOther
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Invalid lead source")
	}
	return &Lead{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(shared.NewOwnedEntity(userID)),
		Name:              name,
		Email:             strings.TrimSpace(email),
		Source:            source,
		Status:            LeadStatusNew,
	}, nil
}

func validateScore(score int) error {
	if score < 0 || score > 100 {
		return shared.NewDomainError("INVALID_SCORE", "Score must be between 0 and 100")
	}
	return nil
}

// TransitionTo moves the lead along the pipeline. Conversion goes through Convert.
func (l *Lead) TransitionTo(status LeadStatus, now time.Time) error {
	if status == LeadStatusConverted {
		return shared.NewDomainError("INVALID_STATE", "Use lead conversion to convert a lead")
	}
	if err := LeadMachine.Validate(l.Status, status); err != nil {
		return err
	}
	l.Status = status
	if status == LeadStatusContacted {
		l.LastContactedAt = &now
	}
	l.Touch()
	return nil
}

// Convert builds a client from the lead, links it and raises LeadConverted
func (l *Lead) Convert() (*crm.Client, error) {
	if err := LeadMachine.Validate(l.Status, LeadStatusConverted); err != nil {
		return nil, err
	}
	client, err := crm.NewClient(l.UserID, l.Name, l.Email)
	if err != nil {
		return nil, err
	}
	client.Phone = l.Phone
	client.Company = l.Company
	client.Notes = l.Notes
	client.Status = crm.ClientStatusActive

	l.Status = LeadStatusConverted
	id := client.ID
	l.ConvertedClientID = &id
	l.Touch()
	l.AddDomainEvent(NewLeadConvertedEvent(l))
	return client, nil
}

// LeadUpdate holds optional updates. Status changes go through TransitionTo.
type LeadUpdate struct {
	Name           *string
	Email          *string
	Phone          *string
	Company        *string
	Source         *LeadSource
	Score          *int
	EstimatedValue *decimal.Decimal
	Notes          *string
	CampaignID     *uuid.UUID
}

// Apply applies the update
func (l *Lead) Apply(u LeadUpdate) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return shared.NewDomainError("INVALID_NAME", "Lead name cannot be empty")
		}
		l.Name = name
	}
	if u.Source != nil {
		if !u.Source.IsValid() {
			return shared.NewDomainError("INVALID_SOURCE", "Invalid lead source")
		}
		l.Source = *u.Source
	}
	if u.Score != nil {
		if err := validateScore(*u.Score); err != nil {
			return err
		}
		l.Score = *u.Score
	}
	if u.EstimatedValue != nil {
		if u.EstimatedValue.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Estimated value cannot be negative")
		}
		l.EstimatedValue = *u.EstimatedValue
	}
	if u.Email != nil {
		l.Email = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		l.Phone = *u.Phone
	}
	if u.Company != nil {
		l.Company = *u.Company
	}
	if u.Notes != nil {
		l.Notes = *u.Notes
	}
	if u.CampaignID != nil {
		l.CampaignID = u.CampaignID
	}
	l.Touch()
	return nil
}

// LeadTabAll selects every status
const LeadTabAll = "all"

// LeadFilter defines filtering options for leads
type LeadFilter struct {
	shared.Filter
	// Tab is "all" or a lead status
	Tab        string
	Sources    []LeadSource
	MinScore   *int
	MaxScore   *int
	CampaignID *uuid.UUID
}

// Status returns the status selected by the tab, or "" for all
func (f LeadFilter) Status() LeadStatus {
	if f.Tab == "" || f.Tab == LeadTabAll {
		return ""
	}
	return LeadStatus(f.Tab)
}
