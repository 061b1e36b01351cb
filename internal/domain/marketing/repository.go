package marketing

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadRepository defines persistence operations for leads
type LeadRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Lead, error)
	List(ctx context.Context, userID uuid.UUID, filter LeadFilter) (shared.PageResult[Lead], error)
	ListAll(ctx context.Context, userID uuid.UUID, filter LeadFilter) ([]Lead, error)
	Save(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// CampaignRepository defines persistence operations for campaigns
type CampaignRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Campaign, error)
	List(ctx context.Context, userID uuid.UUID, filter CampaignFilter) (shared.PageResult[Campaign], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Campaign, error)
	Save(ctx context.Context, campaign *Campaign) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
