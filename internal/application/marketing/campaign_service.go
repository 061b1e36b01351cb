package marketing

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/marketing"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CampaignService handles campaigns and marketing statistics
type CampaignService struct {
	campaigns marketing.CampaignRepository
	leads     marketing.LeadRepository
	cache     *query.Client
	now       func() time.Time
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(campaigns marketing.CampaignRepository, leads marketing.LeadRepository, cache *query.Client, opts ...Option) *CampaignService {
	o := buildOptions(opts)
	return &CampaignService{
		campaigns: campaigns,
		leads:     leads,
		cache:     cache,
		now:       o.now,
	}
}

// ListCampaigns returns a page of campaigns
func (s *CampaignService) ListCampaigns(ctx context.Context, userID uuid.UUID, filter CampaignListFilter) (shared.Paginated[CampaignResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[CampaignResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceCampaigns, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[CampaignResponse], error) {
		page, err := s.campaigns.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[CampaignResponse]{}, fmt.Errorf("list campaigns: %w", err)
		}
		return shared.MapPage(page, ToCampaignResponses).ToPaginated(), nil
	})
}

// GetCampaign returns a campaign by id
func (s *CampaignService) GetCampaign(ctx context.Context, userID, id uuid.UUID) (*CampaignResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceCampaigns, id), query.TierUserData, func(ctx context.Context) (CampaignResponse, error) {
		c, err := s.campaigns.FindByID(ctx, userID, id)
		if err != nil {
			return CampaignResponse{}, err
		}
		return ToCampaignResponse(c), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCampaign creates a draft campaign
func (s *CampaignService) CreateCampaign(ctx context.Context, userID uuid.UUID, req CreateCampaignRequest) (*CampaignResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	c, err := marketing.NewCampaign(userID, req.Name, marketing.CampaignType(req.CampaignType))
	if err != nil {
		return nil, err
	}
	update := marketing.CampaignUpdate{
		Description:    &req.Description,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TargetAudience: &req.TargetAudience,
	}
	if !req.Budget.IsZero() {
		update.Budget = &req.Budget
	}
	if err := c.Apply(update); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// UpdateCampaign applies a partial update
func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, id uuid.UUID, req UpdateCampaignRequest) (*CampaignResponse, error) {
	return s.mutate(ctx, userID, id, func(c *marketing.Campaign) error {
		return c.Apply(req.ToDomain())
	})
}

// ScheduleCampaign sets the launch time of a draft campaign
func (s *CampaignService) ScheduleCampaign(ctx context.Context, userID, id uuid.UUID, req ScheduleCampaignRequest) (*CampaignResponse, error) {
	return s.mutate(ctx, userID, id, func(c *marketing.Campaign) error {
		return c.Schedule(req.ScheduledAt, s.now())
	})
}

// LaunchCampaign activates a draft, scheduled or paused campaign
func (s *CampaignService) LaunchCampaign(ctx context.Context, userID, id uuid.UUID) (*CampaignResponse, error) {
	return s.mutate(ctx, userID, id, func(c *marketing.Campaign) error {
		return c.Launch(s.now())
	})
}

// TransitionCampaign moves a campaign to another status
func (s *CampaignService) TransitionCampaign(ctx context.Context, userID, id uuid.UUID, req CampaignStatusRequest) (*CampaignResponse, error) {
	status := marketing.CampaignStatus(req.Status)
	if status == marketing.CampaignStatusActive {
		return s.LaunchCampaign(ctx, userID, id)
	}
	return s.mutate(ctx, userID, id, func(c *marketing.Campaign) error {
		return c.TransitionTo(status)
	})
}

// CreateABTest attaches a validated variant set to a campaign
func (s *CampaignService) CreateABTest(ctx context.Context, userID, id uuid.UUID, req ABTestRequest) (*CampaignResponse, error) {
	return s.mutate(ctx, userID, id, func(c *marketing.Campaign) error {
		test, err := marketing.NewABTest(req.Variants, s.now())
		if err != nil {
			return err
		}
		return c.AttachABTest(test)
	})
}

// DeleteCampaign removes a campaign
func (s *CampaignService) DeleteCampaign(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if _, err := s.campaigns.FindByID(ctx, userID, id); err != nil {
		return err
	}
	if err := s.campaigns.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceCampaigns)
	return nil
}

// GetStats computes lead and campaign statistics from both tables at once
func (s *CampaignService) GetStats(ctx context.Context, userID uuid.UUID) (*StatsResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceLeads), query.TierAnalytics, func(ctx context.Context) (StatsResponse, error) {
		var (
			leads     []marketing.Lead
			campaigns []marketing.Campaign
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			leads, err = s.leads.ListAll(gctx, userID, marketing.LeadFilter{Tab: marketing.LeadTabAll})
			return err
		})
		g.Go(func() error {
			var err error
			campaigns, err = s.campaigns.ListAll(gctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return StatsResponse{}, fmt.Errorf("load marketing stats: %w", err)
		}
		return StatsResponse{
			Leads:     marketing.ComputeLeadStats(leads),
			Campaigns: marketing.ComputeCampaignStats(campaigns),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *CampaignService) mutate(ctx context.Context, userID, id uuid.UUID, fn func(*marketing.Campaign) error) (*CampaignResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	c, err := s.campaigns.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

func (s *CampaignService) save(ctx context.Context, c *marketing.Campaign) (*CampaignResponse, error) {
	if err := s.campaigns.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save campaign: %w", err)
	}
	s.cache.InvalidateResource(ctx, c.UserID, query.ResourceCampaigns)
	resp := ToCampaignResponse(c)
	return &resp, nil
}
