package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/crm"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client operations
type ClientService struct {
	repo  crm.ClientRepository
	cache *query.Client
	now   func() time.Time
}

// NewClientService creates a new ClientService
func NewClientService(repo crm.ClientRepository, cache *query.Client) *ClientService {
	return &ClientService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// ListClients returns a page of the user's clients
func (s *ClientService) ListClients(ctx context.Context, userID uuid.UUID, filter ClientListFilter) (shared.Paginated[ClientResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[ClientResponse]{}, err
	}
	df := filter.ToDomain()
	key := query.ListKey(query.ResourceClients, df)
	return query.Fetch(ctx, s.cache, userID, key, query.TierUserData, func(ctx context.Context) (shared.Paginated[ClientResponse], error) {
		page, err := s.repo.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[ClientResponse]{}, fmt.Errorf("list clients: %w", err)
		}
		return shared.MapPage(page, ToClientResponses).ToPaginated(), nil
	})
}

// GetClient returns a client by id
func (s *ClientService) GetClient(ctx context.Context, userID, id uuid.UUID) (*ClientResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceClients, id), query.TierUserData, func(ctx context.Context) (ClientResponse, error) {
		client, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return ClientResponse{}, err
		}
		return ToClientResponse(client), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateClient creates a client
func (s *ClientService) CreateClient(ctx context.Context, userID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	client, err := crm.NewClient(userID, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	update := crm.ClientUpdate{
		Phone:    &req.Phone,
		Company:  &req.Company,
		Industry: &req.Industry,
		Address:  &req.Address,
		Website:  &req.Website,
		Notes:    &req.Notes,
		Tags:     req.Tags,
	}
	if req.Status != "" {
		status := crm.ClientStatus(req.Status)
		update.Status = &status
	}
	if err := client.Apply(update); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceClients)

	response := ToClientResponse(client)
	return &response, nil
}

// UpdateClient applies a partial update; id and owner never change
func (s *ClientService) UpdateClient(ctx context.Context, userID, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	client, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	update := crm.ClientUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Industry: req.Industry,
		Address:  req.Address,
		Website:  req.Website,
		Notes:    req.Notes,
		Tags:     req.Tags,
	}
	if req.Status != nil {
		status := crm.ClientStatus(*req.Status)
		update.Status = &status
	}
	if err := client.Apply(update); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceClients)

	response := ToClientResponse(client)
	return &response, nil
}

// DeleteClient deletes a client
func (s *ClientService) DeleteClient(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceClients)
	return nil
}

// GetClientStats returns statistics over all of the user's clients
func (s *ClientService) GetClientStats(ctx context.Context, userID uuid.UUID) (*crm.ClientStats, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	stats, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceClients), query.TierUserData, func(ctx context.Context) (crm.ClientStats, error) {
		clients, err := s.repo.ListAll(ctx, userID)
		if err != nil {
			return crm.ClientStats{}, fmt.Errorf("load clients: %w", err)
		}
		return crm.ComputeClientStats(clients, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
