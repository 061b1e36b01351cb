package work

import (
	"context"
	"fmt"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/agencydesk/backend/internal/domain/work"
	"github.com/google/uuid"
)

// ProjectService handles project operations
type ProjectService struct {
	repo  work.ProjectRepository
	cache *query.Client
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo work.ProjectRepository, cache *query.Client) *ProjectService {
	return &ProjectService{
		repo:  repo,
		cache: cache,
	}
}

// ListProjects returns a page of projects; archived ones only on request
func (s *ProjectService) ListProjects(ctx context.Context, userID uuid.UUID, filter ProjectListFilter) (shared.Paginated[ProjectResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[ProjectResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceProjects, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[ProjectResponse], error) {
		page, err := s.repo.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[ProjectResponse]{}, fmt.Errorf("list projects: %w", err)
		}
		return shared.MapPage(page, ToProjectResponses).ToPaginated(), nil
	})
}

// GetProject returns a project by id
func (s *ProjectService) GetProject(ctx context.Context, userID, id uuid.UUID) (*ProjectResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceProjects, id), query.TierUserData, func(ctx context.Context) (ProjectResponse, error) {
		project, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return ProjectResponse{}, err
		}
		return ToProjectResponse(project), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateProject creates a project
func (s *ProjectService) CreateProject(ctx context.Context, userID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	project, err := work.NewProject(userID, req.Name)
	if err != nil {
		return nil, err
	}
	update := UpdateProjectRequest{
		ClientID:    req.ClientID,
		Description: &req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		HourlyRate:  req.HourlyRate,
	}
	if req.Status != "" {
		update.Status = &req.Status
	}
	if req.Priority != "" {
		update.Priority = &req.Priority
	}
	if err := project.Apply(update.ToDomain()); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceProjects)

	response := ToProjectResponse(project)
	return &response, nil
}

// UpdateProject applies a partial update
func (s *ProjectService) UpdateProject(ctx context.Context, userID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	project, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := project.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	return s.save(ctx, project)
}

// DeleteProject archives the project. Use PermanentlyDeleteProject to remove it.
func (s *ProjectService) DeleteProject(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	project, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	project.Archive()
	_, err = s.save(ctx, project)
	return err
}

// RestoreProject unarchives a project
func (s *ProjectService) RestoreProject(ctx context.Context, userID, id uuid.UUID) (*ProjectResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	project, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	project.Unarchive()
	return s.save(ctx, project)
}

// PermanentlyDeleteProject removes the project row
func (s *ProjectService) PermanentlyDeleteProject(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceProjects)
	return nil
}

// GetProjectStats returns statistics over all of the user's projects
func (s *ProjectService) GetProjectStats(ctx context.Context, userID uuid.UUID) (*work.ProjectStats, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	stats, err := query.Fetch(ctx, s.cache, userID, query.StatsKey(query.ResourceProjects), query.TierUserData, func(ctx context.Context) (work.ProjectStats, error) {
		projects, err := s.repo.ListAll(ctx, userID)
		if err != nil {
			return work.ProjectStats{}, fmt.Errorf("load projects: %w", err)
		}
		return work.ComputeProjectStats(projects), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ProjectService) save(ctx context.Context, project *work.Project) (*ProjectResponse, error) {
	if err := s.repo.Save(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	s.cache.InvalidateResource(ctx, project.UserID, query.ResourceProjects)
	response := ToProjectResponse(project)
	return &response, nil
}
