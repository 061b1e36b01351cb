package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/notification"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NotificationService handles in-app notifications and delivery preferences
type NotificationService struct {
	repo  notification.Repository
	prefs notification.PreferencesRepository
	cache *query.Client
	now   func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo notification.Repository, prefs notification.PreferencesRepository, cache *query.Client) *NotificationService {
	return &NotificationService{
		repo:  repo,
		prefs: prefs,
		cache: cache,
		now:   time.Now,
	}
}

// ListNotifications returns a page of notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, filter NotificationListFilter) (shared.Paginated[NotificationResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[NotificationResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceNotifications, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[NotificationResponse], error) {
		page, err := s.repo.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[NotificationResponse]{}, fmt.Errorf("list notifications: %w", err)
		}
		out := make([]NotificationResponse, len(page.Data))
		for i := range page.Data {
			out[i] = ToNotificationResponse(&page.Data[i])
		}
		return shared.NewPageResult(out, page.Total, page.Page, page.PageSize).ToPaginated(), nil
	})
}

// CreateNotification stores a notification unconditionally
func (s *NotificationService) CreateNotification(ctx context.Context, userID uuid.UUID, req CreateNotificationRequest) (*NotificationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	n, err := notification.NewNotification(userID, req.Title, req.Message, notification.Type(req.Type), notification.Category(req.Category))
	if err != nil {
		return nil, err
	}
	n.ActionURL = req.ActionURL
	return s.save(ctx, n)
}

// Notify creates a notification when the user's preferences allow in-app
// delivery for its category. It returns nil, nil when suppressed.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, req CreateNotificationRequest) (*NotificationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	category := notification.Category(req.Category)
	if category == "" {
		category = notification.CategorySystem
	}
	if !prefs.AllowsInApp(category) {
		return nil, nil
	}
	return s.CreateNotification(ctx, userID, req)
}

// MarkRead marks one notification read. Cached copies show it read at once.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*NotificationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	now := s.now()
	predict := func(prev NotificationResponse) NotificationResponse {
		if !prev.IsRead {
			prev.IsRead = true
			prev.ReadAt = &now
		}
		return prev
	}
	resp, err := query.Run(ctx, s.cache, userID, query.ResourceNotifications, query.DetailKey(query.ResourceNotifications, id), query.TierUserData, predict,
		func(ctx context.Context) (NotificationResponse, error) {
			n, err := s.repo.FindByID(ctx, userID, id)
			if err != nil {
				return NotificationResponse{}, err
			}
			n.MarkRead(now)
			if err := s.repo.Save(ctx, n); err != nil {
				return NotificationResponse{}, fmt.Errorf("mark notification read: %w", err)
			}
			return ToNotificationResponse(n), nil
		})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkAllRead marks every unread notification read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (*MarkAllReadResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	n, err := s.repo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("mark all read: %w", err)
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceNotifications)
	return &MarkAllReadResponse{Updated: n}, nil
}

// ArchiveNotification hides a notification from the default list
func (s *NotificationService) ArchiveNotification(ctx context.Context, userID, id uuid.UUID) (*NotificationResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	n, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	n.Archive()
	return s.save(ctx, n)
}

// DeleteNotification permanently removes a notification
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceNotifications)
	return nil
}

// UnreadCount counts unread, non-archived notifications
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadCountResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.Key(query.ResourceNotifications, "unread"), query.TierUserData, func(ctx context.Context) (UnreadCountResponse, error) {
		n, err := s.repo.CountUnread(ctx, userID)
		if err != nil {
			return UnreadCountResponse{}, fmt.Errorf("count unread: %w", err)
		}
		return UnreadCountResponse{Unread: n}, nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPreferences returns the user's preferences, creating defaults on first read
func (s *NotificationService) GetPreferences(ctx context.Context, userID uuid.UUID) (*PreferencesResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToPreferencesResponse(prefs)
	return &resp, nil
}

// UpdatePreferences applies a partial preferences update
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID uuid.UUID, req UpdatePreferencesRequest) (*PreferencesResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	prefs, err := s.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := prefs.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	if err := s.prefs.Save(ctx, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	resp := ToPreferencesResponse(prefs)
	return &resp, nil
}

func (s *NotificationService) preferences(ctx context.Context, userID uuid.UUID) (*notification.Preferences, error) {
	prefs, err := s.prefs.Find(ctx, userID)
	if err == nil {
		return prefs, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	prefs = notification.DefaultPreferences(userID)
	if err := s.prefs.Save(ctx, prefs); err != nil {
		return nil, fmt.Errorf("create default preferences: %w", err)
	}
	return prefs, nil
}

func (s *NotificationService) save(ctx context.Context, n *notification.Notification) (*NotificationResponse, error) {
	if err := s.repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	s.cache.InvalidateResource(ctx, n.UserID, query.ResourceNotifications)
	resp := ToNotificationResponse(n)
	return &resp, nil
}
