package notification

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for notifications
type Repository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Notification, error)
	List(ctx context.Context, userID uuid.UUID, filter Filter) (shared.PageResult[Notification], error)
	Save(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PreferencesRepository stores one preferences row per user
type PreferencesRepository interface {
	// Find returns shared.ErrNotFound when the user has no row yet
	Find(ctx context.Context, userID uuid.UUID) (*Preferences, error)
	Save(ctx context.Context, p *Preferences) error
}
