package crm

import (
	"context"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines persistence operations for clients
type ClientRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Client, error)
	List(ctx context.Context, userID uuid.UUID, filter ClientFilter) (shared.PageResult[Client], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Client, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
