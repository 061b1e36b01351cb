package billing

import (
	"context"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)
	List(ctx context.Context, userID uuid.UUID, filter InvoiceFilter) (shared.PageResult[Invoice], error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]Invoice, error)
	// ListPastDue returns sent or viewed invoices of every user due before asOf
	ListPastDue(ctx context.Context, asOf time.Time) ([]Invoice, error)
	// MaxNumberWithPrefix returns the highest invoice number starting with
	// prefix, or "" when the user has none
	MaxNumberWithPrefix(ctx context.Context, userID uuid.UUID, prefix string) (string, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
