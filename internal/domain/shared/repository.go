package shared

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the base interface for user-owned repositories.
// Every lookup is scoped by the owning user.
type Repository[T any] interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*T, error)
	Save(ctx context.Context, entity *T) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter represents paging, ordering and free-text search options shared by
// every list query. Resource filters embed it and add their own predicates.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Normalize returns a copy with page and page size clamped into range and
// ordering defaults filled in.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}
	return f
}

// Offset returns the zero-based row offset of the first row on the page
func (f Filter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Pagination describes the page a Paginated result holds
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// Paginated represents a paginated result
type Paginated[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// TotalPages returns ceil(total/pageSize), 0 when pageSize is not positive
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](data []T, total int64, page, pageSize int) Paginated[T] {
	if data == nil {
		data = make([]T, 0)
	}
	if pageSize > 0 && len(data) > pageSize {
		data = data[:pageSize]
	}
	return Paginated[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: TotalPages(total, pageSize),
			HasMore:    hasMore(total, page, pageSize),
		},
	}
}

func hasMore(total int64, page, pageSize int) bool {
	return total > int64(page)*int64(pageSize)
}

// PageResult is one page of rows as repositories return it
type PageResult[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasMore  bool  `json:"has_more"`
}

// NewPageResult builds a PageResult; HasMore is true while rows remain past this page
func NewPageResult[T any](data []T, total int64, page, pageSize int) PageResult[T] {
	if data == nil {
		data = make([]T, 0)
	}
	return PageResult[T]{
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore(total, page, pageSize),
	}
}

// MapPage converts the rows of p, keeping its position
func MapPage[T, U any](p PageResult[T], convert func([]T) []U) PageResult[U] {
	return NewPageResult(convert(p.Data), p.Total, p.Page, p.PageSize)
}

// ToPaginated converts a flat page into the paginated envelope shape
func (p PageResult[T]) ToPaginated() Paginated[T] {
	return NewPaginated(p.Data, p.Total, p.Page, p.PageSize)
}
