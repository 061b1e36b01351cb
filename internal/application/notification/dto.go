package notification

import (
	"time"

	"github.com/agencydesk/backend/internal/domain/notification"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Message   string `json:"message" binding:"max=2000"`
	Type      string `json:"type" binding:"omitempty,oneof=info success warning error"`
	Category  string `json:"category" binding:"omitempty,oneof=invoice task booking message system marketing"`
	ActionURL string `json:"action_url" binding:"max=500"`
}

// NotificationListFilter represents the query string of a notification list
type NotificationListFilter struct {
	Page            int      `form:"page"`
	PageSize        int      `form:"page_size"`
	Search          string   `form:"search"`
	UnreadOnly      bool     `form:"unread"`
	Categories      []string `form:"category"`
	Types           []string `form:"type"`
	IncludeArchived bool     `form:"include_archived"`
}

// ToDomain converts the list filter into the repository filter
func (f NotificationListFilter) ToDomain() notification.Filter {
	categories := make([]notification.Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		categories = append(categories, notification.Category(c))
	}
	types := make([]notification.Type, 0, len(f.Types))
	for _, t := range f.Types {
		types = append(types, notification.Type(t))
	}
	return notification.Filter{
		Filter:          shared.Filter{Page: f.Page, PageSize: f.PageSize, Search: f.Search}.Normalize(),
		UnreadOnly:      f.UnreadOnly,
		Categories:      categories,
		Types:           types,
		IncludeArchived: f.IncludeArchived,
	}
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Type       string     `json:"type"`
	Category   string     `json:"category"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	ActionURL  string     `json:"action_url,omitempty"`
	IsArchived bool       `json:"is_archived"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain Notification
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Title:      n.Title,
		Message:    n.Message,
		Type:       string(n.Type),
		Category:   string(n.Category),
		IsRead:     n.IsRead,
		ReadAt:     n.ReadAt,
		ActionURL:  n.ActionURL,
		IsArchived: n.IsArchived,
		CreatedAt:  n.CreatedAt,
	}
}

// UpdatePreferencesRequest represents a partial preferences update
type UpdatePreferencesRequest struct {
	EmailEnabled    *bool           `json:"email_enabled"`
	PushEnabled     *bool           `json:"push_enabled"`
	InAppEnabled    *bool           `json:"in_app_enabled"`
	Categories      map[string]bool `json:"categories"`
	QuietHoursStart *string         `json:"quiet_hours_start"`
	QuietHoursEnd   *string         `json:"quiet_hours_end"`
	Timezone        *string         `json:"timezone"`
}

// ToDomain converts the request into a domain update
func (r UpdatePreferencesRequest) ToDomain() notification.PreferencesUpdate {
	var categories map[notification.Category]bool
	if r.Categories != nil {
		categories = make(map[notification.Category]bool, len(r.Categories))
		for c, on := range r.Categories {
			categories[notification.Category(c)] = on
		}
	}
	return notification.PreferencesUpdate{
		EmailEnabled:    r.EmailEnabled,
		PushEnabled:     r.PushEnabled,
		InAppEnabled:    r.InAppEnabled,
		Categories:      categories,
		QuietHoursStart: r.QuietHoursStart,
		QuietHoursEnd:   r.QuietHoursEnd,
		Timezone:        r.Timezone,
	}
}

// PreferencesResponse represents notification preferences in API responses
type PreferencesResponse struct {
	EmailEnabled    bool            `json:"email_enabled"`
	PushEnabled     bool            `json:"push_enabled"`
	InAppEnabled    bool            `json:"in_app_enabled"`
	Categories      map[string]bool `json:"categories"`
	QuietHoursStart string          `json:"quiet_hours_start"`
	QuietHoursEnd   string          `json:"quiet_hours_end"`
	Timezone        string          `json:"timezone"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToPreferencesResponse converts domain Preferences
func ToPreferencesResponse(p *notification.Preferences) PreferencesResponse {
	categories := make(map[string]bool, len(p.Categories))
	for c, on := range p.Categories {
		categories[string(c)] = on
	}
	return PreferencesResponse{
		EmailEnabled:    p.EmailEnabled,
		PushEnabled:     p.PushEnabled,
		InAppEnabled:    p.InAppEnabled,
		Categories:      categories,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
		Timezone:        p.Timezone,
		UpdatedAt:       p.UpdatedAt,
	}
}

// UnreadCountResponse carries the unread notification total
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many notifications were marked
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
