package notification

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type is the severity shown to the user
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// IsValid checks if the type is a known value
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return true
	}
	return false
}

// Category groups notifications by the module that raised them
type Category string

const (
	CategoryInvoice   Category = "invoice"
	CategoryTask      Category = "task"
	CategoryBooking   Category = "booking"
	CategoryMessage   Category = "message"
	CategorySystem    Category = "system"
	CategoryMarketing Category = "marketing"
)

// AllCategories lists every category
func AllCategories() []Category {
	return []Category{CategoryInvoice, CategoryTask, CategoryBooking, CategoryMessage, CategorySystem, CategoryMarketing}
}

// IsValid checks if the category is a known value
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

var ErrNotificationNotFound = shared.NewNotFoundError("Notification")

// Notification is an in-app message for a user
type Notification struct {
	shared.OwnedEntity
	Title      string
	Message    string
	Type       Type
	Category   Category
	IsRead     bool
	ReadAt     *time.Time
	ActionURL  string
	IsArchived bool
}

// NewNotification creates an unread notification
func NewNotification(userID uuid.UUID, title, message string, typ Type, category Category) (*Notification, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	if typ == "" {
		typ = TypeInfo
	}
	if category == "" {
		category = CategorySystem
	}
	if !typ.IsValid() || !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid notification type or category")
	}
	return &Notification{
		OwnedEntity: shared.NewOwnedEntity(userID),
		Title:       title,
		Message:     message,
		Type:        typ,
		Category:    category,
	}, nil
}

// MarkRead stamps the read time once
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &now
	n.Touch()
}

// Archive hides the notification from the default list
func (n *Notification) Archive() {
	n.IsArchived = true
	n.Touch()
}

// Filter defines filtering options for notifications
type Filter struct {
	shared.Filter
	UnreadOnly      bool
	Categories      []Category
	Types           []Type
	IncludeArchived bool
}

// CategoryToggles maps a category to whether it is enabled
type CategoryToggles map[Category]bool

// Value implements driver.Valuer
func (c CategoryToggles) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (c *CategoryToggles) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*c = CategoryToggles{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("failed to scan category toggles: unsupported type")
	}
	if len(b) == 0 {
		*c = CategoryToggles{}
		return nil
	}
	return json.Unmarshal(b, c)
}

// Preferences are a user's delivery settings. Quiet hours are "HH:MM"
// local to Timezone; an empty start disables them.
type Preferences struct {
	UserID          uuid.UUID
	EmailEnabled    bool
	PushEnabled     bool
	InAppEnabled    bool
	Categories      CategoryToggles
	QuietHoursStart string
	QuietHoursEnd   string
	Timezone        string
	UpdatedAt       time.Time
}

// DefaultPreferences enables in-app and email delivery for every category
func DefaultPreferences(userID uuid.UUID) *Preferences {
	cats := CategoryToggles{}
	for _, c := range AllCategories() {
		cats[c] = true
	}
	return &Preferences{
		UserID:       userID,
		EmailEnabled: true,
		PushEnabled:  false,
		InAppEnabled: true,
		Categories:   cats,
		Timezone:     "UTC",
		UpdatedAt:    time.Now(),
	}
}

// CategoryEnabled reports whether a category is on; unknown entries default to on
func (p *Preferences) CategoryEnabled(c Category) bool {
	enabled, ok := p.Categories[c]
	return !ok || enabled
}

// AllowsInApp reports whether an in-app notification of category c should be created
func (p *Preferences) AllowsInApp(c Category) bool {
	return p.InAppEnabled && p.CategoryEnabled(c)
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, shared.NewDomainError("INVALID_QUIET_HOURS", "Quiet hours must use HH:MM")
	}
	return t.Hour()*60 + t.Minute(), nil
}

// InQuietHours reports whether now falls in the quiet window. Windows
// that wrap midnight are supported.
func (p *Preferences) InQuietHours(now time.Time) bool {
	if p.QuietHoursStart == "" || p.QuietHoursEnd == "" {
		return false
	}
	start, err := parseClock(p.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseClock(p.QuietHoursEnd)
	if err != nil {
		return false
	}
	if loc, err := time.LoadLocation(p.Timezone); err == nil {
		now = now.In(loc)
	}
	minute := now.Hour()*60 + now.Minute()
	if start <= end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

// PreferencesUpdate holds optional preference changes
type PreferencesUpdate struct {
	EmailEnabled    *bool
	PushEnabled     *bool
	InAppEnabled    *bool
	Categories      map[Category]bool
	QuietHoursStart *string
	QuietHoursEnd   *string
	Timezone        *string
}

// Apply validates and applies the update
func (p *Preferences) Apply(u PreferencesUpdate) error {
	for c := range u.Categories {
		if !c.IsValid() {
			return shared.NewDomainError("INVALID_CATEGORY", "Unknown notification category: "+string(c))
		}
	}
	for _, clock := range []*string{u.QuietHoursStart, u.QuietHoursEnd} {
		if clock != nil && *clock != "" {
			if _, err := parseClock(*clock); err != nil {
				return err
			}
		}
	}
	if u.Timezone != nil {
		if _, err := time.LoadLocation(*u.Timezone); err != nil {
			return shared.NewDomainError("INVALID_TIMEZONE", "Unknown timezone")
		}
		p.Timezone = *u.Timezone
	}
	if u.EmailEnabled != nil {
		p.EmailEnabled = *u.EmailEnabled
	}
	if u.PushEnabled != nil {
		p.PushEnabled = *u.PushEnabled
	}
	if u.InAppEnabled != nil {
		p.InAppEnabled = *u.InAppEnabled
	}
	if p.Categories == nil {
		p.Categories = CategoryToggles{}
	}
	for c, on := range u.Categories {
		p.Categories[c] = on
	}
	if u.QuietHoursStart != nil {
		p.QuietHoursStart = *u.QuietHoursStart
	}
	if u.QuietHoursEnd != nil {
		p.QuietHoursEnd = *u.QuietHoursEnd
	}
	p.UpdatedAt = time.Now()
	return nil
}
