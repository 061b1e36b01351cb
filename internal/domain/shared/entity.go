package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetOwnerID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// OwnedEntity carries the fields every user-owned record has.
// ID and UserID are assigned once and never change afterwards.
type OwnedEntity struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOwnedEntity creates a new entity owned by userID with a generated ID
func NewOwnedEntity(userID uuid.UUID) OwnedEntity {
	now := time.Now()
	return OwnedEntity{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the entity ID
func (e *OwnedEntity) GetID() uuid.UUID {
	return e.ID
}

// GetOwnerID returns the owning user ID
func (e *OwnedEntity) GetOwnerID() uuid.UUID {
	return e.UserID
}

// GetCreatedAt returns the creation timestamp
func (e *OwnedEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *OwnedEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch stamps UpdatedAt
func (e *OwnedEntity) Touch() {
	e.UpdatedAt = time.Now()
}

// OwnedBy reports whether the entity belongs to userID
func (e *OwnedEntity) OwnedBy(userID uuid.UUID) bool {
	return e.UserID == userID
}
