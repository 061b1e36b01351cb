package shared

// AggregateRoot is the base interface for entities that raise domain events
type AggregateRoot interface {
	Entity
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	OwnedEntity
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot creates a new aggregate root owned by userID
func NewBaseAggregateRoot(owner OwnedEntity) BaseAggregateRoot {
	return BaseAggregateRoot{
		OwnedEntity:  owner,
		domainEvents: make([]DomainEvent, 0),
	}
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
