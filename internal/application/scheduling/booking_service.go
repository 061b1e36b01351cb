package scheduling

import (
	"context"
	"fmt"

	"github.com/agencydesk/backend/internal/application/query"
	"github.com/agencydesk/backend/internal/domain/scheduling"
	"github.com/agencydesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingService handles bookings
type BookingService struct {
	repo   scheduling.BookingRepository
	cache  *query.Client
	events shared.EventPublisher
	logger *zap.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(repo scheduling.BookingRepository, cache *query.Client, events shared.EventPublisher, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// ListBookings returns a page of the user's bookings
func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID, filter BookingListFilter) (shared.Paginated[BookingResponse], error) {
	if err := shared.RequireUser(userID); err != nil {
		return shared.Paginated[BookingResponse]{}, err
	}
	df := filter.ToDomain()
	return query.Fetch(ctx, s.cache, userID, query.ListKey(query.ResourceBookings, df), query.TierUserData, func(ctx context.Context) (shared.Paginated[BookingResponse], error) {
		page, err := s.repo.List(ctx, userID, df)
		if err != nil {
			return shared.Paginated[BookingResponse]{}, fmt.Errorf("list bookings: %w", err)
		}
		return shared.MapPage(page, ToBookingResponses).ToPaginated(), nil
	})
}

// GetBooking returns a booking by id
func (s *BookingService) GetBooking(ctx context.Context, userID, id uuid.UUID) (*BookingResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	resp, err := query.Fetch(ctx, s.cache, userID, query.DetailKey(query.ResourceBookings, id), query.TierUserData, func(ctx context.Context) (BookingResponse, error) {
		booking, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return BookingResponse{}, err
		}
		return ToBookingResponse(booking), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBooking creates a pending booking
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	}
	booking, err := scheduling.NewBooking(userID, req.ClientName, req.ClientEmail, req.Service, req.StartTime, req.EndTime, price)
	if err != nil {
		return nil, err
	}
	booking.CalendarID = req.CalendarID
	booking.Notes = req.Notes
	return s.save(ctx, booking)
}

// UpdateBooking applies a partial update
func (s *BookingService) UpdateBooking(ctx context.Context, userID, id uuid.UUID, req UpdateBookingRequest) (*BookingResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := booking.Apply(req.ToDomain()); err != nil {
		return nil, err
	}
	return s.save(ctx, booking)
}

// TransitionBooking changes the status through the booking machine. The
// cached booking shows the new status until the write settles.
func (s *BookingService) TransitionBooking(ctx context.Context, userID, id uuid.UUID, status scheduling.BookingStatus) (*BookingResponse, error) {
	if err := shared.RequireUser(userID); err != nil {
		return nil, err
	}
	predict := func(prev BookingResponse) BookingResponse {
		prev.Status = string(status)
		return prev
	}
	var pending []shared.DomainEvent
	resp, err := query.Run(ctx, s.cache, userID, query.ResourceBookings, query.DetailKey(query.ResourceBookings, id), query.TierUserData, predict,
		func(ctx context.Context) (BookingResponse, error) {
			booking, err := s.repo.FindByID(ctx, userID, id)
			if err != nil {
				return BookingResponse{}, err
			}
			if err := booking.TransitionTo(status); err != nil {
				return BookingResponse{}, err
			}
			if err := s.repo.Save(ctx, booking); err != nil {
				return BookingResponse{}, fmt.Errorf("update booking status: %w", err)
			}
			pending = booking.GetDomainEvents()
			booking.ClearDomainEvents()
			return ToBookingResponse(booking), nil
		})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return &resp, nil
}

// ConfirmBooking moves a pending booking to confirmed
func (s *BookingService) ConfirmBooking(ctx context.Context, userID, id uuid.UUID) (*BookingResponse, error) {
	return s.TransitionBooking(ctx, userID, id, scheduling.BookingStatusConfirmed)
}

// CancelBooking cancels a pending or confirmed booking
func (s *BookingService) CancelBooking(ctx context.Context, userID, id uuid.UUID) (*BookingResponse, error) {
	return s.TransitionBooking(ctx, userID, id, scheduling.BookingStatusCancelled)
}

// DeleteBooking deletes a booking
func (s *BookingService) DeleteBooking(ctx context.Context, userID, id uuid.UUID) error {
	if err := shared.RequireUser(userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateResource(ctx, userID, query.ResourceBookings)
	return nil
}

func (s *BookingService) save(ctx context.Context, booking *scheduling.Booking) (*BookingResponse, error) {
	if err := s.repo.Save(ctx, booking); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	s.cache.InvalidateResource(ctx, booking.UserID, query.ResourceBookings)
	events := booking.GetDomainEvents()
	booking.ClearDomainEvents()
	s.publish(ctx, events)
	response := ToBookingResponse(booking)
	return &response, nil
}

func (s *BookingService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish booking events", zap.Error(err))
	}
}
