package service

import (
	"context"
	"time"

	"massage-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RoutingKeyBookingCreated      = "booking.created"
	RoutingKeyBookingNotesUpdated = "booking.notes_updated"

	eventPublishTimeout = 5 * time.Second
)

// EventPublisher sends a JSON document to a message broker under a routing key
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingEvent is the integration payload for downstream consumers (e.g. confirmation mail)
type BookingEvent struct {
	EventID     string              `json:"event_id"`
	BookingID   uuid.UUID           `json:"booking_id"`
	BookingDate entity.Date         `json:"booking_date"`
	BookingTime entity.TimeSlotCode `json:"booking_time"`
	Package     entity.PackageCode  `json:"package"`
	At          time.Time           `json:"at"`
}

// BookingEventService publishes integration events after commit. Failures are logged only.
type BookingEventService struct {
	publisher EventPublisher
	log       *logrus.Logger
}

func NewBookingEventService(publisher EventPublisher, log *logrus.Logger) *BookingEventService {
	return &BookingEventService{publisher: publisher, log: log}
}

func (s *BookingEventService) Publish(ctx context.Context, key string, booking *entity.Booking) {
	if s == nil || s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
	defer cancel()

	event := BookingEvent{
		EventID:     uuid.NewString(),
		BookingID:   booking.ID,
		BookingDate: booking.BookingDate,
		BookingTime: booking.BookingTime,
		Package:     booking.Package,
		At:          time.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, key, event); err != nil {
		s.log.Warnf("Failed to publish %s for booking %s: %+v", key, booking.ID, err)
	}
}

// NoopEventPublisher is used when no broker is configured
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishJSON(context.Context, string, any) error {
	return nil
}
