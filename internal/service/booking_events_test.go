package service

import (
	"context"
	"errors"
	"testing"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEventPublisher struct {
	keys   []string
	events []any
	err    error
}

func (p *recordingEventPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, v)
	return p.err
}

func TestBookingEventService_Publish(t *testing.T) {
	publisher := &recordingEventPublisher{}
	svc := NewBookingEventService(publisher, testutil.Logger())

	booking := &entity.Booking{
		ID:          uuid.New(),
		Package:     entity.PackageHotStone,
		BookingDate: "2025-06-01",
		BookingTime: "10am",
	}
	svc.Publish(context.Background(), RoutingKeyBookingCreated, booking)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, []string{RoutingKeyBookingCreated}, publisher.keys)

	event, ok := publisher.events[0].(BookingEvent)
	require.True(t, ok)
	assert.Equal(t, booking.ID, event.BookingID)
	assert.Equal(t, entity.Date("2025-06-01"), event.BookingDate)
	assert.Equal(t, entity.TimeSlotCode("10am"), event.BookingTime)
	assert.NotEmpty(t, event.EventID)
}

func TestBookingEventService_FailuresAreSwallowed(t *testing.T) {
	publisher := &recordingEventPublisher{err: errors.New("channel closed")}
	svc := NewBookingEventService(publisher, testutil.Logger())

	assert.NotPanics(t, func() {
		svc.Publish(context.Background(), RoutingKeyBookingNotesUpdated, &entity.Booking{ID: uuid.New()})
	})
	assert.Len(t, publisher.keys, 1)

	var nilService *BookingEventService
	assert.NotPanics(t, func() {
		nilService.Publish(context.Background(), RoutingKeyBookingCreated, &entity.Booking{})
	})
}
