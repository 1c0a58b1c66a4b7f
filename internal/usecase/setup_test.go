package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"massage-booking/internal/domain/entity"
	"massage-booking/internal/repository"
	"massage-booking/internal/service"
	"massage-booking/internal/testutil"
	"massage-booking/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedNow is the wall clock seen by every usecase under test
var fixedNow = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

type recordingChanges struct {
	mu      sync.Mutex
	changes []entity.BookingChange
}

func (r *recordingChanges) Publish(ctx context.Context, change entity.BookingChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *recordingChanges) types() []entity.ChangeType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.ChangeType, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Type
	}
	return out
}

type bookingFixture struct {
	db           *gorm.DB
	redis        *miniredis.Miniredis
	cache        *service.OccupancyCache
	availability AvailabilityUsecase
	changes      *recordingChanges
	usecase      BookingUsecase
}

func newReservationValidator(t *testing.T) *ReservationValidator {
	t.Helper()

	rv, err := NewReservationValidator(validator.NewValidator(), time.UTC)
	require.NoError(t, err)
	return rv.WithClock(fixedClock)
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr, client := testutil.NewRedis(t)
	log := testutil.Logger()
	bookingRepo := repository.NewBookingRepository()

	cache := service.NewOccupancyCache(db, client, bookingRepo, log, 24*time.Hour, time.UTC)
	availability := NewAvailabilityUsecase(db, log, bookingRepo, cache)
	changes := &recordingChanges{}
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())
	events := service.NewBookingEventService(service.NoopEventPublisher{}, log)

	uc := NewBookingUsecase(db, log, bookingRepo, auditService, newReservationValidator(t), availability, cache, changes, events, time.UTC)
	uc.(*bookingUsecase).now = fixedClock

	return &bookingFixture{
		db:           db,
		redis:        mr,
		cache:        cache,
		availability: availability,
		changes:      changes,
		usecase:      uc,
	}
}
