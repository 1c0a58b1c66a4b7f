package usecase

import (
	"context"
	"sort"
	"time"

	"massage-booking/internal/converter"
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"
	"massage-booking/internal/domain/repository"
	"massage-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const changePublishTimeout = 5 * time.Second

// ChangePublisher announces committed booking changes to live listeners
type ChangePublisher interface {
	Publish(ctx context.Context, change entity.BookingChange) error
}

type BookingUsecase interface {
	CreateBooking(ctx context.Context, principal entity.Principal, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	ListBookings(ctx context.Context, principal entity.Principal, query *dto.ListBookingsQuery) (*dto.BookingListResponse, error)
	ListAllBookings(ctx context.Context, principal entity.Principal, query *dto.ListBookingsQuery) (*dto.BookingListResponse, error)
	GetBooking(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.BookingResponse, error)
	UpdateNotes(ctx context.Context, principal entity.Principal, id uuid.UUID, req *dto.UpdateBookingNotesRequest) (*dto.BookingResponse, error)
}

type bookingUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	bookingRepo  repository.BookingRepository
	auditService service.AuditService
	validator    *ReservationValidator
	availability AvailabilityUsecase
	cache        OccupancyStore
	changes      ChangePublisher
	events       *service.BookingEventService
	loc          *time.Location
	now          func() time.Time
}

func NewBookingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	auditService service.AuditService,
	validator *ReservationValidator,
	availability AvailabilityUsecase,
	cache OccupancyStore,
	changes ChangePublisher,
	events *service.BookingEventService,
	loc *time.Location,
) BookingUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingUsecase{
		db:           db,
		log:          log,
		bookingRepo:  bookingRepo,
		auditService: auditService,
		validator:    validator,
		availability: availability,
		cache:        cache,
		changes:      changes,
		events:       events,
		loc:          loc,
		now:          time.Now,
	}
}

// CreateBooking validates the form and inserts the booking. The unique (date, time slot)
// constraint decides between concurrent writers; the loser gets a *SlotConflictError.
func (u *bookingUsecase) CreateBooking(ctx context.Context, principal entity.Principal, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	if principal.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	validated, err := u.validator.Validate(entity.ReservationRequest{
		Name:     req.Name,
		Email:    req.Email,
		Package:  req.Package,
		Date:     req.BookingDate,
		TimeSlot: req.BookingTime,
	})
	if err != nil {
		return nil, err
	}

	ownerID := principal.UserID
	booking := &entity.Booking{
		OwnerID:       &ownerID,
		CustomerName:  validated.CustomerName,
		CustomerEmail: validated.CustomerEmail,
		Package:       validated.Package,
		BookingDate:   validated.Date,
		BookingTime:   validated.TimeSlot,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.bookingRepo.Create(ctx, tx, booking); err != nil {
		if isDuplicateKeyError(err, "slot") {
			tx.Rollback()
			return nil, u.slotConflict(ctx, validated.Date)
		}
		u.log.Errorf("Failed to create booking: %+v", err)
		return nil, persistenceError(err)
	}

	if err := u.auditService.LogCreate(ctx, tx, &ownerID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), converter.BookingToResponse(booking)); err != nil {
		return nil, persistenceError(err)
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicateKeyError(err, "slot") {
			return nil, u.slotConflict(ctx, validated.Date)
		}
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, persistenceError(err)
	}

	u.log.Infof("Booking %s created for %s %s", booking.ID, booking.BookingDate, booking.BookingTime)

	if err := u.cache.MarkOccupied(ctx, booking.Slot()); err != nil {
		u.log.Warnf("Failed to mark slot occupied in cache: %+v", err)
		if err := u.cache.Invalidate(ctx, booking.BookingDate); err != nil {
			u.log.Warnf("Failed to invalidate occupancy cache: %+v", err)
		}
	}

	u.afterCommit(entity.ChangeCreated, service.RoutingKeyBookingCreated, booking)

	return converter.BookingToResponse(booking), nil
}

// ListBookings returns the caller's own bookings, or every booking for an administrator
func (u *bookingUsecase) ListBookings(ctx context.Context, principal entity.Principal, query *dto.ListBookingsQuery) (*dto.BookingListResponse, error) {
	if principal.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	filter, err := u.buildFilter(query)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdministrator() {
		ownerID := principal.UserID
		filter.OwnerID = &ownerID
	}

	return u.list(ctx, filter)
}

func (u *bookingUsecase) ListAllBookings(ctx context.Context, principal entity.Principal, query *dto.ListBookingsQuery) (*dto.BookingListResponse, error) {
	if principal.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	if !principal.IsAdministrator() {
		return nil, ErrAuthorizationDenied
	}

	filter, err := u.buildFilter(query)
	if err != nil {
		return nil, err
	}

	return u.list(ctx, filter)
}

// GetBooking hides bookings of other owners behind ErrBookingNotFound
func (u *bookingUsecase) GetBooking(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.BookingResponse, error) {
	if principal.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}

	booking, err := u.bookingRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find booking by ID: %+v", err)
		return nil, persistenceError(err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if !principal.IsAdministrator() && !booking.IsOwnedBy(principal.UserID) {
		return nil, ErrBookingNotFound
	}

	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) UpdateNotes(ctx context.Context, principal entity.Principal, id uuid.UUID, req *dto.UpdateBookingNotesRequest) (*dto.BookingResponse, error) {
	if principal.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	if !principal.IsAdministrator() {
		return nil, ErrAuthorizationDenied
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	booking, err := u.bookingRepo.FindByID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find booking by ID: %+v", err)
		return nil, persistenceError(err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	oldNotes := booking.Notes
	affected, err := u.bookingRepo.UpdateNotes(ctx, tx, id, req.Notes)
	if err != nil {
		u.log.Errorf("Failed to update booking notes: %+v", err)
		return nil, persistenceError(err)
	}
	if affected == 0 {
		return nil, ErrBookingNotFound
	}
	booking.Notes = req.Notes

	actorID := principal.UserID
	if err := u.auditService.LogUpdate(ctx, tx, &actorID, entity.AuditActionBookingNotesUpdate, "booking", id.String(),
		map[string]interface{}{"notes": oldNotes}, map[string]interface{}{"notes": req.Notes}); err != nil {
		return nil, persistenceError(err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, persistenceError(err)
	}

	u.log.Infof("Notes of booking %s updated by %s", id, actorID)
	u.afterCommit(entity.ChangeUpdated, service.RoutingKeyBookingNotesUpdated, booking)

	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) list(ctx context.Context, filter *entity.BookingFilter) (*dto.BookingListResponse, error) {
	bookings, err := u.bookingRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Errorf("Failed to find bookings: %+v", err)
		return nil, persistenceError(err)
	}

	sortBookings(bookings)

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) buildFilter(query *dto.ListBookingsQuery) (*entity.BookingFilter, error) {
	filter := &entity.BookingFilter{}
	if query == nil {
		return filter, nil
	}

	if query.FromDate != "" {
		from, err := entity.ParseDate(query.FromDate)
		if err != nil {
			return nil, newValidationError(RuleDateFormat, "from", "from must use the YYYY-MM-DD format")
		}
		filter.FromDate = from
	}
	if query.ToDate != "" {
		to, err := entity.ParseDate(query.ToDate)
		if err != nil {
			return nil, newValidationError(RuleDateFormat, "to", "to must use the YYYY-MM-DD format")
		}
		filter.ToDate = to
	}
	if query.UpcomingOnly {
		today := entity.Today(u.now(), u.loc)
		if filter.FromDate.IsZero() || filter.FromDate.Before(today) {
			filter.FromDate = today
		}
	}
	if query.Package != "" {
		if _, ok := entity.LookupPackage(query.Package); !ok {
			return nil, newValidationError(RulePackageUnknown, "package", "package is not offered")
		}
		filter.Package = entity.PackageCode(query.Package)
	}

	return filter, nil
}

// slotConflict drops the stale cache entry and re-reads the date for the caller
func (u *bookingUsecase) slotConflict(ctx context.Context, date entity.Date) error {
	if err := u.cache.Invalidate(ctx, date); err != nil {
		u.log.Warnf("Failed to invalidate occupancy cache: %+v", err)
	}

	// a failed re-read still yields a conflict; the occupied list is then empty
	occupied, err := u.availability.GetOccupiedSlots(ctx, date)
	if err != nil {
		u.log.Warnf("Failed to re-read occupied slots for %s after conflict: %+v", date, err)
	}

	return &SlotConflictError{Date: date, Occupied: occupied}
}

// afterCommit notifies listeners without holding up the response
func (u *bookingUsecase) afterCommit(changeType entity.ChangeType, routingKey string, booking *entity.Booking) {
	change := entity.NewBookingChange(changeType, u.now())
	snapshot := *booking

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), changePublishTimeout)
		defer cancel()

		if err := u.changes.Publish(ctx, change); err != nil {
			u.log.Warnf("Failed to publish booking change: %+v", err)
		}
		u.events.Publish(ctx, routingKey, &snapshot)
	}()
}

// sortBookings orders by date, then by slot position in the catalog
func sortBookings(bookings []entity.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].BookingDate != bookings[j].BookingDate {
			return bookings[i].BookingDate.Before(bookings[j].BookingDate)
		}
		return slotRank(bookings[i].BookingTime) < slotRank(bookings[j].BookingTime)
	})
}
