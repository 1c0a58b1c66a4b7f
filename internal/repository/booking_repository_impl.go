package repository

import (
	"context"
	"errors"

	"massage-booking/internal/domain/entity"
	domainRepo "massage-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingRepository struct{}

func NewBookingRepository() domainRepo.BookingRepository {
	return &bookingRepository{}
}

func (r *bookingRepository) Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// FindAll returns bookings matching filter ordered by date. Slot order within a day is
// applied by the caller because booking_time is a label, not a sortable value.
func (r *bookingRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.BookingFilter) ([]entity.Booking, error) {
	var bookings []entity.Booking
	query := db.WithContext(ctx).Model(&entity.Booking{})

	if filter != nil {
		if filter.OwnerID != nil {
			query = query.Where("owner = ?", *filter.OwnerID)
		}
		if !filter.FromDate.IsZero() {
			query = query.Where("booking_date >= ?", filter.FromDate)
		}
		if !filter.ToDate.IsZero() {
			query = query.Where("booking_date <= ?", filter.ToDate)
		}
		if filter.Package != "" {
			query = query.Where("package = ?", filter.Package)
		}
	}

	err := query.Order("booking_date ASC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindOccupiedSlots(ctx context.Context, db *gorm.DB, date entity.Date) ([]entity.TimeSlotCode, error) {
	var slots []entity.TimeSlotCode
	err := db.WithContext(ctx).Model(&entity.Booking{}).
		Where("booking_date = ?", date).
		Pluck("booking_time", &slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *bookingRepository) FindBookedDates(ctx context.Context, db *gorm.DB, from entity.Date, limit, offset int) ([]entity.Date, error) {
	var dates []entity.Date
	err := db.WithContext(ctx).Model(&entity.Booking{}).
		Distinct("booking_date").
		Where("booking_date >= ?", from).
		Order("booking_date ASC").
		Limit(limit).
		Offset(offset).
		Pluck("booking_date", &dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}

func (r *bookingRepository) FindSlotsByDates(ctx context.Context, db *gorm.DB, dates []entity.Date) ([]entity.Slot, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	var rows []struct {
		BookingDate entity.Date
		BookingTime entity.TimeSlotCode
	}
	err := db.WithContext(ctx).Model(&entity.Booking{}).
		Select("booking_date, booking_time").
		Where("booking_date IN ?", dates).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	slots := make([]entity.Slot, len(rows))
	for i, row := range rows {
		slots[i] = entity.Slot{Date: row.BookingDate, TimeSlot: row.BookingTime}
	}
	return slots, nil
}

// UpdateNotes changes only the notes column. Returns affected rows: 0 = booking not found.
func (r *bookingRepository) UpdateNotes(ctx context.Context, db *gorm.DB, id uuid.UUID, notes *string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ?", id).
		Update("notes", notes)
	return result.RowsAffected, result.Error
}
