package repository

import (
	"context"

	"massage-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingRepository interface {
	// Create inserts the booking as a single statement; the storage engine rejects a second
	// booking for the same (booking_date, booking_time).
	Create(ctx context.Context, db *gorm.DB, booking *entity.Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Booking, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.BookingFilter) ([]entity.Booking, error)
	FindOccupiedSlots(ctx context.Context, db *gorm.DB, date entity.Date) ([]entity.TimeSlotCode, error)
	FindBookedDates(ctx context.Context, db *gorm.DB, from entity.Date, limit, offset int) ([]entity.Date, error)
	FindSlotsByDates(ctx context.Context, db *gorm.DB, dates []entity.Date) ([]entity.Slot, error)
	UpdateNotes(ctx context.Context, db *gorm.DB, id uuid.UUID, notes *string) (int64, error)
}
