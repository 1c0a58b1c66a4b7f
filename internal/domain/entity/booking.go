package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is a reservation of one time slot on one calendar date.
// (booking_date, booking_time) is unique across the whole table: the studio has a single
// practitioner, so a slot can be held by at most one booking regardless of package or owner.
type Booking struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       *uuid.UUID   `gorm:"column:owner;type:uuid;index" json:"owner,omitempty"`
	CustomerName  string       `gorm:"column:name;type:varchar(100);not null" json:"name"`
	CustomerEmail string       `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Package       PackageCode  `gorm:"column:package;type:varchar(50);not null" json:"package"`
	BookingDate   Date         `gorm:"column:booking_date;type:date;not null;uniqueIndex:bookings_slot_key,priority:1" json:"booking_date"`
	BookingTime   TimeSlotCode `gorm:"column:booking_time;type:varchar(10);not null;uniqueIndex:bookings_slot_key,priority:2" json:"booking_time"`
	Notes         *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate assigns the id in the application so the insert stays portable across engines.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsOwnedBy reports whether userID created the booking
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}

// Slot returns the exclusive-occupancy key of the booking
func (b *Booking) Slot() Slot {
	return Slot{Date: b.BookingDate, TimeSlot: b.BookingTime}
}

// Slot is a (date, time slot) pair, the unit of exclusive occupancy.
type Slot struct {
	Date     Date
	TimeSlot TimeSlotCode
}
