package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateBookingRequest mirrors the booking form. Fields stay optional here;
// the reservation validator decides which are missing.
type CreateBookingRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Package     *string `json:"package"`
	BookingDate *string `json:"booking_date"`
	BookingTime *string `json:"booking_time"`
}

type ListBookingsQuery struct {
	FromDate     string
	ToDate       string
	Package      string
	UpcomingOnly bool
}

type UpdateBookingNotesRequest struct {
	Notes *string `json:"notes" validate:"omitempty,max=1000"`
}

// Response DTOs

type BookingResponse struct {
	ID          uuid.UUID  `json:"id"`
	Owner       *uuid.UUID `json:"owner,omitempty"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Package     string     `json:"package"`
	PackageName string     `json:"package_name,omitempty"`
	BookingDate string     `json:"booking_date"`
	BookingTime string     `json:"booking_time"`
	TimeLabel   string     `json:"time_label,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// SlotConflictResponse is returned with 409 so the client can offer another slot
type SlotConflictResponse struct {
	BookingDate   string   `json:"booking_date"`
	OccupiedSlots []string `json:"occupied_slots"`
}
