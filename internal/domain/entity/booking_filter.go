package entity

import "github.com/google/uuid"

// BookingFilter is a domain-level filter for querying bookings.
// Used by repository layer to avoid coupling with delivery DTOs.
type BookingFilter struct {
	OwnerID  *uuid.UUID  // Restricts to one owner; forced for customers
	FromDate Date        // Inclusive lower bound on booking_date
	ToDate   Date        // Inclusive upper bound on booking_date
	Package  PackageCode // Exact package match
}
