package handler

import (
	"errors"
	"net/http"

	"massage-booking/internal/converter"
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/response"
)

// writeUsecaseError maps errors shared by the booking endpoints onto response envelopes.
// fallback is the message for unexpected failures.
func writeUsecaseError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *usecase.ValidationError
	var conflictErr *usecase.SlotConflictError

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, map[string]interface{}{
			"rule":   validationErr.Rule,
			"fields": validationErr.Fields(),
		})
	case errors.As(err, &conflictErr):
		response.Conflict(w, "This time slot has just been booked, please choose another", dto.SlotConflictResponse{
			BookingDate:   conflictErr.Date.String(),
			OccupiedSlots: converter.SlotCodesToStrings(conflictErr.Occupied),
		})
	case errors.Is(err, usecase.ErrAuthenticationRequired):
		response.Unauthorized(w, "Authentication required")
	case errors.Is(err, usecase.ErrAuthorizationDenied):
		response.Forbidden(w, "You don't have permission to access this resource")
	case errors.Is(err, usecase.ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	default:
		response.InternalServerError(w, fallback)
	}
}
