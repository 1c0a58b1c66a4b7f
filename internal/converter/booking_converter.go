package converter

import (
	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO,
// resolving catalog display names when the codes are known
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:          booking.ID,
		Owner:       booking.OwnerID,
		Name:        booking.CustomerName,
		Email:       booking.CustomerEmail,
		Package:     string(booking.Package),
		BookingDate: booking.BookingDate.String(),
		BookingTime: string(booking.BookingTime),
		Notes:       booking.Notes,
		CreatedAt:   booking.CreatedAt,
	}

	if pkg, ok := entity.LookupPackage(string(booking.Package)); ok {
		response.PackageName = pkg.Name
	}
	if slot, ok := entity.LookupTimeSlot(string(booking.BookingTime)); ok {
		response.TimeLabel = slot.Label
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
