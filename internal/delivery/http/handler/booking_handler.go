package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/delivery/http/middleware"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/response"
	"massage-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	booking, err := h.bookingUsecase.CreateBooking(r.Context(), middleware.GetPrincipalFromContext(r.Context()), &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

// GetMyBookings handles GET /bookings. Customers see their own bookings, administrators all.
func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	query, ok := parseListQuery(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingUsecase.ListBookings(r.Context(), middleware.GetPrincipalFromContext(r.Context()), query)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// GetAllBookings handles GET /admin/bookings
func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	query, ok := parseListQuery(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingUsecase.ListAllBookings(r.Context(), middleware.GetPrincipalFromContext(r.Context()), query)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), middleware.GetPrincipalFromContext(r.Context()), id)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

// UpdateNotes handles PATCH /admin/bookings/{id}/notes
func (h *BookingHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	var req dto.UpdateBookingNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.UpdateNotes(r.Context(), middleware.GetPrincipalFromContext(r.Context()), id, &req)
	if err != nil {
		writeUsecaseError(w, err, "Failed to update booking notes")
		return
	}

	response.Success(w, http.StatusOK, "Booking notes updated successfully", booking)
}

func parseListQuery(w http.ResponseWriter, r *http.Request) (*dto.ListBookingsQuery, bool) {
	q := r.URL.Query()
	query := &dto.ListBookingsQuery{
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
		Package:  q.Get("package"),
	}

	if raw := q.Get("upcoming"); raw != "" {
		upcoming, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid upcoming parameter", nil)
			return nil, false
		}
		query.UpcomingOnly = upcoming
	}

	return query, true
}
