package handler

import (
	"net/http"

	"massage-booking/internal/usecase"
	"massage-booking/pkg/response"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
	}
}

func (h *AvailabilityHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Catalog retrieved successfully", h.availabilityUsecase.GetCatalog(r.Context()))
}

// GetAvailability handles GET /availability?date=YYYY-MM-DD
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.ValidationError(w, map[string]string{"date": "date is required"})
		return
	}

	availability, err := h.availabilityUsecase.GetAvailability(r.Context(), date)
	if err != nil {
		writeUsecaseError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}
