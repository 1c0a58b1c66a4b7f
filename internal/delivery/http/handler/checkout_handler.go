package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/response"
	"massage-booking/pkg/validator"
)

type CheckoutHandler struct {
	checkoutUsecase usecase.CheckoutUsecase
	validator       *validator.CustomValidator
}

func NewCheckoutHandler(checkoutUsecase usecase.CheckoutUsecase, validator *validator.CustomValidator) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUsecase: checkoutUsecase,
		validator:       validator,
	}
}

// CreateCheckoutSession handles POST /checkout-session
func (h *CheckoutHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid selection", h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.checkoutUsecase.CreateCheckoutSession(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSelection) {
			response.Error(w, http.StatusBadRequest, "Invalid selection", nil)
			return
		}
		response.Error(w, http.StatusBadGateway, "Failed to create checkout session", nil)
		return
	}

	response.Success(w, http.StatusOK, "Checkout session created successfully", session)
}
