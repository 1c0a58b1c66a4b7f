package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/validator"

	"github.com/stretchr/testify/assert"
)

type stubCheckoutUsecase struct {
	err error
}

func (s *stubCheckoutUsecase) CreateCheckoutSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CheckoutSessionResponse{URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func TestCreateCheckoutSession(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"priced selection", `{"service":"thai","duration":30}`, nil, http.StatusOK},
		{"missing duration", `{"service":"thai"}`, nil, http.StatusBadRequest},
		{"unpriced selection", `{"service":"thai","duration":45}`, usecase.ErrInvalidSelection, http.StatusBadRequest},
		{"provider down", `{"service":"thai","duration":30}`, fmt.Errorf("%w: timeout", usecase.ErrCheckoutFailed), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckoutHandler(&stubCheckoutUsecase{err: tt.err}, validator.NewValidator())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout-session", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.CreateCheckoutSession(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusBadRequest {
				assert.Equal(t, "Invalid selection", decodeEnvelope(t, rec).Message)
			}
		})
	}
}
