package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"massage-booking/internal/delivery/dto"
	"massage-booking/internal/delivery/http/middleware"
	"massage-booking/internal/domain/entity"
	"massage-booking/internal/usecase"
	"massage-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookingUsecase struct {
	usecase.BookingUsecase

	err       error
	principal entity.Principal
	query     *dto.ListBookingsQuery
}

func (s *stubBookingUsecase) CreateBooking(ctx context.Context, principal entity.Principal, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	s.principal = principal
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookingResponse{ID: uuid.New(), BookingDate: *req.BookingDate, BookingTime: *req.BookingTime}, nil
}

func (s *stubBookingUsecase) ListBookings(ctx context.Context, principal entity.Principal, query *dto.ListBookingsQuery) (*dto.BookingListResponse, error) {
	s.principal = principal
	s.query = query
	return &dto.BookingListResponse{Bookings: []dto.BookingResponse{}}, s.err
}

func (s *stubBookingUsecase) GetBooking(ctx context.Context, principal entity.Principal, id uuid.UUID) (*dto.BookingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.BookingResponse{ID: id}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func withPrincipal(r *http.Request, principal entity.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.PrincipalKey, principal))
}

const bookingBody = `{"name":"Jane Doe","email":"jane@example.com","package":"swedish","booking_date":"2025-06-01","booking_time":"10am"}`

func postBooking(h *BookingHandler, principal entity.Principal, body string) *httptest.ResponseRecorder {
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)), principal)
	rec := httptest.NewRecorder()
	h.CreateBooking(rec, req)
	return rec
}

func TestCreateBooking_Created(t *testing.T) {
	stub := &stubBookingUsecase{}
	h := NewBookingHandler(stub, validator.NewValidator())
	customer := entity.CustomerPrincipal(uuid.New())

	rec := postBooking(h, customer, bookingBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, customer, stub.principal)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var booking dto.BookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, "10am", booking.BookingTime)
}

func TestCreateBooking_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &usecase.ValidationError{Rule: usecase.RuleNamePattern, Field: "name", Message: "bad name"}, http.StatusBadRequest},
		{"slot conflict", &usecase.SlotConflictError{Date: "2025-06-01", Occupied: []entity.TimeSlotCode{"10am"}}, http.StatusConflict},
		{"anonymous", usecase.ErrAuthenticationRequired, http.StatusUnauthorized},
		{"not admin", usecase.ErrAuthorizationDenied, http.StatusForbidden},
		{"not found", usecase.ErrBookingNotFound, http.StatusNotFound},
		{"storage", usecase.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBookingHandler(&stubBookingUsecase{err: tt.err}, validator.NewValidator())

			rec := postBooking(h, entity.CustomerPrincipal(uuid.New()), bookingBody)

			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Success)
		})
	}
}

func TestCreateBooking_ValidationBody(t *testing.T) {
	h := NewBookingHandler(&stubBookingUsecase{
		err: &usecase.ValidationError{Rule: usecase.RuleNamePattern, Field: "name", Message: "bad name"},
	}, validator.NewValidator())

	rec := postBooking(h, entity.CustomerPrincipal(uuid.New()), bookingBody)

	var detail struct {
		Rule   string            `json:"rule"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Error, &detail))
	assert.Equal(t, "name_pattern", detail.Rule)
	assert.Equal(t, "bad name", detail.Fields["name"])
}

func TestCreateBooking_ConflictBody(t *testing.T) {
	h := NewBookingHandler(&stubBookingUsecase{
		err: &usecase.SlotConflictError{Date: "2025-06-01", Occupied: []entity.TimeSlotCode{"9am", "10am"}},
	}, validator.NewValidator())

	rec := postBooking(h, entity.CustomerPrincipal(uuid.New()), bookingBody)

	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict dto.SlotConflictResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &conflict))
	assert.Equal(t, "2025-06-01", conflict.BookingDate)
	assert.Equal(t, []string{"9am", "10am"}, conflict.OccupiedSlots)
}

func TestCreateBooking_MalformedBody(t *testing.T) {
	h := NewBookingHandler(&stubBookingUsecase{}, validator.NewValidator())

	rec := postBooking(h, entity.CustomerPrincipal(uuid.New()), `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMyBookings_Query(t *testing.T) {
	stub := &stubBookingUsecase{}
	h := NewBookingHandler(stub, validator.NewValidator())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?from=2025-06-01&package=hotstone&upcoming=true", nil)
	rec := httptest.NewRecorder()
	h.GetMyBookings(rec, withPrincipal(req, entity.CustomerPrincipal(uuid.New())))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &dto.ListBookingsQuery{FromDate: "2025-06-01", Package: "hotstone", UpcomingOnly: true}, stub.query)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/bookings?upcoming=soon", nil)
	rec = httptest.NewRecorder()
	h.GetMyBookings(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBooking_InvalidID(t *testing.T) {
	h := NewBookingHandler(&stubBookingUsecase{}, validator.NewValidator())

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/v1/bookings/nope", nil), map[string]string{"id": "nope"})
	rec := httptest.NewRecorder()
	h.GetBooking(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
