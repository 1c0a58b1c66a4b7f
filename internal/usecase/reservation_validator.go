package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"massage-booking/internal/domain/entity"
	"massage-booking/pkg/validator"
)

const (
	maxCustomerNameLength  = 100
	maxCustomerEmailLength = 255
)

// ReservationValidator turns a raw booking form into a ValidatedReservation.
// It performs no I/O; the clock is the only input besides the request.
type ReservationValidator struct {
	validate *validator.CustomValidator
	loc      *time.Location
	now      func() time.Time
}

func NewReservationValidator(v *validator.CustomValidator, loc *time.Location) (*ReservationValidator, error) {
	if loc == nil {
		loc = time.UTC
	}
	if err := v.RegisterValidation("massagepackage", func(value string) bool {
		_, ok := entity.LookupPackage(value)
		return ok
	}); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("timeslot", func(value string) bool {
		_, ok := entity.LookupTimeSlot(value)
		return ok
	}); err != nil {
		return nil, err
	}

	return &ReservationValidator{validate: v, loc: loc, now: time.Now}, nil
}

// WithClock returns a copy that reads the current time from now
func (rv *ReservationValidator) WithClock(now func() time.Time) *ReservationValidator {
	clone := *rv
	clone.now = now
	return &clone
}

// Validate reports the first violated rule in this order: missing date, missing field,
// date format, past date, name, email, package, time slot.
func (rv *ReservationValidator) Validate(req entity.ReservationRequest) (*entity.ValidatedReservation, error) {
	date := trimmed(req.Date)
	if date == "" {
		return nil, newValidationError(RuleDateRequired, "booking_date", "booking_date is required")
	}

	name := trimmed(req.Name)
	email := trimmed(req.Email)
	pkg := trimmed(req.Package)
	slot := trimmed(req.TimeSlot)

	required := []struct {
		field string
		value string
	}{
		{"name", name},
		{"email", email},
		{"package", pkg},
		{"booking_time", slot},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, newValidationError(RuleFieldRequired, r.field, r.field+" is required")
		}
	}

	bookingDate, err := entity.ParseDate(date)
	if err != nil {
		return nil, newValidationError(RuleDateFormat, "booking_date", "booking_date must use the YYYY-MM-DD format")
	}
	if bookingDate.Before(entity.Today(rv.now(), rv.loc)) {
		return nil, newValidationError(RuleDatePast, "booking_date", "booking_date must not be in the past")
	}

	if utf8.RuneCountInString(name) > maxCustomerNameLength || rv.validate.Var(name, "personname") != nil {
		return nil, newValidationError(RuleNamePattern, "name", "name may only contain letters, spaces, hyphens and apostrophes (max 100 characters)")
	}
	if len(email) > maxCustomerEmailLength || rv.validate.Var(email, "email") != nil {
		return nil, newValidationError(RuleEmailPattern, "email", "email must be a valid email address (max 255 characters)")
	}
	if rv.validate.Var(pkg, "massagepackage") != nil {
		return nil, newValidationError(RulePackageUnknown, "package", "package is not offered")
	}
	if rv.validate.Var(slot, "timeslot") != nil {
		return nil, newValidationError(RuleTimeSlotUnknown, "booking_time", "booking_time is not an available time slot")
	}

	return &entity.ValidatedReservation{
		CustomerName:  name,
		CustomerEmail: email,
		Package:       entity.PackageCode(pkg),
		Date:          bookingDate,
		TimeSlot:      entity.TimeSlotCode(slot),
	}, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
