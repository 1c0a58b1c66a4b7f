package usecase

import (
	"errors"
	"fmt"
	"strings"

	"massage-booking/internal/domain/entity"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("administrator role required")
	ErrSlotConflict           = errors.New("time slot is already booked")
	ErrPersistence            = errors.New("failed to persist booking data")
	ErrBookingNotFound        = errors.New("booking not found")
)

// ValidationRule names the first rule a booking request violated
type ValidationRule string

const (
	RuleDateRequired    ValidationRule = "date_required"
	RuleFieldRequired   ValidationRule = "field_required"
	RuleDateFormat      ValidationRule = "date_format"
	RuleDatePast        ValidationRule = "date_past"
	RuleNamePattern     ValidationRule = "name_pattern"
	RuleEmailPattern    ValidationRule = "email_pattern"
	RulePackageUnknown  ValidationRule = "package_unknown"
	RuleTimeSlotUnknown ValidationRule = "time_slot_unknown"
)

type ValidationError struct {
	Rule    ValidationRule
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Fields renders the error in the same shape as DTO validation failures
func (e *ValidationError) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}

func newValidationError(rule ValidationRule, field, message string) *ValidationError {
	return &ValidationError{Rule: rule, Field: field, Message: message}
}

// SlotConflictError reports a lost race for a slot together with a fresh view of the date
type SlotConflictError struct {
	Date     entity.Date
	Occupied []entity.TimeSlotCode
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%s on %s", ErrSlotConflict.Error(), e.Date)
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotConflict
}

func persistenceError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

// isDuplicateKeyError checks if the error is a unique constraint violation on a constraint
// whose name contains constraintName. Errors translated by gorm carry no constraint name
// and always match.
func isDuplicateKeyError(err error, constraintName string) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
