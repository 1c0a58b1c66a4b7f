package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// personNamePattern admits letters, spaces, hyphens and apostrophes, starting with a letter.
var personNamePattern = regexp.MustCompile(`^\p{L}[\p{L} '\-]*$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	// personname is infallible to register: the tag is new and the func is non-nil
	_ = v.RegisterValidation("personname", validatePersonName)

	return &CustomValidator{
		validator: v,
	}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Var validates a single value against a tag expression, e.g. "max=255,email".
func (cv *CustomValidator) Var(field interface{}, tag string) error {
	return cv.validator.Var(field, tag)
}

// RegisterValidation adds a custom tag backed by a plain predicate on the string value.
// Must be called before the validator is shared between goroutines.
func (cv *CustomValidator) RegisterValidation(tag string, fn func(value string) bool) error {
	return cv.validator.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := toSnakeCase(e.Field())
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "personname":
				errors[field] = field + " may only contain letters, spaces, hyphens and apostrophes"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

func validatePersonName(fl validator.FieldLevel) bool {
	return personNamePattern.MatchString(fl.Field().String())
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
