package store

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Infinities pass gte=0 but cannot be written back as a number.
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError lists the fields of a Student that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrInvalidStudent.Message + ": " + strings.Join(e.Fields, ", ")
}

// Is lets callers match any ValidationError with errors.Is(err, ErrInvalidStudent).
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidStudent
}

// Validate checks the input constraints on a student: name present and at
// most MaxNameLength characters, age in [1,100], gender 0 or 1, and
// finite non-negative score and scholarship, and non-negative registration
// time. The identifier
// must be set.
func (s Student) Validate() error {
	err := validate.Struct(s)
	if !s.ID.IsSet() {
		err = errors.Join(err, errUnsetID)
	}
	return validationError(err)
}

// ValidatePartial checks only the named fields, e.g. "Age".
func ValidatePartial(s Student, fields ...string) error {
	return validationError(validate.StructPartial(s, fields...))
}

var errUnsetID = errors.New("field ID is required")

func validationError(err error) error {
	if err == nil {
		return nil
	}

	var messages []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			messages = append(messages, fieldMessage(e))
		}
	}
	if errors.Is(err, errUnsetID) {
		messages = append(messages, errUnsetID.Error())
	}
	if len(messages) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidStudent, err)
	}
	return &ValidationError{Fields: messages}
}

func fieldMessage(e validator.FieldError) string {
	switch e.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is required", e.Field())
	case "max":
		return fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param())
	case "min", "gte":
		return fmt.Sprintf("field %s must be at least %s", e.Field(), orZero(e.Param()))
	case "finite":
		return fmt.Sprintf("field %s must be a finite number", e.Field())
	case "oneof":
		return fmt.Sprintf("field %s must be one of [%s]", e.Field(), e.Param())
	default:
		return fmt.Sprintf("field %s is invalid", e.Field())
	}
}

func orZero(p string) string {
	if p == "" {
		return "0"
	}
	return p
}
