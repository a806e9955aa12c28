package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation общий признак ошибки валидации входных данных
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition недопустимый переход статуса бронирования
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// ValidationError ошибка валидации конкретного поля
// errors.Is(err, ErrValidation) == true
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
