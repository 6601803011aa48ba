package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	// ErrConstraintViolation - нарушение check-ограничения схемы. Последний рубеж
	// за пределами проверок движка распределения.
	ErrConstraintViolation = errors.New("constraint violation")
	ErrUnknown             = errors.New("unknown error")

	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// ValidationError - ошибка валидации входных данных. Возникает строго до каких-либо
// мутаций, отката по ней не требуется.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}
