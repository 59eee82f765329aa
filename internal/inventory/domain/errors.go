package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrGateway           = errors.New("gateway failure")
)

// ValidationError returns an error of kind ErrValidation
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError returns an error of kind ErrNotFound
func NotFoundError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// ConflictError returns an error of kind ErrConflict
func ConflictError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// InsufficientStockError reports a decrement that would drive quantity below zero
type InsufficientStockError struct {
	ItemID    uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientStock) match
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// GatewayError wraps a failure of an outbound call
type GatewayError struct {
	Service string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause == nil {
		return e.Service + ": gateway failure"
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Cause)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrGateway) match
func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}
