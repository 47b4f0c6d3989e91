package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds raised by the checkout domain. Match them with errors.Is.
var (
	ErrValidation               = errors.New("validation failed")
	ErrNotFound                 = errors.New("not found")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrInvalidCoupon            = errors.New("invalid coupon")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrInstallmentLimitExceeded = errors.New("installment limit exceeded")
	ErrInvalidTransition        = errors.New("invalid status transition")
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

func Validation(format string, args ...any) *AppError {
	return NewAppError("VALIDATION", fmt.Sprintf(format, args...), http.StatusBadRequest, ErrValidation)
}

func NotFound(format string, args ...any) *AppError {
	return NewAppError("NOT_FOUND", fmt.Sprintf(format, args...), http.StatusNotFound, ErrNotFound)
}

func InsufficientStock(format string, args ...any) *AppError {
	return NewAppError("INSUFFICIENT_STOCK", fmt.Sprintf(format, args...), http.StatusConflict, ErrInsufficientStock)
}

func InvalidCoupon(format string, args ...any) *AppError {
	return NewAppError("INVALID_COUPON", fmt.Sprintf(format, args...), http.StatusUnprocessableEntity, ErrInvalidCoupon)
}

func EmptyCart(format string, args ...any) *AppError {
	return NewAppError("EMPTY_CART", fmt.Sprintf(format, args...), http.StatusUnprocessableEntity, ErrEmptyCart)
}

func InstallmentLimitExceeded(format string, args ...any) *AppError {
	return NewAppError("INSTALLMENT_LIMIT_EXCEEDED", fmt.Sprintf(format, args...), http.StatusUnprocessableEntity, ErrInstallmentLimitExceeded)
}

func InvalidTransition(format string, args ...any) *AppError {
	return NewAppError("INVALID_TRANSITION", fmt.Sprintf(format, args...), http.StatusConflict, ErrInvalidTransition)
}
