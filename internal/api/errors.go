package api

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "bad request"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "forbidden"}
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "not found"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "conflict"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "internal server error"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "invalid username or password"}
	ErrUsernameTaken      = &AppError{Code: http.StatusConflict, Message: "username already exists"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "invalid or expired token"}
	ErrValidation         = &AppError{Code: http.StatusBadRequest, Message: "validation error"}

	// ErrQuotaExceeded is recoverable and user-visible: no retry today.
	ErrQuotaExceeded = &AppError{Code: http.StatusTooManyRequests, Message: "you have reached the maximum allowed number of calls for today, please try again tomorrow"}
	// ErrQuotaUnavailable covers quota-store outages: the gate fails closed.
	ErrQuotaUnavailable = &AppError{Code: http.StatusServiceUnavailable, Message: "service temporarily unavailable, please try again"}
	// ErrProviderFailure is an opaque upstream failure, surfaced without retry.
	ErrProviderFailure = &AppError{Code: http.StatusBadGateway, Message: "request failed"}

	ErrWeakPassword = &AppError{Code: http.StatusBadRequest, Message: `password must be at least 8 characters and include an uppercase letter, a lowercase letter, a digit and a special character (!@#$%^&*(),.?":{}|<>)`}
)

func NewBadRequestError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: msg}
}

func NewValidationError(msg string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: msg}
}

func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSONErrorMessage(w, appErr.Code, appErr.Message)
		return
	}
	JSONErrorMessage(w, http.StatusInternalServerError, "internal server error")
}
