// Package apperr defines the service error taxonomy and its HTTP mapping.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeNotFound             Code = "NOT_FOUND"
	CodeSubscriptionNotFound Code = "SUBSCRIPTION_NOT_FOUND"
	CodeUpgradeRequired      Code = "UPGRADE_REQUIRED"
	CodeQuotaExhausted       Code = "QUOTA_EXHAUSTED"
	CodeScoringUnavailable   Code = "SCORING_UNAVAILABLE"
	CodePersistence          Code = "PERSISTENCE_ERROR"
)

type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func SubscriptionNotFound() *Error {
	return &Error{Code: CodeSubscriptionNotFound, Status: http.StatusNotFound, Message: "Active subscription not found"}
}

func UpgradeRequired() *Error {
	return &Error{Code: CodeUpgradeRequired, Status: http.StatusUnauthorized, Message: "Please upgrade your plan to see the result"}
}

func QuotaExhausted(kind string) *Error {
	return &Error{Code: CodeQuotaExhausted, Status: http.StatusForbidden, Message: fmt.Sprintf("You have used all your %s quota", kind)}
}

// ScoringUnavailable wraps external-adapter failures. The cause stays
// server-side; callers see only a generic message.
func ScoringUnavailable(err error) *Error {
	return &Error{Code: CodeScoringUnavailable, Status: http.StatusBadGateway, Message: "Scoring is temporarily unavailable", Err: err}
}

func Persistence(err error) *Error {
	return &Error{Code: CodePersistence, Status: http.StatusInternalServerError, Message: "Failed to persist result", Err: err}
}

// As extracts an *Error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	if e, ok := As(err); ok {
		return e.Code == code
	}
	return false
}
