package services

import (
	"errors"
	"fmt"

	"github.com/confhub/proposal-service/internal/validator"
)

// ValidationErrors carries field-level validation failures up to the
// handlers, which render them as a 422 envelope.
type ValidationErrors = validator.ValidationErrors

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrFileNotFound     = errors.New("file not found")

	ErrDuplicateReview    = errors.New("proposal already reviewed by this reviewer")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// BusinessRuleError is a domain-conflict error (422) with context for
// the client.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

// PermissionError is a policy denial (403).
type PermissionError struct {
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %s", e.Action, e.Resource, e.Reason)
}

func newPermissionError(resource, action, reason string) *PermissionError {
	return &PermissionError{Resource: resource, Action: action, Reason: reason}
}
