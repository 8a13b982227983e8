package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for fault classification.
// Use errors.Is() to check against these.
var (
	ErrConflict      = errors.New("concurrency conflict")
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("authorization required")
	ErrNotFound      = errors.New("not found")
	ErrGateway       = errors.New("gateway request failed")
)

// FaultType distinguishes the recovery strategy a caller should take.
type FaultType string

const (
	// FaultConflict marks a stale concurrency token. The sync core retries
	// it once automatically; a surfaced conflict means the retry also failed.
	FaultConflict FaultType = "conflict"
	// FaultValidation marks input the server rejected. Never retried.
	FaultValidation FaultType = "validation"
	// FaultAuthorization marks a missing associate or manager permission.
	FaultAuthorization FaultType = "authorization"
	// FaultNotFound marks a missing resource.
	FaultNotFound FaultType = "not-found"
	// FaultGateway marks transport or upstream failures. Treated like
	// validation (no retry) since the client cannot tell what happened.
	FaultGateway FaultType = "gateway"
)

// Fault is the structured error every basket operation surfaces.
// Implements error and supports unwrapping to the sentinels above.
type Fault struct {
	Type    FaultType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", f.Type, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Type, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// UserMessage returns the server-supplied message when present, otherwise a
// generic one. Faults shown to associates must never be empty.
func (f *Fault) UserMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return "the operation could not be completed"
}

// NewConflictFault creates a fault for a stale concurrency token.
func NewConflictFault(message string) *Fault {
	if message == "" {
		message = "basket was modified by another channel"
	}
	return &Fault{Type: FaultConflict, Code: "CONFLICT", Message: message, Err: ErrConflict}
}

// NewValidationFault creates a fault for server-rejected input.
func NewValidationFault(field, reason string) *Fault {
	return &Fault{
		Type:    FaultValidation,
		Code:    "VALIDATION",
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Err:     ErrValidation,
	}
}

// NewAuthorizationFault creates a fault naming the permission that was missing.
func NewAuthorizationFault(permission string) *Fault {
	return &Fault{
		Type:    FaultAuthorization,
		Code:    "AUTHORIZATION",
		Message: fmt.Sprintf("%s permission required", permission),
		Err:     ErrAuthorization,
	}
}

// NewNotFoundFault creates a fault for a missing resource.
func NewNotFoundFault(resource string) *Fault {
	return &Fault{
		Type:    FaultNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Err:     ErrNotFound,
	}
}

// NewGatewayFault creates a fault for transport or upstream failures.
func NewGatewayFault(err error) *Fault {
	return &Fault{
		Type:    FaultGateway,
		Code:    "GATEWAY",
		Message: "commerce gateway request failed",
		Err:     fmt.Errorf("%w: %v", ErrGateway, err),
	}
}

// IsConflict reports whether err is a conflict fault anywhere in its chain.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
