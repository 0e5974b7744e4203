package apperrors

import "fmt"

// AuthError means the request carried no valid bearer identity.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

func IsAuthError(err error) (*AuthError, bool) {
	if ae, ok := err.(*AuthError); ok {
		return ae, true
	}
	return nil, false
}

// ValidationError means the request is missing or carries malformed fields.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func NewFieldValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) (*ValidationError, bool) {
	if ve, ok := err.(*ValidationError); ok {
		return ve, true
	}
	return nil, false
}

// NotFoundError means a referenced record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	if nf, ok := err.(*NotFoundError); ok {
		return nf, true
	}
	return nil, false
}

// UpstreamError means an external collaborator (fiscal authority, file host)
// failed. Terminal for the request; no retry is attempted.
type UpstreamError struct {
	Provider string
	Message  string
	Cause    error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

func NewUpstreamError(provider, message string, cause error) *UpstreamError {
	return &UpstreamError{Provider: provider, Message: message, Cause: cause}
}

func IsUpstreamError(err error) (*UpstreamError, bool) {
	if ue, ok := err.(*UpstreamError); ok {
		return ue, true
	}
	return nil, false
}

// SizeLimitError means a generated document exceeded the storage field ceiling.
// Kept distinct from generic write failures so callers can tell them apart.
type SizeLimitError struct {
	Size  int
	Limit int
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("document size %d exceeds limit %d", e.Size, e.Limit)
}

func NewSizeLimitError(size, limit int) *SizeLimitError {
	return &SizeLimitError{Size: size, Limit: limit}
}

func IsSizeLimitError(err error) (*SizeLimitError, bool) {
	if se, ok := err.(*SizeLimitError); ok {
		return se, true
	}
	return nil, false
}
