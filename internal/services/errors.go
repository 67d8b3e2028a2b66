package services

import "errors"

// Define common service errors
var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid state for operation")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict") // Duplicate or lost concurrent update
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Error kinds reported to API callers.
const (
	KindValidation     = "ValidationError"
	KindAuthorization  = "AuthorizationError"
	KindState          = "StateError"
	KindNotFound       = "NotFoundError"
	KindConflict       = "ConflictError"
	KindAuthentication = "AuthenticationError"
	KindInternal       = "InternalError"
)

// Kind names the error category of err.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.Is(err, ErrInvalidState):
		return KindState
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return KindAuthentication
	default:
		return KindInternal
	}
}
