package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates invalid user input.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates no authenticated actor.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage returns text suitable for API clients. Known domain errors
// keep their message; anything else collapses to a generic one.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return err.Error()
	}
	return "something went wrong, please try again"
}
