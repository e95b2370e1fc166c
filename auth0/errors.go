package auth0

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to clients in the "code" field of the error envelope
const (
	CodeHeaderMissing           = "authorization_header_missing"
	CodeHeaderInvalid           = "authorization_header_invalid"
	CodeInvalidHeader           = "invalid_header"
	CodeInvalidClaims           = "invalid_claims"
	CodeTokenExpired            = "token_expired"
	CodeInsufficientPermissions = "insufficient_permissions"
)

var (
	// ErrJWKSFetchFailed is returned when the key set cannot be fetched or decoded.
	// It is not an AuthError: callers surface it as a server fault.
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// AuthError is a credential failure with a fixed HTTP status
type AuthError struct {
	Code        string
	Description string
	StatusCode  int
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is reports whether target is an AuthError with the same code
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAuthError creates a new AuthError
func NewAuthError(code, description string, status int) *AuthError {
	return &AuthError{
		Code:        code,
		Description: description,
		StatusCode:  status,
	}
}

// AsAuthError extracts an AuthError from an error chain
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

func errHeaderMissing() *AuthError {
	return NewAuthError(CodeHeaderMissing, "Authorization header is expected.", http.StatusUnauthorized)
}

func errHeaderInvalid(description string) *AuthError {
	return NewAuthError(CodeHeaderInvalid, description, http.StatusUnauthorized)
}

func errInvalidHeader() *AuthError {
	return NewAuthError(CodeInvalidHeader, "Unable to parse authentication token.", http.StatusBadRequest)
}

func errInvalidClaims() *AuthError {
	return NewAuthError(CodeInvalidClaims, "Incorrect claims. Please, check the audience and issuer.", http.StatusUnauthorized)
}

func errTokenExpired() *AuthError {
	return NewAuthError(CodeTokenExpired, "Token expired.", http.StatusUnauthorized)
}

func errInsufficientPermissions() *AuthError {
	return NewAuthError(CodeInsufficientPermissions, "You do not have enough permissions to perform the operation.", http.StatusForbidden)
}
