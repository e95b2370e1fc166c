package auth0

import (
	"net/http"
	"strings"
)

// ExtractToken pulls the bearer token out of the Authorization header.
// Only "Bearer <token>" is accepted; the scheme is matched case-insensitively.
func ExtractToken(h http.Header) (string, error) {
	authHeader := h.Get("Authorization")
	if strings.TrimSpace(authHeader) == "" {
		return "", errHeaderMissing()
	}

	parts := strings.Fields(authHeader)
	if !strings.EqualFold(parts[0], "bearer") {
		return "", errHeaderInvalid("Authorization header must start with 'Bearer'.")
	}

	switch {
	case len(parts) == 1:
		return "", errHeaderInvalid("Token not found.")
	case len(parts) > 2:
		return "", errHeaderInvalid("Authorization header must be bearer token.")
	}

	return parts[1], nil
}
