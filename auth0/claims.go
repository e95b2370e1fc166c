package auth0

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the claims of an access token issued by the identity provider
type Claims struct {
	jwt.RegisteredClaims
	Permissions     []string `json:"permissions,omitempty"`
	Scope           string   `json:"scope,omitempty"`
	AuthorizedParty string   `json:"azp,omitempty"`
}

// HasPermission reports whether the permissions claim contains permission
func (c *Claims) HasPermission(permission string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission fails with insufficient_permissions unless claims grant required.
// Public endpoints must not call it.
func CheckPermission(required string, claims *Claims) error {
	if claims == nil || len(claims.Permissions) == 0 || !claims.HasPermission(required) {
		return errInsufficientPermissions()
	}
	return nil
}
