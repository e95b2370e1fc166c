package middleware

import (
	"context"
	"net/http"

	"github.com/upb/coffee-shop/auth0"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating access tokens
type TokenValidator interface {
	// ValidateToken verifies a raw token and returns its claims
	ValidateToken(ctx context.Context, token string) (*auth0.Claims, error)
}

// ProtectedHandlerFunc is a handler that runs only after authorization succeeded.
// It receives the verified claims as its first argument.
type ProtectedHandlerFunc func(claims *auth0.Claims, w http.ResponseWriter, r *http.Request)

// AuthMiddleware gates handlers behind bearer token verification and permission checks
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// Require wraps next so it only runs for requests carrying a valid token that
// grants permission. An empty permission only requires a valid token.
func (m *AuthMiddleware) Require(permission string, next ProtectedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Authorize(r, permission)
		if err != nil {
			m.reject(w, r, permission, err)
			return
		}

		m.logger.Debug("authorization successful",
			zap.String("request_id", GetRequestIDFromContext(r.Context())),
			zap.String("sub", claims.Subject),
			zap.String("permission", permission))

		next(claims, w, r)
	}
}

// Authorize runs extraction, verification and the permission check for r
func (m *AuthMiddleware) Authorize(r *http.Request, permission string) (*auth0.Claims, error) {
	token, err := auth0.ExtractToken(r.Header)
	if err != nil {
		return nil, err
	}

	claims, err := m.validator.ValidateToken(r.Context(), token)
	if err != nil {
		return nil, err
	}

	if permission != "" {
		if err := auth0.CheckPermission(permission, claims); err != nil {
			return nil, err
		}
	}

	return claims, nil
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, permission string, err error) {
	requestID := GetRequestIDFromContext(r.Context())

	authErr, ok := auth0.AsAuthError(err)
	if !ok {
		m.logger.Error("authorization failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		if werr := utils.WriteInternalServerError(w, "Internal server error"); werr != nil {
			m.logger.Error("failed to write internal error response", zap.Error(werr))
		}
		return
	}

	m.logger.Warn("request rejected",
		zap.String("request_id", requestID),
		zap.String("code", authErr.Code),
		zap.Int("status", authErr.StatusCode),
		zap.String("permission", permission))

	if werr := utils.WriteError(w, authErr.StatusCode, authErr.Code, authErr.Description, nil); werr != nil {
		m.logger.Error("failed to write auth error response", zap.Error(werr))
	}
}
