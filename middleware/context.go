package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// Context key type to avoid collisions
type contextKey string

// RequestIDKey is the context key for a request ID set outside chi
const RequestIDKey contextKey = "request_id"

// GetRequestIDFromContext retrieves the request ID from context.
// The ID stored by RequestID (or chi's middleware of the same name) takes precedence.
func GetRequestIDFromContext(ctx context.Context) string {
	if requestID := chimiddleware.GetReqID(ctx); requestID != "" {
		return requestID
	}
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID reuses the caller's X-Request-ID or assigns a random UUID. The ID is
// stored where chi's middleware.GetReqID finds it and echoed in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
