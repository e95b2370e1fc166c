package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/coffee-shop/internal/observability"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// Timeout cancels the request context after timeout. If the handler returns
// on the deadline without writing a response, a 504 error envelope is sent.
// Handlers must watch ctx.Done() for this to take effect.
func Timeout(timeout time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if !errors.Is(ctx.Err(), context.DeadlineExceeded) || ww.Status() != 0 {
				return
			}

			reqLogger := observability.FromContext(r.Context(), logger)
			reqLogger.Warn("request timed out", zap.Duration("timeout", timeout))
			if err := utils.WriteGatewayTimeout(w, ""); err != nil {
				reqLogger.Error("failed to write timeout response", zap.Error(err))
			}
		})
	}
}
