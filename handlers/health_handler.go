package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// KeyCacheReporter reports the state of the signing key cache
type KeyCacheReporter interface {
	Stats() map[string]interface{}
}

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db     *sql.DB
	keys   KeyCacheReporter
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db and keys may be nil.
func NewHealthHandler(db *sql.DB, keys KeyCacheReporter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		keys:   keys,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz. The key cache is reported but never
// fails readiness.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]interface{}{"database": "healthy"}
	if h.keys != nil {
		checks["jwks"] = h.keys.Stats()
	}
	if err := h.checkDatabase(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		checks["database"] = "unhealthy"

		if werr := utils.WriteServiceUnavailable(w, "Service unavailable",
			map[string]interface{}{"checks": checks}); werr != nil {
			h.logger.Error("failed to write readiness response", zap.Error(werr))
		}
		return
	}

	if err := utils.WriteOK(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	if err := h.db.PingContext(ctx); err != nil {
		return err
	}

	var result int
	return h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
}
