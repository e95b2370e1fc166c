package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/coffee-shop/auth0"
	"github.com/upb/coffee-shop/internal/observability"
	"github.com/upb/coffee-shop/models"
	"github.com/upb/coffee-shop/services"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// DrinkService defines the drink operations the handlers depend on
type DrinkService interface {
	ListDrinks(ctx context.Context) ([]*models.Drink, error)
	CreateDrink(ctx context.Context, req services.CreateDrinkRequest) (*models.Drink, error)
	UpdateDrink(ctx context.Context, id uuid.UUID, req services.UpdateDrinkRequest) (*models.Drink, error)
	DeleteDrink(ctx context.Context, id uuid.UUID) error
}

// DrinkHandler handles drink menu HTTP requests
type DrinkHandler struct {
	service DrinkService
	logger  *zap.Logger
}

// NewDrinkHandler creates a new DrinkHandler
func NewDrinkHandler(service DrinkService, logger *zap.Logger) *DrinkHandler {
	return &DrinkHandler{
		service: service,
		logger:  logger,
	}
}

// HandleListDrinks handles GET /drinks. It is public and returns the short representation.
func (h *DrinkHandler) HandleListDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.service.ListDrinks(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	short := make([]models.DrinkShort, 0, len(drinks))
	for _, d := range drinks {
		short = append(short, d.Short())
	}

	if err := utils.WriteOK(w, map[string]interface{}{"drinks": short}); err != nil {
		h.logger.Error("failed to write drinks response", zap.Error(err))
	}
}

// HandleListDrinksDetail handles GET /drinks-detail
func (h *DrinkHandler) HandleListDrinksDetail(claims *auth0.Claims, w http.ResponseWriter, r *http.Request) {
	drinks, err := h.service.ListDrinks(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeLong(w, drinks)
}

// HandleCreateDrink handles POST /drinks
func (h *DrinkHandler) HandleCreateDrink(claims *auth0.Claims, w http.ResponseWriter, r *http.Request) {
	var req services.CreateDrinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	drink, err := h.service.CreateDrink(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	observability.FromContext(r.Context(), h.logger).Info("drink added to menu",
		zap.String("sub", claims.Subject),
		zap.String("drink_id", drink.ID.String()))

	h.writeLong(w, []*models.Drink{drink})
}

// HandleUpdateDrink handles PATCH /drinks/{id}
func (h *DrinkHandler) HandleUpdateDrink(claims *auth0.Claims, w http.ResponseWriter, r *http.Request) {
	id, ok := h.drinkID(w, r)
	if !ok {
		return
	}

	var req services.UpdateDrinkRequest
	if !h.decode(w, r, &req) {
		return
	}

	drink, err := h.service.UpdateDrink(r.Context(), id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.writeLong(w, []*models.Drink{drink})
}

// HandleDeleteDrink handles DELETE /drinks/{id}
func (h *DrinkHandler) HandleDeleteDrink(claims *auth0.Claims, w http.ResponseWriter, r *http.Request) {
	id, ok := h.drinkID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDrink(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	observability.FromContext(r.Context(), h.logger).Info("drink removed from menu",
		zap.String("sub", claims.Subject),
		zap.String("drink_id", id.String()))

	if err := utils.WriteOK(w, map[string]interface{}{"delete": id.String()}); err != nil {
		h.logger.Error("failed to write delete response", zap.Error(err))
	}
}

func (h *DrinkHandler) writeLong(w http.ResponseWriter, drinks []*models.Drink) {
	long := make([]models.DrinkLong, 0, len(drinks))
	for _, d := range drinks {
		long = append(long, d.Long())
	}

	if err := utils.WriteOK(w, map[string]interface{}{"drinks": long}); err != nil {
		h.logger.Error("failed to write drinks response", zap.Error(err))
	}
}

// drinkID parses the {id} URL parameter. A malformed id cannot name an
// existing drink, so it is reported as not found.
func (h *DrinkHandler) drinkID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteNotFound(w, services.ErrDrinkNotFound.Message)
		return uuid.Nil, false
	}
	return id, true
}

func (h *DrinkHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		observability.FromContext(r.Context(), h.logger).Debug("invalid request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}
