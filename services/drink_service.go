package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/upb/coffee-shop/models"
	"github.com/upb/coffee-shop/repositories"
	"github.com/upb/coffee-shop/utils"
	"go.uber.org/zap"
)

// CreateDrinkRequest is the body of POST /drinks
type CreateDrinkRequest struct {
	Title  string        `json:"title" validate:"notblank,max=80"`
	Recipe models.Recipe `json:"recipe" validate:"required,min=1,dive"`
}

// UpdateDrinkRequest is the body of PATCH /drinks/{id}; absent fields are left unchanged
type UpdateDrinkRequest struct {
	Title  *string       `json:"title,omitempty"`
	Recipe models.Recipe `json:"recipe,omitempty"`
}

// DrinkService implements the drink menu use cases
type DrinkService struct {
	drinks repositories.DrinkRepository
	txMgr  repositories.TransactionManager
	logger *zap.Logger
}

// NewDrinkService creates a new DrinkService
func NewDrinkService(drinks repositories.DrinkRepository, txMgr repositories.TransactionManager, logger *zap.Logger) *DrinkService {
	return &DrinkService{
		drinks: drinks,
		txMgr:  txMgr,
		logger: logger,
	}
}

// ListDrinks returns every drink on the menu
func (s *DrinkService) ListDrinks(ctx context.Context) ([]*models.Drink, error) {
	drinks, err := s.drinks.List(ctx)
	if err != nil {
		return nil, WrapInternal("failed to list drinks", err)
	}
	return drinks, nil
}

// CreateDrink validates req and stores a new drink
func (s *DrinkService) CreateDrink(ctx context.Context, req CreateDrinkRequest) (*models.Drink, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	drink := models.NewDrink(req.Title, req.Recipe)
	if err := s.drinks.Create(ctx, drink); err != nil {
		return nil, s.mapRepositoryError("failed to create drink", err)
	}

	s.logger.Info("drink created",
		zap.String("id", drink.ID.String()),
		zap.String("title", drink.Title))

	return drink, nil
}

// UpdateDrink applies req to the drink with the given id
func (s *DrinkService) UpdateDrink(ctx context.Context, id uuid.UUID, req UpdateDrinkRequest) (*models.Drink, error) {
	if req.Title == nil && req.Recipe == nil {
		return nil, NewDomainError(ErrorTypeValidation, "Validation failed", nil).
			WithDetail("body", "title or recipe is required")
	}

	drink, err := WithTransactionResult(ctx, s.txMgr, func(ctx context.Context) (*models.Drink, error) {
		drink, err := s.drinks.GetByID(ctx, id)
		if err != nil {
			return nil, s.mapRepositoryError("failed to load drink", err)
		}

		merged := CreateDrinkRequest{Title: drink.Title, Recipe: drink.Recipe}
		if req.Title != nil {
			merged.Title = *req.Title
		}
		if req.Recipe != nil {
			merged.Recipe = req.Recipe
		}
		if err := validate(&merged); err != nil {
			return nil, err
		}

		drink.Title = merged.Title
		drink.Recipe = merged.Recipe
		drink.UpdatedAt = time.Now()

		if err := s.drinks.Update(ctx, drink); err != nil {
			return nil, s.mapRepositoryError("failed to update drink", err)
		}
		return drink, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("drink updated", zap.String("id", id.String()))
	return drink, nil
}

// DeleteDrink removes the drink with the given id
func (s *DrinkService) DeleteDrink(ctx context.Context, id uuid.UUID) error {
	if err := s.drinks.Delete(ctx, id); err != nil {
		return s.mapRepositoryError("failed to delete drink", err)
	}

	s.logger.Info("drink deleted", zap.String("id", id.String()))
	return nil
}

func (s *DrinkService) mapRepositoryError(message string, err error) error {
	var domainErr *DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return NewDomainError(ErrorTypeNotFound, ErrDrinkNotFound.Message, err)
	case errors.Is(err, repositories.ErrDuplicate):
		return NewDomainError(ErrorTypeConflict, ErrDuplicateTitle.Message, err)
	default:
		return WrapInternal(message, err)
	}
}

func validate(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		domainErr := NewDomainError(ErrorTypeValidation, "Validation failed", err)
		for field, msg := range utils.GetValidationFields(err) {
			domainErr.WithDetail(field, msg)
		}
		return domainErr
	}
	return nil
}
