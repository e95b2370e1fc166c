package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/coffee-shop/models"
)

var (
	// ErrNotFound is returned when no row matches the lookup
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// DrinkRepository handles drink data operations
type DrinkRepository interface {
	// List retrieves all drinks ordered by creation time
	List(ctx context.Context) ([]*models.Drink, error)

	// GetByID retrieves a drink by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Drink, error)

	// Create creates a new drink
	Create(ctx context.Context, drink *models.Drink) error

	// Update updates title and recipe of a drink
	Update(ctx context.Context, drink *models.Drink) error

	// Delete deletes a drink
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Drinks DrinkRepository
}
