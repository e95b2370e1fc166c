package services

import (
	"context"

	"github.com/upb/coffee-shop/repositories"
)

// WithTransactionResult runs fn inside a transaction and returns its result.
// The transaction commits when fn returns nil and rolls back otherwise.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	err := txMgr.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		var err error
		result, err = fn(txCtx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
