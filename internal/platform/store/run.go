package store

import "context"

// RunInOwner wraps ctx with owner and calls fn inside the provided TxRunner
func RunInOwner(ctx context.Context, tx TxRunner, ownerID string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithOwner(ctx, ownerID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

// RunAsSuperadmin wraps ctx as superadmin and calls fn inside the provided TxRunner
func RunAsSuperadmin(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithSuperadmin(ctx)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
