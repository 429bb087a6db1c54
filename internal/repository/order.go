package repository

import (
	"context"

	"artmarket/internal/model"
)

// TransitionFunc validates a status change on a locked order. When restock is
// true the quantities of its items are returned to their products.
type TransitionFunc func(o *model.Order) (restock bool, err error)

// OrderRepository persists orders with their items.
type OrderRepository interface {
	// Create inserts the order and its items, decrementing product stock in the
	// same transaction. It returns ErrOutOfStock if any product lacks stock, in
	// which case nothing is written. Products reaching zero stock become sold.
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID string, pq PageQuery) (*PageResult[model.Order], error)
	ListBySeller(ctx context.Context, sellerID string, pq PageQuery) (*PageResult[model.Order], error)
	Transition(ctx context.Context, id string, fn TransitionFunc) (*model.Order, error)
}
