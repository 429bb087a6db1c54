package repository

import (
	"context"

	"artmarket/internal/model"
)

// ProductMutateFunc changes a locked product. Returning an error aborts the
// transaction and nothing is written.
type ProductMutateFunc func(p *model.Product) error

// ProductRepository persists artworks. Callback methods hold a row lock on the
// product while fn runs, so checkout and settlement writes to stock and status
// wait for them instead of being overwritten.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	// List returns products matching f, newest first.
	List(ctx context.Context, f model.ProductFilter, pq PageQuery) (*PageResult[model.Product], error)
	// Mutate locks the product, runs fn and stores its listing fields, stock and
	// status. Image keys are left untouched.
	Mutate(ctx context.Context, id string, fn ProductMutateFunc) (*model.Product, error)
	// UpdateImages locks the product, runs fn and stores only its image keys.
	UpdateImages(ctx context.Context, id string, fn ProductMutateFunc) (*model.Product, error)
}
