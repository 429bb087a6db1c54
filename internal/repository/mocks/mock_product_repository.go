package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

type MockProductRepository struct {
	mock.Mock
	Saved []model.Product
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f model.ProductFilter, pq repository.PageQuery) (*repository.PageResult[model.Product], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Product]), args.Error(1)
}

// Mutate and UpdateImages run fn against a copy of the product returned by
// On("Lock", id). The changed product is recorded in Saved.
func (m *MockProductRepository) Mutate(_ context.Context, id string, fn repository.ProductMutateFunc) (*model.Product, error) {
	return m.withLock("Mutate", id, fn)
}

func (m *MockProductRepository) UpdateImages(_ context.Context, id string, fn repository.ProductMutateFunc) (*model.Product, error) {
	return m.withLock("UpdateImages", id, fn)
}

func (m *MockProductRepository) withLock(method, id string, fn repository.ProductMutateFunc) (*model.Product, error) {
	args := m.MethodCalled("Lock", id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	p := *args.Get(0).(*model.Product)
	p.ImageKeys = append([]string(nil), p.ImageKeys...)
	if err := fn(&p); err != nil {
		return nil, err
	}
	if err := m.MethodCalled(method, id).Error(0); err != nil {
		return nil, err
	}
	m.Saved = append(m.Saved, p)
	return &p, nil
}
