package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

// MockOrderRepository runs Transition callbacks against the order configured
// with On("Lock", id) and records whether a restock was requested.
type MockOrderRepository struct {
	mock.Mock
	Restocked bool
}

func (m *MockOrderRepository) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByBuyer(ctx context.Context, buyerID string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	args := m.Called(ctx, buyerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Order]), args.Error(1)
}

func (m *MockOrderRepository) ListBySeller(ctx context.Context, sellerID string, pq repository.PageQuery) (*repository.PageResult[model.Order], error) {
	args := m.Called(ctx, sellerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Order]), args.Error(1)
}

func (m *MockOrderRepository) Transition(_ context.Context, id string, fn repository.TransitionFunc) (*model.Order, error) {
	args := m.MethodCalled("Lock", id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	o := *args.Get(0).(*model.Order)
	restock, err := fn(&o)
	if err != nil {
		return nil, err
	}
	m.Restocked = restock
	return &o, nil
}
