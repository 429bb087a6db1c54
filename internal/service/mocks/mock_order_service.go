package mocks

import (
	"context"

	"artmarket/internal/model"
	"artmarket/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) list(args mock.Arguments) (*service.ListResult[model.Order], error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Order]), args.Error(1)
}

func (m *MockOrderService) Checkout(ctx context.Context, actor service.Actor, in service.CheckoutInput) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, in))
}

func (m *MockOrderService) Get(ctx context.Context, actor service.Actor, id string) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id))
}

func (m *MockOrderService) ListMine(ctx context.Context, actor service.Actor, limit, offset int) (*service.ListResult[model.Order], error) {
	return m.list(m.Called(ctx, actor, limit, offset))
}

func (m *MockOrderService) ListForSeller(ctx context.Context, actor service.Actor, limit, offset int) (*service.ListResult[model.Order], error) {
	return m.list(m.Called(ctx, actor, limit, offset))
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor service.Actor, id string, next model.OrderStatus) (*model.Order, error) {
	return m.order(m.Called(ctx, actor, id, next))
}
