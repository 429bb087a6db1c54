package mocks

import (
	"context"

	"artmarket/internal/model"
	"artmarket/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) product(args mock.Arguments) (*model.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, actor service.Actor, in service.ProductInput) (*model.Product, error) {
	return m.product(m.Called(ctx, actor, in))
}

func (m *MockProductService) Update(ctx context.Context, actor service.Actor, id string, in service.ProductInput) (*model.Product, error) {
	return m.product(m.Called(ctx, actor, id, in))
}

func (m *MockProductService) Publish(ctx context.Context, actor service.Actor, id string) (*model.Product, error) {
	return m.product(m.Called(ctx, actor, id))
}

func (m *MockProductService) Archive(ctx context.Context, actor service.Actor, id string) (*model.Product, error) {
	return m.product(m.Called(ctx, actor, id))
}

func (m *MockProductService) Get(ctx context.Context, viewer service.Actor, id string) (*model.Product, error) {
	return m.product(m.Called(ctx, viewer, id))
}

func (m *MockProductService) List(ctx context.Context, viewer service.Actor, f model.ProductFilter, limit, offset int) (*service.ListResult[model.Product], error) {
	args := m.Called(ctx, viewer, f, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Product]), args.Error(1)
}

func (m *MockProductService) UploadImage(ctx context.Context, actor service.Actor, id string, img service.ImageUpload) (*model.Product, error) {
	return m.product(m.Called(ctx, actor, id, img))
}

func (m *MockProductService) DeleteImage(ctx context.Context, actor service.Actor, id string, index int) (*model.Product, error) {
	return m.product(m.Called(ctx, actor, id, index))
}
