package mocks

import (
	"context"

	"artmarket/internal/model"
	"artmarket/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListRates(ctx context.Context) ([]model.ExchangeRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExchangeRate), args.Error(1)
}

func (m *MockCatalogService) UpsertRate(ctx context.Context, actor service.Actor, currency string, rate float64) (*model.ExchangeRate, error) {
	args := m.Called(ctx, actor, currency, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExchangeRate), args.Error(1)
}

func (m *MockCatalogService) DeleteRate(ctx context.Context, actor service.Actor, currency string) error {
	return m.Called(ctx, actor, currency).Error(0)
}

func (m *MockCatalogService) Settings(ctx context.Context) (*model.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settings), args.Error(1)
}

func (m *MockCatalogService) PublicSettings(ctx context.Context) (*service.PublicSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicSettings), args.Error(1)
}

func (m *MockCatalogService) UpdateSettings(ctx context.Context, actor service.Actor, in service.SettingsInput) (*model.Settings, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settings), args.Error(1)
}

func (m *MockCatalogService) ListShipping(ctx context.Context, enabledOnly bool) ([]model.ShippingCountry, error) {
	args := m.Called(ctx, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShippingCountry), args.Error(1)
}

func (m *MockCatalogService) UpsertShipping(ctx context.Context, actor service.Actor, in service.ShippingInput) (*model.ShippingCountry, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShippingCountry), args.Error(1)
}

func (m *MockCatalogService) DeleteShipping(ctx context.Context, actor service.Actor, code string) error {
	return m.Called(ctx, actor, code).Error(0)
}

func (m *MockCatalogService) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Banner), args.Error(1)
}

func (m *MockCatalogService) CreateBanner(ctx context.Context, actor service.Actor, in service.BannerInput, img service.ImageUpload) (*model.Banner, error) {
	args := m.Called(ctx, actor, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Banner), args.Error(1)
}

func (m *MockCatalogService) UpdateBanner(ctx context.Context, actor service.Actor, id string, in service.BannerInput, img *service.ImageUpload) (*model.Banner, error) {
	args := m.Called(ctx, actor, id, in, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Banner), args.Error(1)
}

func (m *MockCatalogService) DeleteBanner(ctx context.Context, actor service.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}
