package repository

import (
	"context"

	"artmarket/internal/model"
)

type ExchangeRateRepository interface {
	List(ctx context.Context) ([]model.ExchangeRate, error)
	Get(ctx context.Context, currency string) (*model.ExchangeRate, error)
	Upsert(ctx context.Context, r *model.ExchangeRate) (*model.ExchangeRate, error)
	Delete(ctx context.Context, currency string) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, s *model.Settings) (*model.Settings, error)
}

type ShippingCountryRepository interface {
	List(ctx context.Context, enabledOnly bool) ([]model.ShippingCountry, error)
	Get(ctx context.Context, code string) (*model.ShippingCountry, error)
	Upsert(ctx context.Context, c *model.ShippingCountry) (*model.ShippingCountry, error)
	Delete(ctx context.Context, code string) error
}

type BannerRepository interface {
	// List returns banners ordered by position.
	List(ctx context.Context, activeOnly bool) ([]model.Banner, error)
	FindByID(ctx context.Context, id string) (*model.Banner, error)
	Create(ctx context.Context, b *model.Banner) (*model.Banner, error)
	Update(ctx context.Context, b *model.Banner) (*model.Banner, error)
	Delete(ctx context.Context, id string) error
}

type SocialPostRepository interface {
	Create(ctx context.Context, p *model.SocialPost) (*model.SocialPost, error)
	ListByProduct(ctx context.Context, productID string) ([]model.SocialPost, error)
}
