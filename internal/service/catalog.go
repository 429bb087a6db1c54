package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"artmarket/internal/model"
	"artmarket/internal/pricing"
	"artmarket/internal/repository"
	"artmarket/internal/storage"
)

// SettingsInput is a partial settings update; nil fields are left unchanged.
type SettingsInput struct {
	BaseCurrency         *string  `json:"base_currency"`
	AntiSnipeWindowSec   *int     `json:"anti_snipe_window_sec"`
	AuctionExtensionSec  *int     `json:"auction_extension_sec"`
	DefaultCommissionPct *float64 `json:"default_commission_pct"`
	SocialAutoPost       *bool    `json:"social_auto_post"`
	MaintenanceMode      *bool    `json:"maintenance_mode"`
}

func (in *SettingsInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.BaseCurrency, validation.NilOrNotEmpty, is.CurrencyCode),
		validation.Field(&in.AntiSnipeWindowSec, validation.Min(0), validation.Max(3600)),
		validation.Field(&in.AuctionExtensionSec, validation.Min(0), validation.Max(3600)),
		validation.Field(&in.DefaultCommissionPct, validation.By(func(v any) error {
			if f, ok := v.(*float64); ok && f != nil {
				return pricing.ValidatePercent(*f)
			}
			return nil
		})),
	)
}

// PublicSettings is the subset of settings exposed to anonymous clients.
type PublicSettings struct {
	BaseCurrency        string `json:"base_currency"`
	AntiSnipeWindowSec  int    `json:"anti_snipe_window_sec"`
	AuctionExtensionSec int    `json:"auction_extension_sec"`
	MaintenanceMode     bool   `json:"maintenance_mode"`
}

type ShippingInput struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	CostCents int64  `json:"cost_cents"`
	Enabled   bool   `json:"enabled"`
}

func (in *ShippingInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Code, validation.Required, is.CountryCode2),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.CostCents, validation.Min(0)),
	)
}

type BannerInput struct {
	Title    string `json:"title"`
	LinkURL  string `json:"link_url"`
	Position int    `json:"position"`
	Active   bool   `json:"active"`
}

func (in *BannerInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.LinkURL, is.URL),
		validation.Field(&in.Position, validation.Min(0)),
	)
}

// CatalogService manages the admin-owned reference data: exchange rates,
// site settings, shipping destinations and home-page banners.
type CatalogService interface {
	ListRates(ctx context.Context) ([]model.ExchangeRate, error)
	// UpsertRate stores units of currency per one unit of the base currency.
	UpsertRate(ctx context.Context, actor Actor, currency string, rate float64) (*model.ExchangeRate, error)
	DeleteRate(ctx context.Context, actor Actor, currency string) error

	Settings(ctx context.Context) (*model.Settings, error)
	PublicSettings(ctx context.Context) (*PublicSettings, error)
	UpdateSettings(ctx context.Context, actor Actor, in SettingsInput) (*model.Settings, error)

	ListShipping(ctx context.Context, enabledOnly bool) ([]model.ShippingCountry, error)
	UpsertShipping(ctx context.Context, actor Actor, in ShippingInput) (*model.ShippingCountry, error)
	DeleteShipping(ctx context.Context, actor Actor, code string) error

	ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error)
	CreateBanner(ctx context.Context, actor Actor, in BannerInput, img ImageUpload) (*model.Banner, error)
	// UpdateBanner replaces the banner fields and, when img is non-nil, its image.
	UpdateBanner(ctx context.Context, actor Actor, id string, in BannerInput, img *ImageUpload) (*model.Banner, error)
	// DeleteBanner removes the banner and then its stored image.
	DeleteBanner(ctx context.Context, actor Actor, id string) error
}

// CatalogDeps groups the collaborators of the catalog service.
type CatalogDeps struct {
	Rates         repository.ExchangeRateRepository
	Settings      repository.SettingsRepository
	Shipping      repository.ShippingCountryRepository
	Banners       repository.BannerRepository
	Storage       storage.Storage
	PresignExpiry time.Duration
	Logger        *zap.Logger
}

type catalogService struct {
	rates    repository.ExchangeRateRepository
	settings repository.SettingsRepository
	shipping repository.ShippingCountryRepository
	banners  repository.BannerRepository
	store    storage.Storage
	urls     presigner
	log      *zap.Logger
	now      func() time.Time
}

func NewCatalogService(d CatalogDeps) CatalogService {
	return &catalogService{
		rates:    d.Rates,
		settings: d.Settings,
		shipping: d.Shipping,
		banners:  d.Banners,
		store:    d.Storage,
		urls:     presigner{store: d.Storage, expiry: d.PresignExpiry, log: d.Logger},
		log:      d.Logger,
		now:      time.Now,
	}
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *catalogService) ListRates(ctx context.Context) ([]model.ExchangeRate, error) {
	return s.rates.List(ctx)
}

func (s *catalogService) baseCurrency(ctx context.Context) (string, error) {
	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return "", err
	}
	return settings.BaseCurrency, nil
}

func (s *catalogService) UpsertRate(ctx context.Context, actor Actor, currency string, rate float64) (*model.ExchangeRate, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if err := validation.Validate(currency, validation.Required, is.CurrencyCode); err != nil {
		return nil, fmt.Errorf("%w: currency: %v", ErrInvalidInput, err)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be greater than zero", ErrInvalidInput)
	}
	base, err := s.baseCurrency(ctx)
	if err != nil {
		return nil, err
	}
	if currency == base {
		return nil, fmt.Errorf("%w: the base currency always has rate 1", ErrInvalidInput)
	}

	r, err := s.rates.Upsert(ctx, &model.ExchangeRate{Currency: currency, Rate: rate, UpdatedAt: s.now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("upsert rate: %w", err)
	}
	s.log.Info("exchange_rate_updated", zap.String("currency", currency), zap.Float64("rate", rate))
	return r, nil
}

func (s *catalogService) DeleteRate(ctx context.Context, actor Actor, currency string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return ErrIDRequired
	}
	base, err := s.baseCurrency(ctx)
	if err != nil {
		return err
	}
	if currency == base {
		return fmt.Errorf("%w: the base currency cannot be deleted", ErrConflict)
	}
	return notFound(s.rates.Delete(ctx, currency))
}

func (s *catalogService) Settings(ctx context.Context) (*model.Settings, error) {
	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *catalogService) PublicSettings(ctx context.Context) (*PublicSettings, error) {
	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	return &PublicSettings{
		BaseCurrency:        settings.BaseCurrency,
		AntiSnipeWindowSec:  settings.AntiSnipeWindowSec,
		AuctionExtensionSec: settings.AuctionExtensionSec,
		MaintenanceMode:     settings.MaintenanceMode,
	}, nil
}

func (s *catalogService) UpdateSettings(ctx context.Context, actor Actor, in SettingsInput) (*model.Settings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.BaseCurrency != nil {
		upper := strings.ToUpper(strings.TrimSpace(*in.BaseCurrency))
		in.BaseCurrency = &upper
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	cur, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	if in.BaseCurrency != nil {
		cur.BaseCurrency = *in.BaseCurrency
	}
	if in.AntiSnipeWindowSec != nil {
		cur.AntiSnipeWindowSec = *in.AntiSnipeWindowSec
	}
	if in.AuctionExtensionSec != nil {
		cur.AuctionExtensionSec = *in.AuctionExtensionSec
	}
	if in.DefaultCommissionPct != nil {
		cur.DefaultCommissionPct = *in.DefaultCommissionPct
	}
	if in.SocialAutoPost != nil {
		cur.SocialAutoPost = *in.SocialAutoPost
	}
	if in.MaintenanceMode != nil {
		cur.MaintenanceMode = *in.MaintenanceMode
	}
	cur.UpdatedAt = s.now().UTC()

	updated, err := s.settings.Update(ctx, &cur)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	s.log.Info("settings_updated",
		zap.String("actor_id", actor.UserID),
		zap.String("base_currency", updated.BaseCurrency),
		zap.Bool("maintenance_mode", updated.MaintenanceMode),
	)
	return updated, nil
}

func (s *catalogService) ListShipping(ctx context.Context, enabledOnly bool) ([]model.ShippingCountry, error) {
	return s.shipping.List(ctx, enabledOnly)
}

func (s *catalogService) UpsertShipping(ctx context.Context, actor Actor, in ShippingInput) (*model.ShippingCountry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	c, err := s.shipping.Upsert(ctx, &model.ShippingCountry{
		Code:      in.Code,
		Name:      in.Name,
		CostCents: in.CostCents,
		Enabled:   in.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert shipping country: %w", err)
	}
	return c, nil
}

func (s *catalogService) DeleteShipping(ctx context.Context, actor Actor, code string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ErrIDRequired
	}
	return notFound(s.shipping.Delete(ctx, code))
}

func (s *catalogService) withURL(ctx context.Context, b *model.Banner) *model.Banner {
	b.ImageURL = s.urls.url(ctx, b.ImageKey)
	return b
}

func (s *catalogService) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	banners, err := s.banners.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range banners {
		s.withURL(ctx, &banners[i])
	}
	return banners, nil
}

func (s *catalogService) CreateBanner(ctx context.Context, actor Actor, in BannerInput, img ImageUpload) (*model.Banner, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	id := uuid.NewString()
	key, err := putImage(ctx, s.store, img, "banners", id)
	if err != nil {
		return nil, err
	}
	created, err := s.banners.Create(ctx, &model.Banner{
		ID:        id,
		Title:     in.Title,
		ImageKey:  key,
		LinkURL:   in.LinkURL,
		Position:  in.Position,
		Active:    in.Active,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, rollbackImage(ctx, s.store, key, err)
	}
	return s.withURL(ctx, created), nil
}

func (s *catalogService) UpdateBanner(ctx context.Context, actor Actor, id string, in BannerInput, img *ImageUpload) (*model.Banner, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	b, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	previous := b.ImageKey
	if img != nil {
		key, err := putImage(ctx, s.store, *img, "banners", b.ID)
		if err != nil {
			return nil, err
		}
		b.ImageKey = key
	}
	b.Title = in.Title
	b.LinkURL = in.LinkURL
	b.Position = in.Position
	b.Active = in.Active

	updated, err := s.banners.Update(ctx, b)
	if err != nil {
		if b.ImageKey != previous {
			return nil, rollbackImage(ctx, s.store, b.ImageKey, err)
		}
		return nil, notFound(err)
	}
	if updated.ImageKey != previous && previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			s.log.Warn("banner_cleanup_failed", zap.String("key", previous), zap.Error(err))
		}
	}
	return s.withURL(ctx, updated), nil
}

func (s *catalogService) DeleteBanner(ctx context.Context, actor Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == "" {
		return ErrIDRequired
	}
	b, err := s.banners.FindByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.banners.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	if b.ImageKey == "" {
		return nil
	}
	if err := s.store.Delete(ctx, b.ImageKey); err != nil {
		s.log.Warn("banner_cleanup_failed", zap.String("key", b.ImageKey), zap.Error(err))
	}
	return nil
}
