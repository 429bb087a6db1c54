package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"artmarket/internal/model"
	"artmarket/internal/repository"
	"artmarket/internal/storage"
)

const maxProductImages = 10

// ProductInput is the editable part of a listing.
type ProductInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Medium      string         `json:"medium"`
	WidthCM     float64        `json:"width_cm"`
	HeightCM    float64        `json:"height_cm"`
	Year        int            `json:"year"`
	PriceCents  int64          `json:"price_cents"`
	Stock       int            `json:"stock"`
	SaleType    model.SaleType `json:"sale_type"`
}

func (in *ProductInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Length(0, 5000)),
		validation.Field(&in.Medium, validation.Length(0, 100)),
		validation.Field(&in.WidthCM, validation.Min(0.0)),
		validation.Field(&in.HeightCM, validation.Min(0.0)),
		validation.Field(&in.Year, validation.Min(1000), validation.Max(2100)),
		validation.Field(&in.PriceCents, validation.Min(0)),
		validation.Field(&in.Stock, validation.Min(0)),
		validation.Field(&in.SaleType, validation.Required, validation.In(model.SaleFixed, model.SaleAuction)),
	)
}

// Announcer posts a product to social networks.
type Announcer interface {
	Announce(ctx context.Context, productID string) ([]model.SocialPost, error)
}

// ProductService manages artwork listings and their images.
type ProductService interface {
	Create(ctx context.Context, actor Actor, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, actor Actor, id string, in ProductInput) (*model.Product, error)
	// Publish puts a draft or archived listing on sale and, when enabled in
	// settings, announces it on social networks in the background.
	Publish(ctx context.Context, actor Actor, id string) (*model.Product, error)
	Archive(ctx context.Context, actor Actor, id string) (*model.Product, error)
	// Get hides drafts and archived listings from everyone but their seller and admins.
	Get(ctx context.Context, viewer Actor, id string) (*model.Product, error)
	List(ctx context.Context, viewer Actor, f model.ProductFilter, limit, offset int) (*ListResult[model.Product], error)
	// UploadImage stores the image, appends its key and rolls the upload back if the update fails.
	UploadImage(ctx context.Context, actor Actor, id string, img ImageUpload) (*model.Product, error)
	DeleteImage(ctx context.Context, actor Actor, id string, index int) (*model.Product, error)
}

type productService struct {
	products  repository.ProductRepository
	settings  repository.SettingsRepository
	store     storage.Storage
	urls      presigner
	announcer Announcer
	log       *zap.Logger
	now       func() time.Time
	async     func(func())
}

// NewProductService constructs a ProductService. announcer may be nil to disable auto-posting.
func NewProductService(products repository.ProductRepository, settings repository.SettingsRepository, store storage.Storage, presignExpiry time.Duration, announcer Announcer, log *zap.Logger) ProductService {
	return &productService{
		products:  products,
		settings:  settings,
		store:     store,
		urls:      presigner{store: store, expiry: presignExpiry, log: log},
		announcer: announcer,
		log:       log,
		now:       time.Now,
		async:     func(f func()) { go f() },
	}
}

func canManage(actor Actor, ownerID string) bool {
	return actor.IsAdmin() || (actor.UserID != "" && actor.UserID == ownerID)
}

func (s *productService) withURLs(ctx context.Context, p *model.Product) *model.Product {
	p.ImageURLs = s.urls.urls(ctx, p.ImageKeys)
	return p
}

// owned loads a product the actor may modify.
func (s *productService) owned(ctx context.Context, actor Actor, id string) (*model.Product, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !canManage(actor, p.SellerID) {
		return nil, ErrForbidden
	}
	return p, nil
}

func normalizeProductInput(in *ProductInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Medium = strings.TrimSpace(in.Medium)
	if in.SaleType == "" {
		in.SaleType = model.SaleFixed
	}
	if in.SaleType == model.SaleAuction {
		in.Stock = 1
	}
}

func (s *productService) Create(ctx context.Context, actor Actor, in ProductInput) (*model.Product, error) {
	if actor.Role != model.RoleSeller && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	normalizeProductInput(&in)
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	now := s.now().UTC()
	p := &model.Product{
		ID:          uuid.NewString(),
		SellerID:    actor.UserID,
		Title:       in.Title,
		Description: in.Description,
		Medium:      in.Medium,
		WidthCM:     in.WidthCM,
		HeightCM:    in.HeightCM,
		Year:        in.Year,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		ImageKeys:   []string{},
		Status:      model.ProductDraft,
		SaleType:    in.SaleType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.withURLs(ctx, created), nil
}

func (s *productService) Update(ctx context.Context, actor Actor, id string, in ProductInput) (*model.Product, error) {
	normalizeProductInput(&in)
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	updated, err := s.products.Mutate(ctx, id, func(p *model.Product) error {
		if p.Status == model.ProductSold {
			return fmt.Errorf("%w: sold listings cannot be edited", ErrConflict)
		}
		if in.SaleType != p.SaleType && p.Status != model.ProductDraft {
			return fmt.Errorf("%w: sale type can only change while in draft", ErrConflict)
		}
		p.Title = in.Title
		p.Description = in.Description
		p.Medium = in.Medium
		p.WidthCM = in.WidthCM
		p.HeightCM = in.HeightCM
		p.Year = in.Year
		p.PriceCents = in.PriceCents
		p.Stock = in.Stock
		p.SaleType = in.SaleType
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return s.withURLs(ctx, updated), nil
}

func (s *productService) Publish(ctx context.Context, actor Actor, id string) (*model.Product, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	var transitioned bool
	updated, err := s.products.Mutate(ctx, id, func(p *model.Product) error {
		switch p.Status {
		case model.ProductPublished:
			return nil
		case model.ProductSold:
			return fmt.Errorf("%w: listing already sold", ErrConflict)
		}
		if p.SaleType == model.SaleFixed && (p.PriceCents <= 0 || p.Stock <= 0) {
			return fmt.Errorf("%w: fixed-price listings need a price and stock", ErrInvalidInput)
		}
		p.Status = model.ProductPublished
		p.UpdatedAt = s.now().UTC()
		transitioned = true
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}

	if transitioned {
		s.maybeAnnounce(ctx, updated.ID)
	}
	return s.withURLs(ctx, updated), nil
}

func (s *productService) maybeAnnounce(ctx context.Context, productID string) {
	if s.announcer == nil {
		return
	}
	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		s.log.Warn("announce_skipped", zap.String("product_id", productID), zap.Error(err))
		return
	}
	if !settings.SocialAutoPost {
		return
	}
	bg := context.WithoutCancel(ctx)
	s.async(func() {
		ctx, cancel := context.WithTimeout(bg, 2*time.Minute)
		defer cancel()
		if _, err := s.announcer.Announce(ctx, productID); err != nil {
			s.log.Warn("announce_failed", zap.String("product_id", productID), zap.Error(err))
		}
	})
}

func (s *productService) Archive(ctx context.Context, actor Actor, id string) (*model.Product, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	updated, err := s.products.Mutate(ctx, id, func(p *model.Product) error {
		if p.Status == model.ProductSold {
			return fmt.Errorf("%w: listing already sold", ErrConflict)
		}
		p.Status = model.ProductArchived
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return s.withURLs(ctx, updated), nil
}

func visible(viewer Actor, p *model.Product) bool {
	if p.Status == model.ProductPublished || p.Status == model.ProductSold {
		return true
	}
	return canManage(viewer, p.SellerID)
}

func (s *productService) Get(ctx context.Context, viewer Actor, id string) (*model.Product, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !visible(viewer, p) {
		return nil, ErrNotFound
	}
	return s.withURLs(ctx, p), nil
}

func (s *productService) List(ctx context.Context, viewer Actor, f model.ProductFilter, limit, offset int) (*ListResult[model.Product], error) {
	own := viewer.IsAdmin() || (f.SellerID != "" && f.SellerID == viewer.UserID)
	if !own && f.Status != model.ProductSold {
		f.Status = model.ProductPublished
	}

	res, err := s.products.List(ctx, f, page(limit, offset))
	if err != nil {
		return nil, err
	}
	for i := range res.Items {
		s.withURLs(ctx, &res.Items[i])
	}
	return &ListResult[model.Product]{Items: res.Items, Total: res.Total}, nil
}

func (s *productService) UploadImage(ctx context.Context, actor Actor, id string, img ImageUpload) (*model.Product, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(p.ImageKeys) >= maxProductImages {
		return nil, fmt.Errorf("%w: at most %d images per listing", ErrInvalidInput, maxProductImages)
	}

	key, err := putImage(ctx, s.store, img, "products", p.ID)
	if err != nil {
		return nil, err
	}

	updated, err := s.products.UpdateImages(ctx, id, func(p *model.Product) error {
		// Another upload may have filled the last slot since the check above.
		if len(p.ImageKeys) >= maxProductImages {
			return fmt.Errorf("%w: at most %d images per listing", ErrInvalidInput, maxProductImages)
		}
		p.ImageKeys = append(p.ImageKeys, key)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, rollbackImage(ctx, s.store, key, err)
	}
	return s.withURLs(ctx, updated), nil
}

func (s *productService) DeleteImage(ctx context.Context, actor Actor, id string, index int) (*model.Product, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	var key string
	updated, err := s.products.UpdateImages(ctx, id, func(p *model.Product) error {
		if index < 0 || index >= len(p.ImageKeys) {
			return ErrNotFound
		}
		key = p.ImageKeys[index]
		p.ImageKeys = append(p.ImageKeys[:index:index], p.ImageKeys[index+1:]...)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("image_cleanup_failed", zap.String("key", key), zap.Error(err))
	}
	return s.withURLs(ctx, updated), nil
}
