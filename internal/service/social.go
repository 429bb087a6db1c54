package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"artmarket/internal/model"
	"artmarket/internal/repository"
	"artmarket/internal/storage"
)

// SocialPublisher is the Graph API surface used for announcements.
type SocialPublisher interface {
	FacebookEnabled() bool
	InstagramEnabled() bool
	PostPhoto(ctx context.Context, imageURL, caption string) (string, error)
	PublishInstagram(ctx context.Context, imageURL, caption string) (string, error)
}

// SocialService announces published listings on the configured networks.
type SocialService interface {
	// Announce posts the product to every enabled network concurrently and
	// records one SocialPost per network. Failed networks are joined into the error.
	Announce(ctx context.Context, productID string) ([]model.SocialPost, error)
	History(ctx context.Context, productID string) ([]model.SocialPost, error)
}

type socialService struct {
	products  repository.ProductRepository
	posts     repository.SocialPostRepository
	settings  repository.SettingsRepository
	publisher SocialPublisher
	urls      presigner
	metrics   *Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewSocialService(
	products repository.ProductRepository,
	posts repository.SocialPostRepository,
	settings repository.SettingsRepository,
	publisher SocialPublisher,
	store storage.Storage,
	presignExpiry time.Duration,
	metrics *Metrics,
	log *zap.Logger,
) SocialService {
	return &socialService{
		products:  products,
		posts:     posts,
		settings:  settings,
		publisher: publisher,
		urls:      presigner{store: store, expiry: presignExpiry, log: log},
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

type network struct {
	name    model.Network
	enabled bool
	publish func(ctx context.Context, imageURL, caption string) (string, error)
}

func (s *socialService) networks() []network {
	return []network{
		{model.NetworkFacebook, s.publisher.FacebookEnabled(), s.publisher.PostPhoto},
		{model.NetworkInstagram, s.publisher.InstagramEnabled(), s.publisher.PublishInstagram},
	}
}

// maxCaptionDescription caps the description in runes, not bytes.
const maxCaptionDescription = 280

func caption(p *model.Product, currency string) string {
	var b strings.Builder
	b.WriteString(p.Title)
	if p.Medium != "" {
		b.WriteString(" | " + p.Medium)
	}
	if p.SaleType == model.SaleAuction {
		b.WriteString("\nNow at auction")
	} else if p.PriceCents > 0 {
		fmt.Fprintf(&b, "\n%d.%02d %s", p.PriceCents/100, p.PriceCents%100, currency)
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		if r := []rune(d); len(r) > maxCaptionDescription {
			d = string(r[:maxCaptionDescription]) + "..."
		}
		b.WriteString("\n\n" + d)
	}
	return b.String()
}

func (s *socialService) Announce(ctx context.Context, productID string) ([]model.SocialPost, error) {
	if productID == "" {
		return nil, ErrIDRequired
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, notFound(err)
	}
	if p.Status != model.ProductPublished {
		return nil, fmt.Errorf("%w: only published listings can be announced", ErrConflict)
	}
	if len(p.ImageKeys) == 0 {
		return nil, fmt.Errorf("%w: listing has no image", ErrInvalidInput)
	}
	imageURL := s.urls.url(ctx, p.ImageKeys[0])
	if imageURL == "" {
		return nil, fmt.Errorf("presign image for %s failed", p.ID)
	}
	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	text := caption(p, settings.BaseCurrency)

	var targets []network
	for _, n := range s.networks() {
		if n.enabled {
			targets = append(targets, n)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no social network configured", ErrConflict)
	}

	ids := make([]string, len(targets))
	errs := make([]error, len(targets))
	// Errors go to errs instead of the group so a failing network neither
	// cancels the others nor skips their SocialPost; they are joined below.
	var g errgroup.Group
	for i, n := range targets {
		g.Go(func() error {
			ids[i], errs[i] = n.publish(ctx, imageURL, text)
			return nil
		})
	}
	_ = g.Wait() // always nil

	posts := make([]model.SocialPost, 0, len(targets))
	var failed []error
	for i, n := range targets {
		post := model.SocialPost{
			ID:         uuid.NewString(),
			ProductID:  p.ID,
			Network:    n.name,
			ExternalID: ids[i],
			Status:     model.SocialPosted,
			CreatedAt:  s.now().UTC(),
		}
		if errs[i] != nil {
			post.Status = model.SocialFailed
			post.Error = errs[i].Error()
			failed = append(failed, fmt.Errorf("%s: %w", n.name, errs[i]))
		}
		s.metrics.socialPost(string(n.name), string(post.Status))

		saved, err := s.posts.Create(ctx, &post)
		if err != nil {
			failed = append(failed, fmt.Errorf("record %s post: %w", n.name, err))
			posts = append(posts, post)
			continue
		}
		posts = append(posts, *saved)
		s.log.Info("social_post",
			zap.String("product_id", p.ID),
			zap.String("network", string(n.name)),
			zap.String("status", string(post.Status)),
			zap.String("external_id", post.ExternalID),
		)
	}
	return posts, errors.Join(failed...)
}

func (s *socialService) History(ctx context.Context, productID string) ([]model.SocialPost, error) {
	if productID == "" {
		return nil, ErrIDRequired
	}
	return s.posts.ListByProduct(ctx, productID)
}
