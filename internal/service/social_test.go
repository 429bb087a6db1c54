package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"artmarket/internal/model"
	repoMocks "artmarket/internal/repository/mocks"
	storeMocks "artmarket/internal/storage/mocks"
)

type fakePublisher struct {
	mu        sync.Mutex
	facebook  bool
	instagram bool
	fbErr     error
	igErr     error
	captions  []string
}

func (p *fakePublisher) FacebookEnabled() bool  { return p.facebook }
func (p *fakePublisher) InstagramEnabled() bool { return p.instagram }

func (p *fakePublisher) PostPhoto(_ context.Context, _, caption string) (string, error) {
	p.mu.Lock()
	p.captions = append(p.captions, caption)
	p.mu.Unlock()
	if p.fbErr != nil {
		return "", p.fbErr
	}
	return "fb-1", nil
}

func (p *fakePublisher) PublishInstagram(_ context.Context, _, _ string) (string, error) {
	if p.igErr != nil {
		return "", p.igErr
	}
	return "ig-1", nil
}

func newSocialFixture(t *testing.T, pub *fakePublisher) (*socialService, *repoMocks.MockProductRepository, *repoMocks.MockSocialPostRepository, *Metrics) {
	t.Helper()
	products := new(repoMocks.MockProductRepository)
	posts := new(repoMocks.MockSocialPostRepository)
	settings := new(repoMocks.MockSettingsRepository)
	settings.On("Get", mock.Anything).Return(&model.Settings{BaseCurrency: "EUR"}, nil).Maybe()
	store := new(storeMocks.MockStorage)
	store.On("PresignGet", mock.Anything, "products/p1/a.jpg", time.Hour).Return("https://cdn.test/a.jpg", nil).Maybe()
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	svc := NewSocialService(products, posts, settings, pub, store, time.Hour, m, zap.NewNop()).(*socialService)
	svc.now = func() time.Time { return testNow }
	return svc, products, posts, m
}

func publishedProduct() *model.Product {
	return &model.Product{
		ID:         "p1",
		Title:      "Nocturne",
		Medium:     "Oil on canvas",
		PriceCents: 125000,
		Status:     model.ProductPublished,
		SaleType:   model.SaleFixed,
		ImageKeys:  []string{"products/p1/a.jpg"},
	}
}

func TestSocialService_Announce(t *testing.T) {
	ctx := context.Background()

	t.Run("both networks posted", func(t *testing.T) {
		pub := &fakePublisher{facebook: true, instagram: true}
		svc, products, posts, m := newSocialFixture(t, pub)
		products.On("FindByID", ctx, "p1").Return(publishedProduct(), nil)
		posts.On("Create", ctx, mock.Anything).Return(&model.SocialPost{Status: model.SocialPosted}, nil).Twice()

		out, err := svc.Announce(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, out, 2)
		assert.Equal(t, []string{"Nocturne | Oil on canvas\n1250.00 EUR"}, pub.captions)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.social.WithLabelValues("facebook", "posted")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.social.WithLabelValues("instagram", "posted")))
	})

	t.Run("one network failing is recorded and reported", func(t *testing.T) {
		pub := &fakePublisher{facebook: true, instagram: true, igErr: errors.New("media rejected")}
		svc, products, posts, m := newSocialFixture(t, pub)
		products.On("FindByID", ctx, "p1").Return(publishedProduct(), nil)
		posts.On("Create", ctx, mock.MatchedBy(func(p *model.SocialPost) bool {
			return p.Network == model.NetworkFacebook && p.Status == model.SocialPosted && p.ExternalID == "fb-1"
		})).Return(&model.SocialPost{Network: model.NetworkFacebook}, nil)
		posts.On("Create", ctx, mock.MatchedBy(func(p *model.SocialPost) bool {
			return p.Network == model.NetworkInstagram && p.Status == model.SocialFailed && p.Error == "media rejected"
		})).Return(&model.SocialPost{Network: model.NetworkInstagram}, nil)

		out, err := svc.Announce(ctx, "p1")
		require.Error(t, err)
		assert.EqualError(t, err, "instagram: media rejected")
		assert.Len(t, out, 2)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.social.WithLabelValues("instagram", "failed")))
		posts.AssertExpectations(t)
	})

	t.Run("only configured networks", func(t *testing.T) {
		pub := &fakePublisher{facebook: true}
		svc, products, posts, _ := newSocialFixture(t, pub)
		products.On("FindByID", ctx, "p1").Return(publishedProduct(), nil)
		posts.On("Create", ctx, mock.Anything).Return(&model.SocialPost{}, nil).Once()

		out, err := svc.Announce(ctx, "p1")
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})

	t.Run("nothing configured", func(t *testing.T) {
		svc, products, _, _ := newSocialFixture(t, &fakePublisher{})
		products.On("FindByID", ctx, "p1").Return(publishedProduct(), nil)
		_, err := svc.Announce(ctx, "p1")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("drafts are not announced", func(t *testing.T) {
		svc, products, _, _ := newSocialFixture(t, &fakePublisher{facebook: true})
		p := publishedProduct()
		p.Status = model.ProductDraft
		products.On("FindByID", ctx, "p1").Return(p, nil)
		_, err := svc.Announce(ctx, "p1")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("listing without image", func(t *testing.T) {
		svc, products, _, _ := newSocialFixture(t, &fakePublisher{facebook: true})
		p := publishedProduct()
		p.ImageKeys = nil
		products.On("FindByID", ctx, "p1").Return(p, nil)
		_, err := svc.Announce(ctx, "p1")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestCaption(t *testing.T) {
	p := &model.Product{Title: "Lot 7", SaleType: model.SaleAuction, Description: "  A study.  "}
	assert.Equal(t, "Lot 7\nNow at auction\n\nA study.", caption(p, "EUR"))
}

func TestCaption_TruncatesByRune(t *testing.T) {
	t.Run("short multibyte text is kept whole", func(t *testing.T) {
		d := strings.Repeat("ა", 200)
		got := caption(&model.Product{Title: "Lot 7", Description: d}, "EUR")
		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, "\n\n"+d))
	})

	t.Run("long multibyte text is cut on a rune boundary", func(t *testing.T) {
		got := caption(&model.Product{Title: "Lot 7", Description: strings.Repeat("ა", 300)}, "EUR")
		assert.True(t, utf8.ValidString(got))
		_, desc, ok := strings.Cut(got, "\n\n")
		require.True(t, ok)
		assert.Equal(t, strings.Repeat("ა", maxCaptionDescription)+"...", desc)
	})
}
