package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

func TestSettingsPostgres_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM settings WHERE id = 1").WillReturnRows(
		sqlmock.NewRows([]string{"base_currency", "anti_snipe_window_sec", "auction_extension_sec",
			"default_commission_pct", "social_auto_post", "maintenance_mode", "updated_at"}).
			AddRow("EUR", 120, 60, 10.0, true, false, now))

	s, err := NewSettingsPostgres(db).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, s.AntiSnipeWindow())
	assert.Equal(t, time.Minute, s.AuctionExtension())
	assert.True(t, s.SocialAutoPost)
}

func TestExchangeRatePostgres_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO exchange_rates (.+) ON CONFLICT \\(currency\\) DO UPDATE").
		WithArgs("USD", 1.08, now).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "rate", "updated_at"}).AddRow("USD", 1.08, now))

	got, err := NewExchangeRatePostgres(db).Upsert(context.Background(), &model.ExchangeRate{Currency: "USD", Rate: 1.08, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, 1.08, got.Rate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExchangeRatePostgres_DeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM exchange_rates").WithArgs("JPY").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewExchangeRatePostgres(db).Delete(context.Background(), "JPY")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestShippingCountryPostgres_ListEnabled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT code, name, cost_cents, enabled FROM shipping_countries").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "cost_cents", "enabled"}).
			AddRow("FR", "France", int64(1500), true))

	got, err := NewShippingCountryPostgres(db).List(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []model.ShippingCountry{{Code: "FR", Name: "France", CostCents: 1500, Enabled: true}}, got)
}

func TestBannerPostgres_ListOrdered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM banners WHERE active OR NOT \\$1 ORDER BY position").
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "image_key", "link_url", "position", "active", "created_at"}).
			AddRow("bn1", "Spring", "banners/bn1.jpg", "/sale", 0, true, now).
			AddRow("bn2", "Summer", "banners/bn2.jpg", "", 1, false, now))

	got, err := NewBannerPostgres(db).List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "banners/bn1.jpg", got[0].ImageKey)
	assert.False(t, got[1].Active)
}

func TestSocialPostPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	p := &model.SocialPost{ID: "sp1", ProductID: "p1", Network: model.NetworkFacebook, ExternalID: "123_456", Status: model.SocialPosted, CreatedAt: now}

	mock.ExpectQuery("INSERT INTO social_posts").
		WithArgs("sp1", "p1", "facebook", "123_456", "posted", "", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "network", "external_id", "status", "error", "created_at"}).
			AddRow("sp1", "p1", "facebook", "123_456", "posted", "", now))

	got, err := NewSocialPostPostgres(db).Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, model.NetworkFacebook, got.Network)
	assert.NoError(t, mock.ExpectationsWereMet())
}
