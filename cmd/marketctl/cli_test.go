package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"artmarket/internal/config"
	"artmarket/internal/database/migration"
	"artmarket/internal/model"
	"artmarket/internal/service"
	serviceMocks "artmarket/internal/service/mocks"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	migrateList = false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func withFakeRuntime(t *testing.T, rt *runtime) {
	t.Helper()
	rt.log = zap.NewNop()
	prev := openRuntime
	openRuntime = func(context.Context) (*runtime, error) { return rt, nil }
	t.Cleanup(func() { openRuntime = prev })
}

func TestRatesList(t *testing.T) {
	catalog := new(serviceMocks.MockCatalogService)
	withFakeRuntime(t, &runtime{catalog: catalog})
	catalog.On("ListRates", mock.Anything).Return([]model.ExchangeRate{
		{Currency: "EUR", Rate: 1},
		{Currency: "USD", Rate: 1.0875},
	}, nil).Once()

	out, err := execute(t, "rates", "list")
	require.NoError(t, err)
	assert.Equal(t, "EUR\t1\nUSD\t1.0875\n", out)
	catalog.AssertExpectations(t)
}

func TestRatesSet(t *testing.T) {
	catalog := new(serviceMocks.MockCatalogService)
	withFakeRuntime(t, &runtime{catalog: catalog})

	t.Run("admin actor upserts", func(t *testing.T) {
		catalog.On("UpsertRate", mock.Anything, cliActor, "usd", 1.1).
			Return(&model.ExchangeRate{Currency: "USD", Rate: 1.1}, nil).Once()

		out, err := execute(t, "rates", "set", "usd", "1.1")
		require.NoError(t, err)
		assert.Equal(t, "USD\t1.1\n", out)
	})

	t.Run("rejects unparsable rate before connecting", func(t *testing.T) {
		_, err := execute(t, "rates", "set", "USD", "lots")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid rate "lots"`)
	})
	catalog.AssertExpectations(t)
}

func TestRatesDelete_BaseCurrency(t *testing.T) {
	catalog := new(serviceMocks.MockCatalogService)
	withFakeRuntime(t, &runtime{catalog: catalog})
	catalog.On("DeleteRate", mock.Anything, cliActor, "EUR").Return(service.ErrConflict).Once()

	_, err := execute(t, "rates", "delete", "EUR")
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestCloseAuctions(t *testing.T) {
	auctions := new(serviceMocks.MockAuctionService)
	withFakeRuntime(t, &runtime{auctions: auctions})
	auctions.On("CloseExpired", mock.Anything).
		Return(&service.CloseSummary{Activated: 1, Settled: 3, Sold: 2}, errors.New("settle auction a9: boom")).Once()

	out, err := execute(t, "close-auctions")
	require.Error(t, err)
	assert.Contains(t, out, "activated=1 settled=3 sold=2")
}

func TestSocialAnnounce(t *testing.T) {
	social := new(serviceMocks.MockSocialService)
	withFakeRuntime(t, &runtime{social: social})
	social.On("Announce", mock.Anything, "p1").Return([]model.SocialPost{
		{Network: model.NetworkFacebook, Status: model.SocialPosted, ExternalID: "fb_9"},
		{Network: model.NetworkInstagram, Status: model.SocialFailed, Error: "token expired"},
	}, errors.New("instagram: token expired")).Once()

	out, err := execute(t, "social", "announce", "p1")
	require.Error(t, err)
	assert.Contains(t, out, "facebook\tposted\tfb_9\n")
	assert.Contains(t, out, "instagram\tfailed\t\ttoken expired\n")
}

func TestMigrate(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := execute(t, "migrate", "--list")
		require.NoError(t, err)
		for _, name := range migration.StepNames() {
			assert.Contains(t, out, name)
		}
	})

	t.Run("up to date", func(t *testing.T) {
		db, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		prevDB, prevLog := openDB, newLogger
		openDB = func(context.Context, config.DatabaseConfig, *zap.Logger) (*sql.DB, error) { return db, nil }
		newLogger = func(*config.AppConfig) (*zap.Logger, error) { return zap.NewNop(), nil }
		t.Cleanup(func() { openDB, newLogger = prevDB, prevLog })

		dbMock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
		rows := sqlmock.NewRows([]string{"name"})
		for _, name := range migration.StepNames() {
			rows.AddRow(name)
		}
		dbMock.ExpectQuery("SELECT name FROM schema_migrations").WillReturnRows(rows)
		dbMock.ExpectClose()

		out, err := execute(t, "migrate")
		require.NoError(t, err)
		assert.Contains(t, out, "schema up to date")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("connect failure", func(t *testing.T) {
		prevDB, prevLog := openDB, newLogger
		openDB = func(context.Context, config.DatabaseConfig, *zap.Logger) (*sql.DB, error) { return nil, errors.New("dial tcp: refused") }
		newLogger = func(*config.AppConfig) (*zap.Logger, error) { return zap.NewNop(), nil }
		t.Cleanup(func() { openDB, newLogger = prevDB, prevLog })

		_, err := execute(t, "migrate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect database")
	})
}
