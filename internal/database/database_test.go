package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"artmarket/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "market", Name: "artmarket"}

	tests := []struct {
		name    string
		mutate  func(*config.DatabaseConfig)
		want    string
		wantErr bool
	}{
		{
			name: "minimal config pins session to UTC",
			want: "postgres://market@db:5432/artmarket?timezone=UTC",
		},
		{
			name: "password, sslmode and runtime params",
			mutate: func(c *config.DatabaseConfig) {
				c.Password = "s3cret"
				c.SSLMode = "require"
				c.AppName = "marketctl"
				c.StatementTimeout = 1500 * time.Millisecond
			},
			want: "postgres://market:s3cret@db:5432/artmarket?application_name=marketctl&sslmode=require&statement_timeout=1500&timezone=UTC",
		},
		{
			name:   "ipv6 host is bracketed",
			mutate: func(c *config.DatabaseConfig) { c.Host = "::1" },
			want:   "postgres://market@[::1]:5432/artmarket?timezone=UTC",
		},
		{name: "missing host", mutate: func(c *config.DatabaseConfig) { c.Host = "" }, wantErr: true},
		{name: "missing port", mutate: func(c *config.DatabaseConfig) { c.Port = "" }, wantErr: true},
		{name: "missing user", mutate: func(c *config.DatabaseConfig) { c.User = "" }, wantErr: true},
		{name: "missing name", mutate: func(c *config.DatabaseConfig) { c.Name = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			got, err := BuildPostgresDSN(c)
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// stubDriver swaps sqlOpen and sleep for the duration of a test and records
// the backoff delays requested.
func stubDriver(t *testing.T, db *sql.DB, openErr error) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	origOpen, origSleep := sqlOpen, sleep
	sqlOpen = func(string, string) (*sql.DB, error) {
		if openErr != nil {
			return nil, openErr
		}
		return db, nil
	}
	sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	t.Cleanup(func() { sqlOpen, sleep = origOpen, origSleep })
	return &delays
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "db",
		Port:               "5432",
		User:               "market",
		Name:               "artmarket",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
		ConnectAttempts:    5,
	}

	t.Run("connects on first ping", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		delays := stubDriver(t, db, nil)
		core, logs := observer.New(zapcore.InfoLevel)

		dbMock.ExpectPing()

		got, err := NewPostgres(context.Background(), conf, zap.New(core))
		require.NoError(t, err)
		assert.Same(t, db, got)
		assert.Equal(t, 10, got.Stats().MaxOpenConnections)
		assert.Empty(t, *delays)
		assert.Equal(t, 1, logs.FilterMessage("db_connected").Len())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("retries until the server answers", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		delays := stubDriver(t, db, nil)
		core, logs := observer.New(zapcore.WarnLevel)

		dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))
		dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))
		dbMock.ExpectPing()

		_, err = NewPostgres(context.Background(), conf, zap.New(core))
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
		assert.Equal(t, 2, logs.FilterMessage("db_connect_retry").Len())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		delays := stubDriver(t, db, nil)

		for range 5 {
			dbMock.ExpectPing().WillReturnError(errors.New("ping failed"))
		}
		dbMock.ExpectClose()

		got, err := NewPostgres(context.Background(), conf, zap.NewNop())
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "db ping: ping failed")
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}, *delays)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubDriver(t, db, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		dbMock.ExpectClose()

		_, err = NewPostgres(ctx, conf, zap.NewNop())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("open error", func(t *testing.T) {
		stubDriver(t, nil, errors.New("open error"))

		got, err := NewPostgres(context.Background(), conf, zap.NewNop())
		require.Error(t, err)
		assert.Nil(t, got)
		assert.Contains(t, err.Error(), "sql open: open error")
	})

	t.Run("invalid config", func(t *testing.T) {
		got, err := NewPostgres(context.Background(), config.DatabaseConfig{}, zap.NewNop())
		assert.ErrorIs(t, err, errInvalidConfig)
		assert.Nil(t, got)
	})
}
