package postgres

import (
	"context"
	"database/sql"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

// ExchangeRatePostgres is a PostgreSQL implementation of repository.ExchangeRateRepository.
type ExchangeRatePostgres struct {
	db *sql.DB
}

func NewExchangeRatePostgres(db *sql.DB) *ExchangeRatePostgres {
	return &ExchangeRatePostgres{db: db}
}

var _ repository.ExchangeRateRepository = (*ExchangeRatePostgres)(nil)

func (r *ExchangeRatePostgres) List(ctx context.Context) ([]model.ExchangeRate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT currency, rate, updated_at FROM exchange_rates ORDER BY currency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ExchangeRate, 0)
	for rows.Next() {
		var er model.ExchangeRate
		if err := rows.Scan(&er.Currency, &er.Rate, &er.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, er)
	}
	return out, rows.Err()
}

func (r *ExchangeRatePostgres) Get(ctx context.Context, currency string) (*model.ExchangeRate, error) {
	var er model.ExchangeRate
	err := r.db.QueryRowContext(ctx,
		`SELECT currency, rate, updated_at FROM exchange_rates WHERE currency = $1`, currency,
	).Scan(&er.Currency, &er.Rate, &er.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &er, nil
}

func (r *ExchangeRatePostgres) Upsert(ctx context.Context, er *model.ExchangeRate) (*model.ExchangeRate, error) {
	const q = `
		INSERT INTO exchange_rates (currency, rate, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency) DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at
		RETURNING currency, rate, updated_at
	`
	var out model.ExchangeRate
	if err := r.db.QueryRowContext(ctx, q, er.Currency, er.Rate, er.UpdatedAt).Scan(&out.Currency, &out.Rate, &out.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *ExchangeRatePostgres) Delete(ctx context.Context, currency string) error {
	return execOne(ctx, r.db, `DELETE FROM exchange_rates WHERE currency = $1`, currency)
}

// SettingsPostgres reads and writes the singleton settings row.
type SettingsPostgres struct {
	db *sql.DB
}

func NewSettingsPostgres(db *sql.DB) *SettingsPostgres {
	return &SettingsPostgres{db: db}
}

var _ repository.SettingsRepository = (*SettingsPostgres)(nil)

const settingsColumns = `base_currency, anti_snipe_window_sec, auction_extension_sec, default_commission_pct,
		social_auto_post, maintenance_mode, updated_at`

func scanSettings(row rowScanner) (*model.Settings, error) {
	var s model.Settings
	if err := row.Scan(
		&s.BaseCurrency,
		&s.AntiSnipeWindowSec,
		&s.AuctionExtensionSec,
		&s.DefaultCommissionPct,
		&s.SocialAutoPost,
		&s.MaintenanceMode,
		&s.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *SettingsPostgres) Get(ctx context.Context) (*model.Settings, error) {
	return scanSettings(r.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`))
}

func (r *SettingsPostgres) Update(ctx context.Context, s *model.Settings) (*model.Settings, error) {
	q := `
		UPDATE settings
		SET base_currency = $1, anti_snipe_window_sec = $2, auction_extension_sec = $3,
		    default_commission_pct = $4, social_auto_post = $5, maintenance_mode = $6, updated_at = $7
		WHERE id = 1
		RETURNING ` + settingsColumns
	return scanSettings(r.db.QueryRowContext(ctx, q,
		s.BaseCurrency,
		s.AntiSnipeWindowSec,
		s.AuctionExtensionSec,
		s.DefaultCommissionPct,
		s.SocialAutoPost,
		s.MaintenanceMode,
		s.UpdatedAt,
	))
}

// ShippingCountryPostgres is a PostgreSQL implementation of repository.ShippingCountryRepository.
type ShippingCountryPostgres struct {
	db *sql.DB
}

func NewShippingCountryPostgres(db *sql.DB) *ShippingCountryPostgres {
	return &ShippingCountryPostgres{db: db}
}

var _ repository.ShippingCountryRepository = (*ShippingCountryPostgres)(nil)

func (r *ShippingCountryPostgres) List(ctx context.Context, enabledOnly bool) ([]model.ShippingCountry, error) {
	const q = `
		SELECT code, name, cost_cents, enabled
		FROM shipping_countries
		WHERE enabled OR NOT $1
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, q, enabledOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ShippingCountry, 0)
	for rows.Next() {
		var c model.ShippingCountry
		if err := rows.Scan(&c.Code, &c.Name, &c.CostCents, &c.Enabled); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ShippingCountryPostgres) Get(ctx context.Context, code string) (*model.ShippingCountry, error) {
	var c model.ShippingCountry
	err := r.db.QueryRowContext(ctx,
		`SELECT code, name, cost_cents, enabled FROM shipping_countries WHERE code = $1`, code,
	).Scan(&c.Code, &c.Name, &c.CostCents, &c.Enabled)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *ShippingCountryPostgres) Upsert(ctx context.Context, c *model.ShippingCountry) (*model.ShippingCountry, error) {
	const q = `
		INSERT INTO shipping_countries (code, name, cost_cents, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, cost_cents = EXCLUDED.cost_cents, enabled = EXCLUDED.enabled
		RETURNING code, name, cost_cents, enabled
	`
	var out model.ShippingCountry
	if err := r.db.QueryRowContext(ctx, q, c.Code, c.Name, c.CostCents, c.Enabled).Scan(&out.Code, &out.Name, &out.CostCents, &out.Enabled); err != nil {
		return nil, mapErr(err)
	}
	return &out, nil
}

func (r *ShippingCountryPostgres) Delete(ctx context.Context, code string) error {
	return execOne(ctx, r.db, `DELETE FROM shipping_countries WHERE code = $1`, code)
}

// BannerPostgres is a PostgreSQL implementation of repository.BannerRepository.
type BannerPostgres struct {
	db *sql.DB
}

func NewBannerPostgres(db *sql.DB) *BannerPostgres {
	return &BannerPostgres{db: db}
}

var _ repository.BannerRepository = (*BannerPostgres)(nil)

const bannerColumns = `id, title, image_key, link_url, position, active, created_at`

func scanBanner(row rowScanner) (*model.Banner, error) {
	var b model.Banner
	if err := row.Scan(&b.ID, &b.Title, &b.ImageKey, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (r *BannerPostgres) List(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	q := `SELECT ` + bannerColumns + ` FROM banners WHERE active OR NOT $1 ORDER BY position, created_at`
	rows, err := r.db.QueryContext(ctx, q, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Banner, 0)
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BannerPostgres) FindByID(ctx context.Context, id string) (*model.Banner, error) {
	return scanBanner(r.db.QueryRowContext(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = $1`, id))
}

func (r *BannerPostgres) Create(ctx context.Context, b *model.Banner) (*model.Banner, error) {
	q := `
		INSERT INTO banners (id, title, image_key, link_url, position, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + bannerColumns
	return scanBanner(r.db.QueryRowContext(ctx, q, b.ID, b.Title, b.ImageKey, b.LinkURL, b.Position, b.Active, b.CreatedAt))
}

func (r *BannerPostgres) Update(ctx context.Context, b *model.Banner) (*model.Banner, error) {
	q := `
		UPDATE banners
		SET title = $2, image_key = $3, link_url = $4, position = $5, active = $6
		WHERE id = $1
		RETURNING ` + bannerColumns
	return scanBanner(r.db.QueryRowContext(ctx, q, b.ID, b.Title, b.ImageKey, b.LinkURL, b.Position, b.Active))
}

func (r *BannerPostgres) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM banners WHERE id = $1`, id)
}

// execOne runs a statement expected to touch one row, reporting ErrNotFound otherwise.
func execOne(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
