package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                      UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email                   TEXT        NOT NULL UNIQUE,
  password_hash           TEXT        NOT NULL,
  name                    TEXT        NOT NULL,
  role                    TEXT        NOT NULL CHECK (role IN ('buyer', 'seller', 'admin')),
  bio                     TEXT        NOT NULL DEFAULT '',
  avatar_key              TEXT        NOT NULL DEFAULT '',
  referral_code           TEXT        UNIQUE,
  referral_discount_pct   NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (referral_discount_pct BETWEEN 0 AND 100),
  referral_commission_pct NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (referral_commission_pct BETWEEN 0 AND 100),
  created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  seller_id   UUID        NOT NULL REFERENCES users (id),
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  medium      TEXT        NOT NULL DEFAULT '',
  width_cm    NUMERIC(8,2) NOT NULL DEFAULT 0,
  height_cm   NUMERIC(8,2) NOT NULL DEFAULT 0,
  year        INTEGER     NOT NULL DEFAULT 0,
  price_cents BIGINT      NOT NULL CHECK (price_cents >= 0),
  stock       INTEGER     NOT NULL DEFAULT 1 CHECK (stock >= 0),
  image_keys  JSONB       NOT NULL DEFAULT '[]'::jsonb,
  status      TEXT        NOT NULL DEFAULT 'draft',
  sale_type   TEXT        NOT NULL DEFAULT 'fixed',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_products_seller_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_products_seller_status ON products (seller_id, status);`,
	},
	{
		Name: "create_table_auctions",
		SQL: `CREATE TABLE IF NOT EXISTS auctions (
  id                   UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  product_id           UUID        NOT NULL REFERENCES products (id),
  seller_id            UUID        NOT NULL REFERENCES users (id),
  starting_price_cents BIGINT      NOT NULL CHECK (starting_price_cents >= 0),
  min_increment_cents  BIGINT      NOT NULL CHECK (min_increment_cents > 0),
  reserve_price_cents  BIGINT      NOT NULL DEFAULT 0,
  current_bid_cents    BIGINT      NOT NULL DEFAULT 0,
  bid_count            INTEGER     NOT NULL DEFAULT 0,
  highest_bidder_id    UUID        REFERENCES users (id),
  starts_at            TIMESTAMPTZ NOT NULL,
  ends_at              TIMESTAMPTZ NOT NULL,
  extension_count      INTEGER     NOT NULL DEFAULT 0,
  status               TEXT        NOT NULL,
  winner_order_id      UUID,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK (ends_at > starts_at)
);`,
	},
	{
		Name: "create_index_auctions_status_ends_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_auctions_status_ends_at ON auctions (status, ends_at);`,
	},
	{
		// A unique artwork must never be on the block twice at once.
		Name: "create_index_auctions_one_open_per_product",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_auctions_open_product ON auctions (product_id)
  WHERE status IN ('scheduled', 'active');`,
	},
	{
		Name: "create_table_bids",
		SQL: `CREATE TABLE IF NOT EXISTS bids (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  auction_id   UUID        NOT NULL REFERENCES auctions (id) ON DELETE CASCADE,
  bidder_id    UUID        NOT NULL REFERENCES users (id),
  amount_cents BIGINT      NOT NULL CHECK (amount_cents > 0),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_bids_auction_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bids_auction_created_at ON bids (auction_id, created_at DESC);`,
	},
	{
		Name: "create_table_orders",
		SQL: `CREATE TABLE IF NOT EXISTS orders (
  id                      UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  buyer_id                UUID        NOT NULL REFERENCES users (id),
  subtotal_cents          BIGINT      NOT NULL,
  discount_cents          BIGINT      NOT NULL DEFAULT 0,
  shipping_cents          BIGINT      NOT NULL DEFAULT 0,
  total_cents             BIGINT      NOT NULL,
  currency                TEXT        NOT NULL,
  exchange_rate           NUMERIC(18,8) NOT NULL,
  total_in_currency_cents BIGINT      NOT NULL,
  referral_code           TEXT        NOT NULL DEFAULT '',
  referrer_id             UUID        REFERENCES users (id),
  commission_cents        BIGINT      NOT NULL DEFAULT 0,
  shipping_country        TEXT        NOT NULL DEFAULT '',
  shipping_address        TEXT        NOT NULL DEFAULT '',
  status                  TEXT        NOT NULL,
  source                  TEXT        NOT NULL,
  created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_order_items",
		SQL: `CREATE TABLE IF NOT EXISTS order_items (
  order_id         UUID    NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
  product_id       UUID    NOT NULL REFERENCES products (id),
  seller_id        UUID    NOT NULL REFERENCES users (id),
  title            TEXT    NOT NULL,
  quantity         INTEGER NOT NULL CHECK (quantity > 0),
  unit_price_cents BIGINT  NOT NULL,
  PRIMARY KEY (order_id, product_id)
);`,
	},
	{
		Name: "create_index_orders_buyer",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders (buyer_id, created_at DESC);`,
	},
	{
		Name: "create_index_order_items_seller",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_order_items_seller ON order_items (seller_id);`,
	},
	{
		Name: "create_table_exchange_rates",
		SQL: `CREATE TABLE IF NOT EXISTS exchange_rates (
  currency   TEXT          PRIMARY KEY,
  rate       NUMERIC(18,8) NOT NULL CHECK (rate > 0),
  updated_at TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_settings",
		SQL: `CREATE TABLE IF NOT EXISTS settings (
  id                     SMALLINT     PRIMARY KEY DEFAULT 1 CHECK (id = 1),
  base_currency          TEXT         NOT NULL,
  anti_snipe_window_sec  INTEGER      NOT NULL,
  auction_extension_sec  INTEGER      NOT NULL,
  default_commission_pct NUMERIC(5,2) NOT NULL,
  social_auto_post       BOOLEAN      NOT NULL DEFAULT false,
  maintenance_mode       BOOLEAN      NOT NULL DEFAULT false,
  updated_at             TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "seed_settings",
		SQL: `INSERT INTO settings (id, base_currency, anti_snipe_window_sec, auction_extension_sec, default_commission_pct)
VALUES (1, 'EUR', 120, 120, 10)
ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "create_table_shipping_countries",
		SQL: `CREATE TABLE IF NOT EXISTS shipping_countries (
  code       TEXT    PRIMARY KEY,
  name       TEXT    NOT NULL,
  cost_cents BIGINT  NOT NULL CHECK (cost_cents >= 0),
  enabled    BOOLEAN NOT NULL DEFAULT true
);`,
	},
	{
		Name: "create_table_banners",
		SQL: `CREATE TABLE IF NOT EXISTS banners (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title      TEXT        NOT NULL,
  image_key  TEXT        NOT NULL,
  link_url   TEXT        NOT NULL DEFAULT '',
  position   INTEGER     NOT NULL DEFAULT 0,
  active     BOOLEAN     NOT NULL DEFAULT true,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_social_posts",
		SQL: `CREATE TABLE IF NOT EXISTS social_posts (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  product_id  UUID        NOT NULL REFERENCES products (id) ON DELETE CASCADE,
  network     TEXT        NOT NULL,
  external_id TEXT        NOT NULL DEFAULT '',
  status      TEXT        NOT NULL,
  error       TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

const createLedger = `CREATE TABLE IF NOT EXISTS schema_migrations (
  name       TEXT        PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// EnsureMigrated applies every step not yet recorded in schema_migrations, in order.
// Steps are idempotent, so a crash between a step and its ledger row is safe to re-run.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	if _, err := db.ExecContext(ctx, createLedger); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to create ledger: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to create ledger: %w", err)
	}

	applied, err := appliedSteps(ctx, db)
	if err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", err.Error()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return err
	}

	pending := 0
	for _, step := range steps {
		if applied[step.Name] {
			continue
		}
		pending++
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, step.Name); err != nil {
			return fmt.Errorf("record migration step %s: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if pending == 0 {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already up to date"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int("steps_applied", pending),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// StepNames lists the migration steps in application order.
func StepNames() []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

func appliedSteps(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}
