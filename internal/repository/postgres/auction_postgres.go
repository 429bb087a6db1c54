package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"artmarket/internal/database"
	"artmarket/internal/model"
	"artmarket/internal/repository"
)

const auctionColumns = `id, product_id, seller_id, starting_price_cents, min_increment_cents, reserve_price_cents,
		current_bid_cents, bid_count, COALESCE(highest_bidder_id::text, ''), starts_at, ends_at, extension_count,
		status, COALESCE(winner_order_id::text, ''), created_at, updated_at`

// AuctionPostgres is a PostgreSQL implementation of repository.AuctionRepository.
// Callback methods hold SELECT ... FOR UPDATE on the auction row for the whole transaction.
type AuctionPostgres struct {
	db *sql.DB
}

// NewAuctionPostgres creates a new AuctionPostgres repository.
func NewAuctionPostgres(db *sql.DB) *AuctionPostgres {
	return &AuctionPostgres{db: db}
}

var _ repository.AuctionRepository = (*AuctionPostgres)(nil)

func scanAuction(row rowScanner) (*model.Auction, error) {
	var a model.Auction
	if err := row.Scan(
		&a.ID,
		&a.ProductID,
		&a.SellerID,
		&a.StartingPriceCents,
		&a.MinIncrementCents,
		&a.ReservePriceCents,
		&a.CurrentBidCents,
		&a.BidCount,
		&a.HighestBidderID,
		&a.StartsAt,
		&a.EndsAt,
		&a.ExtensionCount,
		&a.Status,
		&a.WinnerOrderID,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *AuctionPostgres) Create(ctx context.Context, a *model.Auction) (*model.Auction, error) {
	q := `
		INSERT INTO auctions (id, product_id, seller_id, starting_price_cents, min_increment_cents,
		                      reserve_price_cents, starts_at, ends_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING ` + auctionColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.ProductID,
		a.SellerID,
		a.StartingPriceCents,
		a.MinIncrementCents,
		a.ReservePriceCents,
		a.StartsAt,
		a.EndsAt,
		a.Status,
		a.CreatedAt,
	)
	return scanAuction(row)
}

func (r *AuctionPostgres) HasOpen(ctx context.Context, productID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM auctions WHERE product_id = $1 AND status IN ('scheduled', 'active'))`
	var open bool
	if err := r.db.QueryRowContext(ctx, q, productID).Scan(&open); err != nil {
		return false, err
	}
	return open, nil
}

func (r *AuctionPostgres) FindByID(ctx context.Context, id string) (*model.Auction, error) {
	q := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	return scanAuction(r.db.QueryRowContext(ctx, q, id))
}

// List returns active auctions first, then scheduled, then the rest, each by end time.
func (r *AuctionPostgres) List(ctx context.Context, status model.AuctionStatus, pq repository.PageQuery) (*repository.PageResult[model.Auction], error) {
	const cond = `($1 = '' OR status = $1)`

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auctions WHERE `+cond, string(status)).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + auctionColumns + ` FROM auctions WHERE ` + cond + `
		ORDER BY CASE status WHEN 'active' THEN 0 WHEN 'scheduled' THEN 1 ELSE 2 END, ends_at ASC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, string(status), pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Auction]{
		Items: items,
		Total: total,
	}, nil
}

// ListBids returns the bids of an auction, newest first.
func (r *AuctionPostgres) ListBids(ctx context.Context, auctionID string, pq repository.PageQuery) (*repository.PageResult[model.Bid], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT id, auction_id, bidder_id, amount_cents, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY created_at DESC, amount_cents DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, q, auctionID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.AmountCents, &b.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Bid]{
		Items: items,
		Total: total,
	}, nil
}

func lockAuction(ctx context.Context, tx *sql.Tx, id string) (*model.Auction, error) {
	q := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1 FOR UPDATE`
	return scanAuction(tx.QueryRowContext(ctx, q, id))
}

func writeAuction(ctx context.Context, q database.Querier, a *model.Auction) error {
	const qUpdate = `
		UPDATE auctions
		SET current_bid_cents = $2, bid_count = $3, highest_bidder_id = $4, ends_at = $5,
		    extension_count = $6, status = $7, winner_order_id = $8, updated_at = $9
		WHERE id = $1
	`
	_, err := q.ExecContext(ctx, qUpdate,
		a.ID,
		a.CurrentBidCents,
		a.BidCount,
		nullString(a.HighestBidderID),
		a.EndsAt,
		a.ExtensionCount,
		a.Status,
		nullString(a.WinnerOrderID),
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update auction: %w", err)
	}
	return nil
}

func (r *AuctionPostgres) ApplyBid(ctx context.Context, auctionID string, fn repository.BidFunc) (*model.Auction, *model.Bid, error) {
	const qBid = `
		INSERT INTO bids (id, auction_id, bidder_id, amount_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	var (
		auction *model.Auction
		bid     *model.Bid
	)
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		a, err := lockAuction(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		b, err := fn(a)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qBid, b.ID, a.ID, b.BidderID, b.AmountCents, b.CreatedAt); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		if err := writeAuction(ctx, tx, a); err != nil {
			return err
		}
		auction, bid = a, b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return auction, bid, nil
}

func (r *AuctionPostgres) Mutate(ctx context.Context, auctionID string, fn repository.MutateFunc) (*model.Auction, error) {
	var out *model.Auction
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		a, err := lockAuction(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
		if err := writeAuction(ctx, tx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuctionPostgres) Settle(ctx context.Context, auctionID string, fn repository.SettleFunc) (*model.Auction, error) {
	const (
		qSold   = `UPDATE products SET status = 'sold', stock = 0, updated_at = $2 WHERE id = $1`
		qUnsold = `UPDATE products SET status = 'published', updated_at = $2 WHERE id = $1 AND status <> 'archived'`
	)
	var out *model.Auction
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		a, err := lockAuction(ctx, tx, auctionID)
		if err != nil {
			return err
		}
		order, err := fn(a)
		if err != nil {
			return err
		}
		if order != nil {
			if err := insertOrder(ctx, tx, order); err != nil {
				return err
			}
			a.WinnerOrderID = order.ID
			if _, err := tx.ExecContext(ctx, qSold, a.ProductID, a.UpdatedAt); err != nil {
				return fmt.Errorf("mark product sold: %w", err)
			}
		} else if _, err := tx.ExecContext(ctx, qUnsold, a.ProductID, a.UpdatedAt); err != nil {
			return fmt.Errorf("release product: %w", err)
		}
		if err := writeAuction(ctx, tx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuctionPostgres) ListDue(ctx context.Context, now time.Time) ([]string, []string, error) {
	starting, err := r.ids(ctx, `SELECT id FROM auctions WHERE status = 'scheduled' AND starts_at <= $1 ORDER BY starts_at`, now)
	if err != nil {
		return nil, nil, err
	}
	ending, err := r.ids(ctx, `SELECT id FROM auctions WHERE status = 'active' AND ends_at <= $1 ORDER BY ends_at`, now)
	if err != nil {
		return nil, nil, err
	}
	return starting, ending, nil
}

func (r *AuctionPostgres) ids(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
