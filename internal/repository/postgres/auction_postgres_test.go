package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

var auctionCols = []string{"id", "product_id", "seller_id", "starting_price_cents", "min_increment_cents",
	"reserve_price_cents", "current_bid_cents", "bid_count", "highest_bidder_id", "starts_at", "ends_at",
	"extension_count", "status", "winner_order_id", "created_at", "updated_at"}

func activeAuctionRow(start, end time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(auctionCols).AddRow(
		"a1", "p1", "s1", int64(1000), int64(100), int64(0), int64(0), 0, "",
		start, end, 0, "active", "", start, start,
	)
}

func TestAuctionPostgres_ApplyBid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuctionPostgres(db)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	now := end.Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM auctions WHERE id = \\$1 FOR UPDATE").
		WithArgs("a1").
		WillReturnRows(activeAuctionRow(start, end))
	mock.ExpectExec("INSERT INTO bids").
		WithArgs("b1", "a1", "u2", int64(1000), now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE auctions").
		WithArgs("a1", int64(1000), 1, "u2", now.Add(2*time.Minute), 1, "active", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, b, err := repo.ApplyBid(context.Background(), "a1", func(a *model.Auction) (*model.Bid, error) {
		if _, err := a.Accept("u2", 1000, now, 2*time.Minute, 2*time.Minute); err != nil {
			return nil, err
		}
		a.UpdatedAt = now
		return &model.Bid{ID: "b1", AuctionID: a.ID, BidderID: "u2", AmountCents: 1000, CreatedAt: now}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, 1, a.ExtensionCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionPostgres_ApplyBidRejectedRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuctionPostgres(db)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM auctions WHERE id = \\$1 FOR UPDATE").
		WithArgs("a1").
		WillReturnRows(activeAuctionRow(start, start.Add(time.Hour)))
	mock.ExpectRollback()

	_, _, err = repo.ApplyBid(context.Background(), "a1", func(a *model.Auction) (*model.Bid, error) {
		_, err := a.Accept("s1", 5000, start.Add(time.Minute), 0, 0)
		return nil, err
	})
	assert.ErrorIs(t, err, model.ErrSelfBid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionPostgres_SettleWithWinner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuctionPostgres(db)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	now := end.Add(time.Second)

	rows := sqlmock.NewRows(auctionCols).AddRow(
		"a1", "p1", "s1", int64(1000), int64(100), int64(0), int64(2500), 3, "u2",
		start, end, 0, "active", "", start, start,
	)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM auctions WHERE id = \\$1 FOR UPDATE").WithArgs("a1").WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("o1", "p1", "s1", "Dusk", 1, int64(2500)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE products SET status = 'sold'").
		WithArgs("p1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE auctions").
		WithArgs("a1", int64(2500), 3, "u2", end, 0, "ended", "o1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := repo.Settle(context.Background(), "a1", func(a *model.Auction) (*model.Order, error) {
		won, err := a.Settle(now)
		if err != nil || !won {
			return nil, err
		}
		a.UpdatedAt = now
		return &model.Order{
			ID:      "o1",
			BuyerID: a.HighestBidderID,
			Items: []model.OrderItem{
				{ProductID: "p1", SellerID: "s1", Title: "Dusk", Quantity: 1, UnitPriceCents: a.CurrentBidCents},
			},
			Status:    model.OrderPending,
			Source:    model.SourceAuction,
			CreatedAt: now,
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.AuctionEnded, a.Status)
	assert.Equal(t, "o1", a.WinnerOrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionPostgres_SettleNotYetEnded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuctionPostgres(db)
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM auctions WHERE id = \\$1 FOR UPDATE").
		WithArgs("a1").
		WillReturnRows(activeAuctionRow(start, start.Add(time.Hour)))
	mock.ExpectRollback()

	_, err = repo.Settle(context.Background(), "a1", func(a *model.Auction) (*model.Order, error) {
		_, err := a.Settle(start.Add(time.Minute))
		return nil, err
	})
	assert.ErrorIs(t, err, model.ErrAuctionRunning)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionPostgres_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuctionPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id FROM auctions WHERE status = 'scheduled'").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a2"))
	mock.ExpectQuery("SELECT id FROM auctions WHERE status = 'active'").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1").AddRow("a3"))

	starting, ending, err := repo.ListDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"a2"}, starting)
	assert.Equal(t, []string{"a1", "a3"}, ending)
}

func TestAuctionPostgres_ListDueError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM auctions").WillReturnError(errors.New("boom"))

	_, _, err = NewAuctionPostgres(db).ListDue(context.Background(), time.Now())
	assert.EqualError(t, err, "boom")
}

func TestAuctionPostgres_HasOpen(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM auctions WHERE product_id = \$1 AND status IN \('scheduled', 'active'\)\)`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	open, err := NewAuctionPostgres(db).HasOpen(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, open)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuctionPostgres_CreateSecondOpenAuction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO auctions").
		WithArgs("a2", "p1", "s1", int64(1000), int64(100), int64(0), start, start.Add(time.Hour), "active", start).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uq_auctions_open_product"})

	_, err = NewAuctionPostgres(db).Create(context.Background(), &model.Auction{
		ID:                 "a2",
		ProductID:          "p1",
		SellerID:           "s1",
		StartingPriceCents: 1000,
		MinIncrementCents:  100,
		StartsAt:           start,
		EndsAt:             start.Add(time.Hour),
		Status:             model.AuctionActive,
		CreatedAt:          start,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
