package repository

import (
	"context"
	"time"

	"artmarket/internal/model"
)

// BidFunc decides a bid against the locked auction, mutating it in place.
// Returning an error aborts the transaction and nothing is written.
type BidFunc func(a *model.Auction) (*model.Bid, error)

// MutateFunc changes a locked auction. Returning an error aborts the transaction.
type MutateFunc func(a *model.Auction) error

// SettleFunc settles a locked auction and returns the order to create for the
// winner, or nil when the lot went unsold.
type SettleFunc func(a *model.Auction) (*model.Order, error)

// AuctionRepository persists auctions and their bids. Every method taking a
// callback runs it while holding a row lock on the auction, so concurrent bids
// on the same auction are decided one at a time.
type AuctionRepository interface {
	// Create fails with ErrDuplicate when the product already has an open auction.
	Create(ctx context.Context, a *model.Auction) (*model.Auction, error)
	FindByID(ctx context.Context, id string) (*model.Auction, error)
	// HasOpen reports whether the product already has a scheduled or active auction.
	HasOpen(ctx context.Context, productID string) (bool, error)
	// List returns auctions in status (all when empty), soonest ending first.
	List(ctx context.Context, status model.AuctionStatus, pq PageQuery) (*PageResult[model.Auction], error)
	ListBids(ctx context.Context, auctionID string, pq PageQuery) (*PageResult[model.Bid], error)
	// ApplyBid locks the auction, runs fn and stores the returned bid with the updated auction.
	ApplyBid(ctx context.Context, auctionID string, fn BidFunc) (*model.Auction, *model.Bid, error)
	// Mutate locks the auction, runs fn and stores the result.
	Mutate(ctx context.Context, auctionID string, fn MutateFunc) (*model.Auction, error)
	// Settle locks the auction and runs fn. A returned order is inserted, linked
	// as the winner order and its product marked sold; otherwise the product is
	// put back on sale as published.
	Settle(ctx context.Context, auctionID string, fn SettleFunc) (*model.Auction, error)
	// ListDue returns IDs of scheduled auctions whose start passed and active
	// auctions whose end passed, relative to now.
	ListDue(ctx context.Context, now time.Time) (starting []string, ending []string, err error)
}
