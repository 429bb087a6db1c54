package model

import (
	"errors"
	"time"
)

var (
	ErrAuctionClosed  = errors.New("auction is not accepting bids")
	ErrBidTooLow      = errors.New("bid is below the minimum")
	ErrSelfBid        = errors.New("sellers cannot bid on their own auction")
	ErrAlreadyHighest = errors.New("bidder already holds the highest bid")
	ErrAuctionRunning = errors.New("auction has not ended yet")
)

// AuctionStatus is the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionScheduled AuctionStatus = "scheduled"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Auction is a timed sale of a single product. Money fields are base-currency cents.
type Auction struct {
	ID                 string        `json:"id"`
	ProductID          string        `json:"product_id"`
	SellerID           string        `json:"seller_id"`
	StartingPriceCents int64         `json:"starting_price_cents"`
	MinIncrementCents  int64         `json:"min_increment_cents"`
	ReservePriceCents  int64         `json:"reserve_price_cents"`
	CurrentBidCents    int64         `json:"current_bid_cents"`
	BidCount           int           `json:"bid_count"`
	HighestBidderID    string        `json:"highest_bidder_id,omitempty"`
	StartsAt           time.Time     `json:"starts_at"`
	EndsAt             time.Time     `json:"ends_at"`
	ExtensionCount     int           `json:"extension_count"`
	Status             AuctionStatus `json:"status"`
	WinnerOrderID      string        `json:"winner_order_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Bid is an accepted offer on an auction.
type Bid struct {
	ID          string    `json:"id"`
	AuctionID   string    `json:"auction_id"`
	BidderID    string    `json:"bidder_id"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsOpen reports whether bids may be placed at now.
func (a *Auction) IsOpen(now time.Time) bool {
	return a.Status == AuctionActive && !now.Before(a.StartsAt) && now.Before(a.EndsAt)
}

// MinimumBid is the smallest amount the next bid may carry.
func (a *Auction) MinimumBid() int64 {
	if a.BidCount == 0 {
		return a.StartingPriceCents
	}
	return a.CurrentBidCents + a.MinIncrementCents
}

// Accept validates a bid against the auction and applies it in place.
// A bid landing less than window before the end pushes EndsAt to now+extension.
// It returns whether the end time was extended.
func (a *Auction) Accept(bidderID string, amount int64, now time.Time, window, extension time.Duration) (bool, error) {
	if !a.IsOpen(now) {
		return false, ErrAuctionClosed
	}
	if bidderID == a.SellerID {
		return false, ErrSelfBid
	}
	if a.BidCount > 0 && bidderID == a.HighestBidderID {
		return false, ErrAlreadyHighest
	}
	if amount < a.MinimumBid() {
		return false, ErrBidTooLow
	}

	a.CurrentBidCents = amount
	a.BidCount++
	a.HighestBidderID = bidderID
	a.UpdatedAt = now

	extended := false
	if window > 0 && a.EndsAt.Sub(now) < window {
		if next := now.Add(extension); next.After(a.EndsAt) {
			a.EndsAt = next
			a.ExtensionCount++
			extended = true
		}
	}
	return extended, nil
}

// Activate moves a scheduled auction to active once its start time has passed.
func (a *Auction) Activate(now time.Time) bool {
	if a.Status != AuctionScheduled || now.Before(a.StartsAt) {
		return false
	}
	a.Status = AuctionActive
	a.UpdatedAt = now
	return true
}

// Settle ends an expired auction. It reports whether the highest bidder won,
// which requires at least one bid meeting the reserve price.
func (a *Auction) Settle(now time.Time) (bool, error) {
	if a.Status != AuctionActive {
		return false, ErrAuctionClosed
	}
	if now.Before(a.EndsAt) {
		return false, ErrAuctionRunning
	}
	a.Status = AuctionEnded
	a.UpdatedAt = now
	return a.BidCount > 0 && a.CurrentBidCents >= a.ReservePriceCents, nil
}

// AuctionState is the payload returned to polling clients.
type AuctionState struct {
	AuctionID       string        `json:"auction_id"`
	Status          AuctionStatus `json:"status"`
	BidCount        int           `json:"bid_count"`
	CurrentBidCents int64         `json:"current_bid_cents"`
	MinimumBidCents int64         `json:"minimum_bid_cents"`
	HighestBidderID string        `json:"highest_bidder_id,omitempty"`
	EndsAt          time.Time     `json:"ends_at"`
	ServerTime      time.Time     `json:"server_time"`
	Changed         bool          `json:"changed"`
}

// StateOf snapshots a for polling clients. Changed is set when the client's
// last seen bid count differs; a negative since always reports a change.
func StateOf(a *Auction, now time.Time, since int) AuctionState {
	return AuctionState{
		AuctionID:       a.ID,
		Status:          a.Status,
		BidCount:        a.BidCount,
		CurrentBidCents: a.CurrentBidCents,
		MinimumBidCents: a.MinimumBid(),
		HighestBidderID: a.HighestBidderID,
		EndsAt:          a.EndsAt,
		ServerTime:      now,
		Changed:         since < 0 || since != a.BidCount,
	}
}
