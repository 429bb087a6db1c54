package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"artmarket/internal/logger"
	"artmarket/internal/mailer"
	"artmarket/internal/model"
	"artmarket/internal/repository"
)

// AuctionInput opens an auction on a published auction-type product.
// A start in the past (or zero) starts the auction immediately.
type AuctionInput struct {
	ProductID          string    `json:"product_id"`
	StartingPriceCents int64     `json:"starting_price_cents"`
	MinIncrementCents  int64     `json:"min_increment_cents"`
	ReservePriceCents  int64     `json:"reserve_price_cents"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
}

func (in *AuctionInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.ProductID, validation.Required),
		validation.Field(&in.StartingPriceCents, validation.Min(0)),
		validation.Field(&in.MinIncrementCents, validation.Required, validation.Min(1)),
		validation.Field(&in.ReservePriceCents, validation.Min(0)),
		validation.Field(&in.EndsAt, validation.Required),
	)
}

// BidResult is the outcome of an accepted bid.
type BidResult struct {
	Auction  *model.Auction `json:"auction"`
	Bid      *model.Bid     `json:"bid"`
	Extended bool           `json:"extended"`
}

// CloseSummary reports what one closer pass did.
type CloseSummary struct {
	Activated int `json:"activated"`
	Settled   int `json:"settled"`
	Sold      int `json:"sold"`
}

// AuctionService runs timed sales: creation, bidding with anti-sniping,
// polling state and settlement into orders.
type AuctionService interface {
	Create(ctx context.Context, actor Actor, in AuctionInput) (*model.Auction, error)
	Get(ctx context.Context, id string) (*model.Auction, error)
	List(ctx context.Context, status model.AuctionStatus, limit, offset int) (*ListResult[model.Auction], error)
	// PlaceBid arbitrates the bid under the auction's row lock.
	PlaceBid(ctx context.Context, actor Actor, id string, amountCents int64) (*BidResult, error)
	// State is the poll payload; Changed reports whether bid_count differs from since.
	State(ctx context.Context, id string, since int) (*model.AuctionState, error)
	ListBids(ctx context.Context, id string, limit, offset int) (*ListResult[model.Bid], error)
	// Cancel stops an auction that has no bids yet.
	Cancel(ctx context.Context, actor Actor, id string) (*model.Auction, error)
	// CloseExpired activates due scheduled auctions and settles ended ones. Failures
	// on single auctions are joined into the returned error without stopping the pass.
	CloseExpired(ctx context.Context) (*CloseSummary, error)
}

type auctionService struct {
	auctions repository.AuctionRepository
	products repository.ProductRepository
	users    repository.UserRepository
	settings repository.SettingsRepository
	mail     mailer.Mailer
	metrics  *Metrics
	log      *zap.Logger
	now      func() time.Time
}

func NewAuctionService(
	auctions repository.AuctionRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	mail mailer.Mailer,
	metrics *Metrics,
	log *zap.Logger,
) AuctionService {
	return &auctionService{
		auctions: auctions,
		products: products,
		users:    users,
		settings: settings,
		mail:     mail,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

var errOpenAuction = fmt.Errorf("%w: product already has an open auction", ErrConflict)

func (s *auctionService) Create(ctx context.Context, actor Actor, in AuctionInput) (*model.Auction, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	now := s.now().UTC()
	if in.StartsAt.IsZero() || in.StartsAt.Before(now) {
		in.StartsAt = now
	}
	if !in.EndsAt.After(in.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidInput)
	}

	p, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, notFound(err)
	}
	if !canManage(actor, p.SellerID) {
		return nil, ErrForbidden
	}
	if p.SaleType != model.SaleAuction || p.Status != model.ProductPublished {
		return nil, fmt.Errorf("%w: product must be a published auction listing", ErrConflict)
	}
	open, err := s.auctions.HasOpen(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("check open auctions: %w", err)
	}
	if open {
		return nil, errOpenAuction
	}

	status := model.AuctionScheduled
	if !in.StartsAt.After(now) {
		status = model.AuctionActive
	}
	a := &model.Auction{
		ID:                 uuid.NewString(),
		ProductID:          p.ID,
		SellerID:           p.SellerID,
		StartingPriceCents: in.StartingPriceCents,
		MinIncrementCents:  in.MinIncrementCents,
		ReservePriceCents:  in.ReservePriceCents,
		StartsAt:           in.StartsAt.UTC(),
		EndsAt:             in.EndsAt.UTC(),
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created, err := s.auctions.Create(ctx, a)
	if errors.Is(err, repository.ErrDuplicate) {
		// lost the race to a concurrent Create on the same product
		return nil, errOpenAuction
	}
	if err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}
	return created, nil
}

func (s *auctionService) Get(ctx context.Context, id string) (*model.Auction, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.auctions.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *auctionService) List(ctx context.Context, status model.AuctionStatus, limit, offset int) (*ListResult[model.Auction], error) {
	res, err := s.auctions.List(ctx, status, page(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Auction]{Items: res.Items, Total: res.Total}, nil
}

func bidOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, model.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, model.ErrAuctionClosed):
		return "closed"
	case errors.Is(err, model.ErrSelfBid), errors.Is(err, model.ErrAlreadyHighest):
		return "rejected"
	default:
		return "error"
	}
}

func (s *auctionService) PlaceBid(ctx context.Context, actor Actor, id string, amountCents int64) (*BidResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return nil, err
	}
	if settings.MaintenanceMode {
		return nil, ErrMaintenance
	}

	var extended bool
	a, bid, err := s.auctions.ApplyBid(ctx, id, func(a *model.Auction) (*model.Bid, error) {
		now := s.now().UTC()
		ext, err := a.Accept(actor.UserID, amountCents, now, settings.AntiSnipeWindow(), settings.AuctionExtension())
		if err != nil {
			return nil, err
		}
		extended = ext
		return &model.Bid{
			ID:          uuid.NewString(),
			AuctionID:   a.ID,
			BidderID:    actor.UserID,
			AmountCents: amountCents,
			CreatedAt:   now,
		}, nil
	})
	s.metrics.bid(bidOutcome(err))
	if err != nil {
		return nil, notFound(err)
	}

	s.log.Info("bid_accepted",
		logger.RequestField(ctx),
		zap.String("auction_id", a.ID),
		zap.String("bidder_id", actor.UserID),
		zap.Int64("amount_cents", amountCents),
		zap.Bool("extended", extended),
		zap.Time("ends_at", a.EndsAt),
	)
	return &BidResult{Auction: a, Bid: bid, Extended: extended}, nil
}

func (s *auctionService) State(ctx context.Context, id string, since int) (*model.AuctionState, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st := model.StateOf(a, s.now().UTC(), since)
	return &st, nil
}

func (s *auctionService) ListBids(ctx context.Context, id string, limit, offset int) (*ListResult[model.Bid], error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	res, err := s.auctions.ListBids(ctx, id, page(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Bid]{Items: res.Items, Total: res.Total}, nil
}

func (s *auctionService) Cancel(ctx context.Context, actor Actor, id string) (*model.Auction, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	a, err := s.auctions.Mutate(ctx, id, func(a *model.Auction) error {
		if !canManage(actor, a.SellerID) {
			return ErrForbidden
		}
		if a.Status != model.AuctionScheduled && a.Status != model.AuctionActive {
			return fmt.Errorf("%w: auction is %s", ErrConflict, a.Status)
		}
		if a.BidCount > 0 {
			return fmt.Errorf("%w: auction already has bids", ErrConflict)
		}
		a.Status = model.AuctionCancelled
		a.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *auctionService) CloseExpired(ctx context.Context) (*CloseSummary, error) {
	now := s.now().UTC()
	starting, ending, err := s.auctions.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due auctions: %w", err)
	}

	var (
		summary CloseSummary
		errs    []error
	)
	for _, id := range starting {
		_, err := s.auctions.Mutate(ctx, id, func(a *model.Auction) error {
			if a.Activate(s.now().UTC()) {
				summary.Activated++
			}
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("activate auction %s: %w", id, err))
		}
	}

	settings, err := settingsOrDefault(ctx, s.settings)
	if err != nil {
		return &summary, errors.Join(append(errs, err)...)
	}
	for _, id := range ending {
		sold, err := s.settle(ctx, id, settings.BaseCurrency)
		if errors.Is(err, model.ErrAuctionRunning) {
			// extended by a late bid after ListDue ran
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("settle auction %s: %w", id, err))
			continue
		}
		summary.Settled++
		if sold {
			summary.Sold++
		}
	}
	return &summary, errors.Join(errs...)
}

// settle ends one auction, creating a pending order for the winner.
func (s *auctionService) settle(ctx context.Context, id, baseCurrency string) (bool, error) {
	a, err := s.auctions.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	p, err := s.products.FindByID(ctx, a.ProductID)
	if err != nil {
		return false, fmt.Errorf("load product: %w", err)
	}

	var order *model.Order
	settled, err := s.auctions.Settle(ctx, id, func(a *model.Auction) (*model.Order, error) {
		now := s.now().UTC()
		won, err := a.Settle(now)
		if err != nil || !won {
			return nil, err
		}
		price := a.CurrentBidCents
		order = &model.Order{
			ID:      uuid.NewString(),
			BuyerID: a.HighestBidderID,
			Items: []model.OrderItem{{
				ProductID:      p.ID,
				SellerID:       p.SellerID,
				Title:          p.Title,
				Quantity:       1,
				UnitPriceCents: price,
			}},
			SubtotalCents:        price,
			TotalCents:           price,
			Currency:             baseCurrency,
			ExchangeRate:         1,
			TotalInCurrencyCents: price,
			Status:               model.OrderPending,
			Source:               model.SourceAuction,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		return order, nil
	})
	if err != nil {
		return false, err
	}

	outcome := "unsold"
	if order != nil {
		outcome = "sold"
		s.metrics.orderCreated(string(model.SourceAuction))
		s.notifyWinner(ctx, order, p.Title)
	}
	s.metrics.auctionClosed(outcome)
	s.log.Info("auction_settled",
		zap.String("auction_id", settled.ID),
		zap.String("outcome", outcome),
		zap.Int("bid_count", settled.BidCount),
		zap.Int64("hammer_cents", settled.CurrentBidCents),
	)
	return order != nil, nil
}

func (s *auctionService) notifyWinner(ctx context.Context, o *model.Order, title string) {
	if s.mail == nil {
		return
	}
	u, err := s.users.FindByID(ctx, o.BuyerID)
	if err != nil {
		s.log.Warn("winner_lookup_failed", zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	msg, err := mailer.AuctionWon(u, title, o)
	if err == nil {
		err = s.mail.Send(ctx, msg)
	}
	if err != nil {
		s.log.Warn("winner_mail_failed", zap.String("order_id", o.ID), zap.Error(err))
	}
}
