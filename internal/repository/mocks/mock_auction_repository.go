package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"artmarket/internal/model"
	"artmarket/internal/repository"
)

// MockAuctionRepository runs callbacks against the auction configured with
// On("Lock", id), mimicking the row lock of the real repository. Writes are
// recorded through the Saved* fields for assertions.
type MockAuctionRepository struct {
	mock.Mock
	SavedBids   []model.Bid
	SavedOrders []model.Order
}

func (m *MockAuctionRepository) Create(ctx context.Context, a *model.Auction) (*model.Auction, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Auction), args.Error(1)
}

func (m *MockAuctionRepository) HasOpen(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuctionRepository) FindByID(ctx context.Context, id string) (*model.Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Auction), args.Error(1)
}

func (m *MockAuctionRepository) List(ctx context.Context, status model.AuctionStatus, pq repository.PageQuery) (*repository.PageResult[model.Auction], error) {
	args := m.Called(ctx, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Auction]), args.Error(1)
}

func (m *MockAuctionRepository) ListBids(ctx context.Context, auctionID string, pq repository.PageQuery) (*repository.PageResult[model.Bid], error) {
	args := m.Called(ctx, auctionID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Bid]), args.Error(1)
}

// lock returns a copy of the configured auction so a failed callback leaves it untouched.
func (m *MockAuctionRepository) lock(id string) (*model.Auction, error) {
	args := m.MethodCalled("Lock", id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	a := *args.Get(0).(*model.Auction)
	return &a, nil
}

func (m *MockAuctionRepository) ApplyBid(_ context.Context, auctionID string, fn repository.BidFunc) (*model.Auction, *model.Bid, error) {
	a, err := m.lock(auctionID)
	if err != nil {
		return nil, nil, err
	}
	b, err := fn(a)
	if err != nil {
		return nil, nil, err
	}
	m.SavedBids = append(m.SavedBids, *b)
	return a, b, nil
}

func (m *MockAuctionRepository) Mutate(_ context.Context, auctionID string, fn repository.MutateFunc) (*model.Auction, error) {
	a, err := m.lock(auctionID)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (m *MockAuctionRepository) Settle(_ context.Context, auctionID string, fn repository.SettleFunc) (*model.Auction, error) {
	a, err := m.lock(auctionID)
	if err != nil {
		return nil, err
	}
	o, err := fn(a)
	if err != nil {
		return nil, err
	}
	if o != nil {
		m.SavedOrders = append(m.SavedOrders, *o)
		a.WinnerOrderID = o.ID
	}
	return a, nil
}

func (m *MockAuctionRepository) ListDue(ctx context.Context, now time.Time) ([]string, []string, error) {
	args := m.Called(ctx, now)
	var starting, ending []string
	if v := args.Get(0); v != nil {
		starting = v.([]string)
	}
	if v := args.Get(1); v != nil {
		ending = v.([]string)
	}
	return starting, ending, args.Error(2)
}
