package mocks

import (
	"context"

	"artmarket/internal/model"
	"artmarket/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockAuctionService struct {
	mock.Mock
}

func (m *MockAuctionService) auction(args mock.Arguments) (*model.Auction, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Auction), args.Error(1)
}

func (m *MockAuctionService) Create(ctx context.Context, actor service.Actor, in service.AuctionInput) (*model.Auction, error) {
	return m.auction(m.Called(ctx, actor, in))
}

func (m *MockAuctionService) Get(ctx context.Context, id string) (*model.Auction, error) {
	return m.auction(m.Called(ctx, id))
}

func (m *MockAuctionService) List(ctx context.Context, status model.AuctionStatus, limit, offset int) (*service.ListResult[model.Auction], error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Auction]), args.Error(1)
}

func (m *MockAuctionService) PlaceBid(ctx context.Context, actor service.Actor, id string, amountCents int64) (*service.BidResult, error) {
	args := m.Called(ctx, actor, id, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BidResult), args.Error(1)
}

func (m *MockAuctionService) State(ctx context.Context, id string, since int) (*model.AuctionState, error) {
	args := m.Called(ctx, id, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuctionState), args.Error(1)
}

func (m *MockAuctionService) ListBids(ctx context.Context, id string, limit, offset int) (*service.ListResult[model.Bid], error) {
	args := m.Called(ctx, id, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Bid]), args.Error(1)
}

func (m *MockAuctionService) Cancel(ctx context.Context, actor service.Actor, id string) (*model.Auction, error) {
	return m.auction(m.Called(ctx, actor, id))
}

func (m *MockAuctionService) CloseExpired(ctx context.Context) (*service.CloseSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CloseSummary), args.Error(1)
}
