package mocks

import (
	"context"

	"artmarket/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockSocialService struct {
	mock.Mock
}

func (m *MockSocialService) Announce(ctx context.Context, productID string) ([]model.SocialPost, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SocialPost), args.Error(1)
}

func (m *MockSocialService) History(ctx context.Context, productID string) ([]model.SocialPost, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SocialPost), args.Error(1)
}
