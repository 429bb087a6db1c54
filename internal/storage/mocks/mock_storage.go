package mocks

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"artmarket/internal/storage"
)

// MockStorage is a testify mock of storage.Storage. Keys of successful Put
// calls are kept in Stored in call order.
type MockStorage struct {
	mock.Mock

	mu     sync.Mutex
	Stored []string
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, r, opt)
	info, _ := args.Get(0).(storage.ObjectInfo)
	if err := args.Error(1); err != nil {
		return storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	m.Stored = append(m.Stored, key)
	m.mu.Unlock()
	return info, nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
