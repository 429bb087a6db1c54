package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"artmarket/internal/service"
)

type countingCloser struct {
	calls atomic.Int32
	sum   *service.CloseSummary
	err   error
}

func (c *countingCloser) CloseExpired(ctx context.Context) (*service.CloseSummary, error) {
	c.calls.Add(1)
	return c.sum, c.err
}

func TestAuctionCloser_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	closer := &countingCloser{sum: &service.CloseSummary{}}
	w := NewAuctionCloser(closer, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return closer.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closer did not stop after cancel")
	}
}

func TestAuctionCloser_RunOnceLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	closer := &countingCloser{
		sum: &service.CloseSummary{Activated: 1, Settled: 2, Sold: 1},
		err: errors.New("settle auction a3: boom"),
	}
	w := NewAuctionCloser(closer, time.Minute, zap.New(core))

	w.RunOnce(context.Background())

	assert.Equal(t, int32(1), closer.calls.Load())
	failed := logs.FilterMessage("auction_close_failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	pass := logs.FilterMessage("auction_close_pass").All()
	require.Len(t, pass, 1)
	assert.EqualValues(t, 2, pass[0].ContextMap()["settled"])
}

func TestAuctionCloser_RunOnceSkipsCancelledContext(t *testing.T) {
	closer := &countingCloser{}
	w := NewAuctionCloser(closer, 0, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.RunOnce(ctx)

	assert.Zero(t, closer.calls.Load())
	assert.Equal(t, 15*time.Second, w.interval)
}
