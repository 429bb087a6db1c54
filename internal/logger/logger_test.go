package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development", ""} {
		t.Run(env, func(t *testing.T) {
			l, err := New(env, time.UTC)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_NilLocation(t *testing.T) {
	l, err := New("production", nil)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestInitReplacesGlobal(t *testing.T) {
	before := zap.L()
	l, err := Init("development", time.UTC)
	require.NoError(t, err)
	defer zap.ReplaceGlobals(before)

	assert.Same(t, l, zap.L())
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Equal(t, "req-42", RequestField(ctx).String)
	assert.Empty(t, RequestID(context.Background()))
}
