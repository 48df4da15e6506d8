package monitoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/restaurant-pos/config"
)

func TestInit_EmptyDSNDisabled(t *testing.T) {
	require.NoError(t, Init(config.SentryConfig{}))
	assert.False(t, Enabled())

	// 未启用时只记日志，不应 panic
	CaptureError(context.Background(), errors.New("boom"))
	CaptureError(context.Background(), nil)
	Flush()
}

func TestInit_BadDSN(t *testing.T) {
	assert.Error(t, Init(config.SentryConfig{DSN: "::not a dsn"}))
	assert.False(t, Enabled())
}
