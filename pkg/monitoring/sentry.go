package monitoring

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/config"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
)

var enabled bool

// Init 初始化 Sentry；DSN 为空时不启用
func Init(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
	}); err != nil {
		return err
	}
	enabled = true
	return nil
}

// Enabled 是否已接入 Sentry
func Enabled() bool { return enabled }

// CaptureError 上报基础设施类错误，附带请求上下文里的 hub（如有）
func CaptureError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logger.Error("infrastructure error", zap.Error(err))
	if !enabled {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}

// Flush 退出前等待事件发送完成
func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}
