// @title Restaurant POS API
// @version 1.0
// @description 点餐、结算与会员余额接口
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/restaurant-pos/config"
	"github.com/d60-Lab/restaurant-pos/internal/api"
	"github.com/d60-Lab/restaurant-pos/internal/api/handler"
	"github.com/d60-Lab/restaurant-pos/internal/auth"
	"github.com/d60-Lab/restaurant-pos/internal/cache"
	"github.com/d60-Lab/restaurant-pos/internal/repository"
	"github.com/d60-Lab/restaurant-pos/internal/seed"
	"github.com/d60-Lab/restaurant-pos/internal/service"
	"github.com/d60-Lab/restaurant-pos/pkg/database"
	"github.com/d60-Lab/restaurant-pos/pkg/logger"
	"github.com/d60-Lab/restaurant-pos/pkg/monitoring"
	"github.com/d60-Lab/restaurant-pos/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	var paths []string
	if *configPath != "" {
		paths = append(paths, *configPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	gin.SetMode(cfg.Server.Mode)

	if err := monitoring.Init(cfg.Sentry); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer monitoring.Flush()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := repository.AutoMigrate(db); err != nil {
		return err
	}
	store := repository.NewStore(db)

	// redis 可选：关闭时菜单不缓存、后厨事件不推送
	var (
		menuCache *cache.MenuCache
		feed      *cache.KitchenFeed
		notifier  *service.KitchenNotifier
	)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, continuing", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		menuCache = cache.NewMenuCache(rdb, cfg.Redis.MenuTTL)
		feed = cache.NewKitchenFeed(rdb)
		notifier = service.NewKitchenNotifier(feed, 1024)
		stop := notifier.Start(2)
		defer func() {
			logger.Info("kitchen notifier stopping", zap.Int("pending", notifier.QueueLen()))
			sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := stop(sctx); err != nil {
				logger.Warn("kitchen notifier drain incomplete", zap.Int("pending", notifier.QueueLen()), zap.Error(err))
			}
		}()
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	authSvc := service.NewAuthService(store, tokens)
	menuSvc := service.NewMenuService(store, menuCache)
	tableSvc := service.NewTableService(store)

	if cfg.Seed.Enabled {
		if err := seed.Run(ctx, cfg.Seed, store, authSvc, menuSvc, tableSvc); err != nil {
			return err
		}
	}

	h := handler.New(handler.Deps{
		Orders:    service.NewOrderService(store, notifier),
		Recharges: service.NewRechargeService(store),
		Members:   service.NewMemberService(store),
		Menu:      menuSvc,
		Tables:    tableSvc,
		Auth:      authSvc,
		Dashboard: service.NewDashboardService(store),
		Kitchen:   feed,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(cfg, h, tokens),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
