package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/queue"
	"storefront/internal/router"
	"storefront/internal/session"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.Production)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newLogger(production bool) *slog.Logger {
	if production {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run(cfg config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. SQLite, table created on first start
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var rdb *rd.Client
	if cfg.NeedsRedis() {
		rdb = rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}

	// 2. sessions + admin guard
	sessions, err := session.NewStore(session.StoreType(cfg.SessionStore),
		session.WithRedisClient(rdb),
		session.WithTTL(cfg.SessionTTL),
	)
	if err != nil {
		return err
	}
	defer sessions.Close()
	guard := auth.NewGuard(auth.Credentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Token:    cfg.AdminToken,
	}, sessions)

	// 3. catalog, optionally feeding the change stream
	opts := []catalog.Option{catalog.WithLogger(logger)}
	if cfg.FeedEnabled() {
		producer := queue.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		relay := queue.NewRelay(rdb, producer, cfg.CatalogEventStream, cfg.CatalogEventGroup, cfg.CatalogEventConsumer, logger)
		go relay.Run(ctx)
		opts = append(opts, catalog.WithNotifier(queue.NewStreamNotifier(rdb, cfg.CatalogEventStream)))
	}
	svc := catalog.NewService(store.NewProductStore(db), guard, opts...)

	// 4. HTTP
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if !cfg.Production {
		r.Use(gin.Logger())
	}
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		return err
	}

	deps := router.Deps{
		Catalog: svc,
		Guard:   guard,
		Sessions: middleware.NewSessionManager(sessions, session.NewCookieCodec(cfg.SessionSecret, cfg.SessionTTL),
			middleware.CookieOptions{Secure: cfg.CookieSecure}, logger),
		Logger:     logger,
		Production: cfg.Production,
	}
	if cfg.ReadRateLimit > 0 {
		deps.ReadLimit = middleware.RedisRateLimit(rdb, cfg.ReadRateLimit, cfg.ReadRateWindow, logger)
	}
	router.Setup(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "production", cfg.Production)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
