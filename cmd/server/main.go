package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"librarycatalog/internal/app"
	"librarycatalog/internal/config"
	"librarycatalog/internal/ratelimit"
	"librarycatalog/internal/server"
	"librarycatalog/internal/util"
	"librarycatalog/pkg/ai"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	generator := ai.NewInferenceClient(cfg.HFAPIURL, cfg.HFAPIToken, time.Duration(cfg.ChatTimeoutSeconds)*time.Second)
	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		Generator:   generator,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer func() {
		if err := appCore.Store().Close(); err != nil {
			logger.Error("close store", "err", err)
		}
	}()

	if err := appCore.SeedCatalog(); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	var chatLimiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.ChatRateLimit > 0 {
		window := time.Duration(cfg.ChatRateWindowSeconds) * time.Second
		if window <= 0 {
			window = time.Minute
		}
		chatLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.ChatRateLimit, window)
		if err != nil {
			log.Fatalf("failed to init chat rate limiter: %v", err)
		}
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		ChatLimiter:    chatLimiter,
		TrustedProxies: trustedProxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("catalog server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}
