package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"listingflow/auth"
	"listingflow/broker"
	"listingflow/config"
	"listingflow/db"
	"listingflow/lead"
	"listingflow/metrics"
	"listingflow/property"
	"listingflow/search"
	"listingflow/storage"
)

const cleanupInterval = time.Hour

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := storage.New(storage.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	brokerRepo := broker.NewRepository(pool)
	propertyRepo := property.NewRepository(pool)
	refreshStore := auth.NewRefreshTokenStore(pool)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret)

	server := &Server{
		logger:          logger,
		authService:     auth.NewService(brokerRepo, refreshStore, issuer),
		brokerService:   broker.NewService(brokerRepo),
		propertyService: property.NewService(propertyRepo, brokerRepo),
		searchService:   search.NewService(search.NewRepository(pool)),
		leadService:     lead.NewService(lead.NewRepository(pool), propertyRepo),
		uploader:        store,
		pool:            pool,
		allowedOrigins:  cfg.AllowedOrigins,
		exposeErrors:    cfg.ExposeErrors,
	}

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.ServerAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Expired refresh tokens only stop verifying; this loop reclaims the rows.
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed, err := refreshStore.CleanupExpired(ctx)
				if err != nil {
					logger.Error("cleanup expired tokens", "error", err)
					continue
				}
				metrics.RevokedTokensCleaned.Add(float64(removed))
				if removed > 0 {
					logger.Info("cleaned expired refresh tokens", "removed", removed)
				}
			}
		}
	})

	return g.Wait()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
