package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/akashmaru/RaftLabs-PracticalTest/internal/config"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/cache"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/client"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/logging"
	"github.com/akashmaru/RaftLabs-PracticalTest/pkg/users"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("users proxy stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.LoggingConfig("users-proxy"))

	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	apiClient, err := client.New(cfg.ClientConfig())
	if err != nil {
		return err
	}

	svc := users.NewService(apiClient, store,
		users.WithLogger(logging.NewLogger("users")),
		users.WithTTL(cfg.CacheTTL),
	)

	router := newRouter(svc, logging.NewLogger("http"), routerOptions{
		Timeout:   cfg.Timeout() + 5*time.Second,
		RateLimit: cfg.RateLimit,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.ListenAddr).
			Str("base_url", apiClient.BaseURL()).
			Str("cache_backend", cfg.CacheBackend).
			Msg("Starting users proxy")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("Shutting down users proxy")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newStore builds the configured cache backend and its cleanup func.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		store := cache.NewRedisStore(redisClient)
		log.Info().Str("redis_addr", cfg.RedisAddr).Str("namespace", store.Namespace()).Msg("Using redis cache")
		return store, func() { _ = redisClient.Close() }, nil
	default:
		store := cache.NewMemoryStore()
		return store, func() { _ = store.Close() }, nil
	}
}
