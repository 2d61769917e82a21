package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"incywincy-api/internal/cache"
	"incywincy-api/internal/config"
	"incywincy-api/internal/handler"
	"incywincy-api/internal/logger"
	"incywincy-api/internal/repository"
	"incywincy-api/internal/router"
	"incywincy-api/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.MustLoad()
	logg := logger.Init(cfg.Log.Level, cfg.App.Environment, cfg.App.Name)
	logg.Info().Str("environment", cfg.App.Environment).Msg("starting Incy Wincy Cars API")

	toyRepo := openToyRepository(cfg, logg)
	defer toyRepo.Close()

	toyCache := openCache(cfg, logg)
	if toyCache != nil {
		defer toyCache.Close()
	}

	toyService := service.NewToyService(toyRepo, toyCache, cfg.Cache.TTL)

	r := router.New(router.Config{
		Handler:      handler.New(cfg.App.Version, toyService),
		ToyHandler:   handler.NewToyHandler(toyService),
		AdminHandler: handler.NewAdminHandler(toyService, cfg.Store.Type, cacheType(toyCache)),
		Logger:       logg,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logg.Info().Str("addr", cfg.Server.Address()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.Error().Err(err).Msg("server shutdown error")
	}

	logg.Info().Msg("server stopped")
}

// openToyRepository connects the configured store. A store that cannot be
// reached is replaced by a placeholder so the process stays up and reports
// not ready instead of exiting.
func openToyRepository(cfg *config.Config, logg zerolog.Logger) repository.ToyRepository {
	var (
		repo repository.ToyRepository
		err  error
	)

	switch cfg.Store.Type {
	case "mongodb", "mongo":
		repo, err = repository.NewMongoDBToyRepository(
			cfg.Store.MongoConnectionURI(),
			cfg.Store.MongoDatabase,
			cfg.Store.MongoCollection,
		)
	case "postgres", "postgresql":
		repo, err = repository.NewPostgresToyRepository(cfg.Store.PostgresDSN())
	case "mysql":
		repo, err = repository.NewMySQLToyRepository(cfg.Store.MySQLDSN())
	case "sqlite":
		repo, err = repository.NewSQLiteToyRepository(cfg.Store.Path)
	case "memory":
		repo = repository.NewMemoryToyRepository()
	default:
		logg.Fatal().Str("type", cfg.Store.Type).Msg("unknown TOY_DB_TYPE")
	}

	if err != nil {
		logg.Error().Err(err).Str("type", cfg.Store.Type).Msg("toy store unavailable, serving 503 until restart")
		return repository.NewUnavailableToyRepository(err)
	}
	logg.Info().Str("type", cfg.Store.Type).Msg("toy repository initialized")
	return repo
}

// openCache returns nil when caching is disabled or Redis is unreachable.
func openCache(cfg *config.Config, logg zerolog.Logger) cache.Cache {
	switch cfg.Cache.Type {
	case "redis":
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisPrefix,
		})
		if err != nil {
			logg.Warn().Err(err).Msg("redis cache unavailable, caching disabled")
			return nil
		}
		return c
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.MaxEntries)
	default:
		return nil
	}
}

func cacheType(c cache.Cache) string {
	switch c.(type) {
	case *cache.RedisCache:
		return "redis"
	case *cache.MemoryCache:
		return "memory"
	default:
		return "none"
	}
}
