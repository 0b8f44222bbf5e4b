package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/octobees/campsites/api/internal/auth"
	"github.com/octobees/campsites/api/internal/config"
	"github.com/octobees/campsites/api/internal/database"
	"github.com/octobees/campsites/api/internal/entity"
	"github.com/octobees/campsites/api/internal/handler"
	"github.com/octobees/campsites/api/internal/logger"
	"github.com/octobees/campsites/api/internal/metrics"
	"github.com/octobees/campsites/api/internal/repository"
	"github.com/octobees/campsites/api/internal/router"
	"github.com/octobees/campsites/api/internal/service"
)

var (
	version  = "dev"
	revision = ""
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Build(logger.Config{Service: "campsites-api"}, os.Stderr)
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Build(logger.Config{
		Level:   cfg.LogLevel,
		Console: cfg.LogConsole,
		Service: "campsites-api",
	}, os.Stdout)
	ctx := log.WithContext(context.Background())

	provider := metrics.New(metrics.BuildInfo{Version: version, Revision: revision})

	campsitesRepo, placesRepo, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	campsitesService := service.NewCampsitesService(campsitesRepo, cfg.PhoneRegion, provider)
	placesService := service.NewPlacesService(placesRepo)

	var jwtManager *auth.JWTManager
	if cfg.WriteAuthEnabled() {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	} else {
		log.Warn().Msg("JWT_SECRET is not set, write endpoints are unauthenticated")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, log, provider, jwtManager, router.Handlers{
		Campsites: handler.NewCampsitesHandler(campsitesService),
		Places:    handler.NewPlacesHandler(placesService),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("listening")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore builds the repositories for the configured driver and returns a
// function releasing their resources.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Repository[entity.Campsite], repository.Repository[entity.GeographicalName], func()) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return repository.NewMemoryRepository(entity.CampsiteSchema),
			repository.NewMemoryRepository(entity.PlaceSchema),
			func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if cfg.AutoMigrate {
		applied, err := database.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().Strs("applied", applied).Msg("database migrated")
	}

	return repository.NewPGXCampsitesRepository(pool), repository.NewPGXPlacesRepository(pool), pool.Close
}
