// Package app assembles the backend: database, event bus, watermill routers,
// the ranking and artist modules, the River queue, and the HTTP API.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/spit-hierarchy/spit-backend/api"
	"github.com/spit-hierarchy/spit-backend/app/modules/artist"
	"github.com/spit-hierarchy/spit-backend/app/modules/ranking"
	rankingqueue "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/queue"
	"github.com/spit-hierarchy/spit-backend/config"
	"github.com/spit-hierarchy/spit-backend/db/bundb"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
	"github.com/spit-hierarchy/spit-backend/pkg/jwt"
	"golang.org/x/time/rate"
)

// App holds the application's long-lived components.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	RankingRouter *message.Router
	ArtistRouter  *message.Router
	RankingModule *ranking.Module
	ArtistModule  *artist.Module
	QueueService  rankingqueue.QueueService
	JWTService    jwt.Service

	httpServer *http.Server
	cancelFunc context.CancelFunc
}

// NewApp initializes every component and wires the modules together.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.NewObservability(observability.Config{
		ServiceName: "spit-backend",
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	logger := obs.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	routerConfig := message.RouterConfig{CloseTimeout: 30 * time.Second}

	rankingRouter, err := message.NewRouter(routerConfig, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ranking watermill router: %w", err)
	}
	artistRouter, err := message.NewRouter(routerConfig, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create artist watermill router: %w", err)
	}

	queueMetrics := observability.NewOperationMetrics(obs.Registry, "queue")
	queueService, err := rankingqueue.NewService(ctx, dbService.GetDB(), logger, cfg.Postgres.DSN, cfg.MusicBrainz.SyncEvery, queueMetrics, bus)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue service: %w", err)
	}

	rankingModule, err := ranking.NewRankingModule(ctx, cfg, obs, dbService.RankingDB, bus, rankingRouter, queueService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ranking module: %w", err)
	}

	artistModule, err := artist.NewArtistModule(ctx, cfg, obs, dbService.ArtistDB, bus, artistRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artist module: %w", err)
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL)

	apiHandlers := api.NewHandlers(rankingModule.RankingService, artistModule.ArtistService, queueService, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewRouter(apiHandlers, jwtService, obs.Registry, rate.Limit(cfg.HTTP.RateLimitRPS), cfg.HTTP.RateLimitBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &App{
		Config:        cfg,
		Observability: obs,
		DB:            dbService,
		EventBus:      bus,
		RankingRouter: rankingRouter,
		ArtistRouter:  artistRouter,
		RankingModule: rankingModule,
		ArtistModule:  artistModule,
		QueueService:  queueService,
		JWTService:    jwtService,
		httpServer:    httpServer,
	}, nil
}

// Run starts the watermill routers, the modules, and the HTTP listener. It
// blocks until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	ctx, cancel := context.WithCancel(ctx)
	app.cancelFunc = cancel
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.RankingRouter.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Ranking watermill router stopped", "error", err)
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.ArtistRouter.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Artist watermill router stopped", "error", err)
			cancel()
		}
	}()

	wg.Add(1)
	go app.RankingModule.Run(ctx, &wg)

	wg.Add(1)
	go app.ArtistModule.Run(ctx, &wg)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP API listening", "address", app.httpServer.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	wg.Wait()
	return nil
}

// Close releases every resource the app holds, in reverse dependency order.
func (app *App) Close() error {
	logger := app.Observability.Logger

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err := app.RankingModule.Close(); err != nil {
		logger.Error("Failed to close ranking module", "error", err)
	}
	if err := app.ArtistModule.Close(); err != nil {
		logger.Error("Failed to close artist module", "error", err)
	}

	if err := app.RankingRouter.Close(); err != nil {
		logger.Error("Failed to close ranking watermill router", "error", err)
	}
	if err := app.ArtistRouter.Close(); err != nil {
		logger.Error("Failed to close artist watermill router", "error", err)
	}

	if err := app.EventBus.Close(); err != nil {
		logger.Error("Failed to close event bus", "error", err)
	}

	if err := app.DB.GetDB().Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	logger.Info("Application shut down")
	return nil
}
