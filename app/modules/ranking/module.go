package ranking

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
	rankinghandlers "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/handlers"
	rankingqueue "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/queue"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	rankingrouter "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/router"
	"github.com/spit-hierarchy/spit-backend/config"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
)

// Module wires the ranking service, its watermill handlers, and the River
// queue into one startable unit.
type Module struct {
	EventBus       eventbus.EventBus
	RankingService rankingservice.Service
	RankingRouter  *rankingrouter.RankingRouter
	QueueService   rankingqueue.QueueService
	config         *config.Config
	observability  *observability.Observability
	cancelFunc     context.CancelFunc
}

// NewRankingModule creates a new instance of the ranking module.
func NewRankingModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	rankingDB rankingdb.RankingDB,
	eventBus eventbus.EventBus,
	router *message.Router,
	queueService rankingqueue.QueueService,
) (*Module, error) {
	logger := obs.Logger
	metrics := observability.NewOperationMetrics(obs.Registry, "ranking")

	logger.InfoContext(ctx, "ranking.NewRankingModule called")

	service := rankingservice.NewRankingService(rankingDB, eventBus, logger, metrics, obs.Tracer)
	handlers := rankinghandlers.NewRankingHandlers(service, logger)

	rankingRouter := rankingrouter.NewRankingRouter(logger, router, eventBus, obs.Registry)
	if err := rankingRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure ranking router: %w", err)
	}

	return &Module{
		EventBus:       eventBus,
		RankingService: service,
		RankingRouter:  rankingRouter,
		QueueService:   queueService,
		config:         cfg,
		observability:  obs,
	}, nil
}

// Run starts the ranking module and blocks until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting ranking module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.QueueService != nil {
		if err := m.QueueService.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start ranking queue service", "error", err)
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Ranking module goroutine stopped")
}

// Close stops the ranking module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping ranking module")

	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			logger.Error("Failed to stop ranking queue service", "error", err)
		}
	}

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Ranking module stopped")
	return nil
}
