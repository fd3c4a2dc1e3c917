package artist

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	artistservice "github.com/spit-hierarchy/spit-backend/app/modules/artist/application"
	artisthandlers "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/handlers"
	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	artistrouter "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/router"
	"github.com/spit-hierarchy/spit-backend/config"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
)

// Module wires the artist service and its watermill handlers into one
// startable unit.
type Module struct {
	EventBus      eventbus.EventBus
	ArtistService artistservice.Service
	ArtistRouter  *artistrouter.ArtistRouter
	config        *config.Config
	observability *observability.Observability
	cancelFunc    context.CancelFunc
}

// NewArtistModule creates a new instance of the artist module.
func NewArtistModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	artistDB artistdb.ArtistDB,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	metrics := observability.NewOperationMetrics(obs.Registry, "artist")

	logger.InfoContext(ctx, "artist.NewArtistModule called")

	musicBrainz := artistservice.NewMusicBrainzClient(cfg.MusicBrainz.BaseURL, cfg.MusicBrainz.UserAgent)
	service := artistservice.NewArtistService(artistDB, musicBrainz, eventBus, logger, metrics, obs.Tracer, cfg.MusicBrainz.SyncEvery)
	handlers := artisthandlers.NewArtistHandlers(service, logger)

	moduleRouter := artistrouter.NewArtistRouter(logger, router, eventBus, obs.Registry)
	if err := moduleRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure artist router: %w", err)
	}

	return &Module{
		EventBus:      eventBus,
		ArtistService: service,
		ArtistRouter:  moduleRouter,
		config:        cfg,
		observability: obs,
	}, nil
}

// Run starts the artist module and blocks until the context is canceled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting artist module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Artist module goroutine stopped")
}

// Close stops the artist module and cleans up resources.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping artist module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	logger.Info("Artist module stopped")
	return nil
}
