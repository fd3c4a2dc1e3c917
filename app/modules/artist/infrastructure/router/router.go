package artistrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"

	artistevents "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain/events"
	artisthandlers "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/handlers"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// ArtistRouter owns the artist module's watermill handler registrations.
type ArtistRouter struct {
	logger             *slog.Logger
	Router             *message.Router
	subscriber         eventbus.EventBus
	metricsBuilder     *metrics.PrometheusMetricsBuilder
	prometheusRegistry *prometheus.Registry
	metricsEnabled     bool
}

// NewArtistRouter creates a new instance of the router.
func NewArtistRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *ArtistRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &ArtistRouter{
		logger:             logger,
		Router:             router,
		subscriber:         subscriber,
		metricsBuilder:     metricsBuilder,
		prometheusRegistry: prometheusRegistry,
		metricsEnabled:     prometheusRegistry != nil && !inTestEnv,
	}
}

// Configure sets up middlewares and registers all module event handlers.
func (r *ArtistRouter) Configure(ctx context.Context, handlers artisthandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Artist")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	if err := r.subscriber.EnsureStream(ctx, artistevents.Stream, "artist.>"); err != nil {
		return fmt.Errorf("failed to ensure artist stream: %w", err)
	}

	r.Router.AddNoPublisherHandler(
		"artist.handle_discography_sync_requested",
		artistevents.DiscographySyncRequested,
		r.subscriber,
		handlers.HandleDiscographySyncRequested,
	)

	return nil
}
