package rankingrouter

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
	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	rankinghandlers "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/handlers"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// RankingRouter owns the ranking module's watermill handler registrations.
type RankingRouter struct {
	logger             *slog.Logger
	Router             *message.Router
	subscriber         eventbus.EventBus
	metricsBuilder     *metrics.PrometheusMetricsBuilder
	prometheusRegistry *prometheus.Registry
	metricsEnabled     bool
}

// NewRankingRouter creates a new instance of the router.
func NewRankingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	prometheusRegistry *prometheus.Registry,
) *RankingRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &RankingRouter{
		logger:             logger,
		Router:             router,
		subscriber:         subscriber,
		metricsBuilder:     metricsBuilder,
		prometheusRegistry: prometheusRegistry,
		metricsEnabled:     prometheusRegistry != nil && !inTestEnv,
	}
}

// Configure sets up middlewares and registers all module event handlers.
func (r *RankingRouter) Configure(ctx context.Context, handlers rankinghandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Ranking")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	if err := r.subscriber.EnsureStream(ctx, rankingevents.Stream, "ranking.>"); err != nil {
		return fmt.Errorf("failed to ensure ranking stream: %w", err)
	}
	// The module also consumes artist change notifications, so the artist
	// stream must exist before this router starts regardless of module
	// startup order.
	if err := r.subscriber.EnsureStream(ctx, artistevents.Stream, "artist.>"); err != nil {
		return fmt.Errorf("failed to ensure artist stream: %w", err)
	}

	r.Router.AddNoPublisherHandler(
		"ranking.handle_vote_requested",
		rankingevents.VoteRequested,
		r.subscriber,
		handlers.HandleVoteRequested,
	)
	r.Router.AddNoPublisherHandler(
		"ranking.handle_votes_changed",
		rankingevents.VotesChanged,
		r.subscriber,
		handlers.HandleVotesChanged,
	)
	r.Router.AddNoPublisherHandler(
		"ranking.handle_artist_changed",
		artistevents.ArtistChanged,
		r.subscriber,
		handlers.HandleArtistChanged,
	)
	r.Router.AddNoPublisherHandler(
		"ranking.handle_snapshot_requested",
		rankingevents.SnapshotRequested,
		r.subscriber,
		handlers.HandleSnapshotRequested,
	)

	return nil
}
