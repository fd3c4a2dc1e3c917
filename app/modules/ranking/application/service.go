package rankingservice

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
)

// RankingService implements the ranking vote pipeline: daily vote guard,
// optimistic vote submission, and view aggregation.
type RankingService struct {
	repo     rankingdb.RankingDB
	eventBus eventbus.EventBus
	guard    *DailyVoteGuard
	views    *ViewStore
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
	clock    func() time.Time
}

var _ Service = (*RankingService)(nil)

// NewRankingService creates a new RankingService.
func NewRankingService(
	repo rankingdb.RankingDB,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *RankingService {
	return &RankingService{
		repo:     repo,
		eventBus: eventBus,
		guard:    NewDailyVoteGuard(logger, time.Now),
		views:    NewViewStore(),
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		clock:    time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to pin the calendar day.
func (s *RankingService) WithClock(clock func() time.Time) *RankingService {
	s.clock = clock
	s.guard.clock = clock
	return s
}
