// Package artistservice implements rapper profile management and the
// MusicBrainz discography sync.
package artistservice

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	artistdomain "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain"
	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
)

// staleSweepLimit caps how many profiles one periodic sweep refreshes, so a
// large roster drains over several sweeps instead of hammering MusicBrainz.
const staleSweepLimit = 10

// ArtistService implements Service on top of the artist repository and the
// MusicBrainz client.
type ArtistService struct {
	repo        artistdb.ArtistDB
	musicBrainz MusicBrainzClient
	eventBus    eventbus.EventBus
	logger      *slog.Logger
	metrics     observability.OperationMetrics
	tracer      trace.Tracer
	syncEvery   time.Duration
	clock       func() time.Time
}

var _ Service = (*ArtistService)(nil)

// NewArtistService creates a new ArtistService. syncEvery is the staleness
// cutoff used by the periodic sweep.
func NewArtistService(
	repo artistdb.ArtistDB,
	musicBrainz MusicBrainzClient,
	eventBus eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	syncEvery time.Duration,
) *ArtistService {
	return &ArtistService{
		repo:        repo,
		musicBrainz: musicBrainz,
		eventBus:    eventBus,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		syncEvery:   syncEvery,
		clock:       time.Now,
	}
}

// WithClock overrides the service clock. Tests use it to pin staleness.
func (s *ArtistService) WithClock(clock func() time.Time) *ArtistService {
	s.clock = clock
	return s
}

// GetRapper returns one rapper profile.
func (s *ArtistService) GetRapper(ctx context.Context, rapperID shared.RapperID) (*artistdomain.Rapper, error) {
	rapper, err := s.repo.GetRapper(ctx, rapperID)
	if err != nil {
		return nil, err
	}
	return toDomainRapper(rapper), nil
}

// ListRappers returns every rapper profile.
func (s *ArtistService) ListRappers(ctx context.Context) ([]artistdomain.Rapper, error) {
	rows, err := s.repo.ListRappers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]artistdomain.Rapper, 0, len(rows))
	for i := range rows {
		out = append(out, *toDomainRapper(&rows[i]))
	}
	return out, nil
}

// ListReleases returns a rapper's stored discography.
func (s *ArtistService) ListReleases(ctx context.Context, rapperID shared.RapperID) ([]artistdomain.Release, error) {
	rows, err := s.repo.ListReleases(ctx, rapperID)
	if err != nil {
		return nil, err
	}
	return toDomainReleases(rows), nil
}

func toDomainRapper(r *artistdb.Rapper) *artistdomain.Rapper {
	return &artistdomain.Rapper{
		ID:            r.ID,
		Name:          r.Name,
		Slug:          r.Slug,
		MusicBrainzID: r.MusicBrainzID,
		Verified:      r.Verified,
		SyncedAt:      r.SyncedAt,
	}
}

func toDomainReleases(rows []artistdb.Release) []artistdomain.Release {
	out := make([]artistdomain.Release, 0, len(rows))
	for _, rel := range rows {
		out = append(out, artistdomain.Release{
			MBID:          rel.MBID,
			RapperID:      rel.RapperID,
			Title:         rel.Title,
			ReleaseType:   rel.ReleaseType,
			FirstReleased: rel.FirstReleased,
		})
	}
	return out
}
