package artistservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"github.com/google/uuid"

	artistevents "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain/events"
	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
)

// SyncDiscography refreshes one rapper's discography from MusicBrainz.
//
// The MusicBrainz ID is resolved by name search on first sync and stored, so
// later syncs skip the search. A successful sync publishes ArtistChanged for
// the ranking views and DiscographySynced for anything auditing the sweep.
func (s *ArtistService) SyncDiscography(ctx context.Context, rapperID shared.RapperID) (SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, "artist.sync_discography")
	defer span.End()

	start := s.clock()
	s.metrics.RecordOperationAttempt(ctx, "sync_discography")

	if rapperID == uuid.Nil {
		s.metrics.RecordOperationFailure(ctx, "sync_discography")
		return SyncResult{}, ErrMissingRapper
	}
	span.SetAttributes(attribute.String("rapper_id", rapperID.String()))

	rapper, err := s.repo.GetRapper(ctx, rapperID)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "sync_discography")
		return SyncResult{}, fmt.Errorf("failed to load rapper: %w", err)
	}

	mbid := rapper.MusicBrainzID
	if mbid == "" {
		mbid, err = s.musicBrainz.SearchArtist(ctx, rapper.Name)
		if err != nil {
			s.metrics.RecordOperationFailure(ctx, "sync_discography")
			return SyncResult{}, fmt.Errorf("failed to resolve MusicBrainz id for %q: %w", rapper.Name, err)
		}
	}

	groups, err := s.musicBrainz.BrowseReleaseGroups(ctx, mbid)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "sync_discography")
		return SyncResult{}, fmt.Errorf("failed to browse release groups: %w", err)
	}

	releases := make([]artistdb.Release, 0, len(groups))
	for _, g := range groups {
		releases = append(releases, artistdb.Release{
			MBID:          g.ID,
			RapperID:      rapperID,
			Title:         g.Title,
			ReleaseType:   g.PrimaryType,
			FirstReleased: g.FirstReleaseDate,
		})
	}

	written, err := s.repo.UpsertReleases(ctx, releases)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "sync_discography")
		return SyncResult{}, err
	}

	syncedAt := s.clock().UTC()
	if err := s.repo.MarkSynced(ctx, rapperID, mbid, syncedAt); err != nil {
		s.metrics.RecordOperationFailure(ctx, "sync_discography")
		return SyncResult{}, err
	}

	s.publishSynced(ctx, rapperID, written, syncedAt)

	s.metrics.RecordOperationSuccess(ctx, "sync_discography")
	s.metrics.RecordOperationDuration(ctx, "sync_discography", s.clock().Sub(start))

	s.logger.InfoContext(ctx, "Discography synced",
		slog.String("rapper_id", rapperID.String()),
		slog.String("musicbrainz_id", mbid),
		slog.Int("releases", written),
	)
	return SyncResult{RapperID: rapperID, Releases: written}, nil
}

// SyncStaleProfiles refreshes the rappers whose last sync is older than the
// configured cadence. One failed profile does not stop the sweep; the first
// error is reported after the rest have run.
func (s *ArtistService) SyncStaleProfiles(ctx context.Context) ([]SyncResult, error) {
	ctx, span := s.tracer.Start(ctx, "artist.sync_stale_profiles")
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, "sync_stale_profiles")

	cutoff := s.clock().UTC().Add(-s.syncEvery)
	stale, err := s.repo.ListStaleRappers(ctx, cutoff, staleSweepLimit)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "sync_stale_profiles")
		return nil, fmt.Errorf("failed to list stale rappers: %w", err)
	}
	if len(stale) == 0 {
		s.metrics.RecordOperationSuccess(ctx, "sync_stale_profiles")
		return nil, nil
	}

	var results []SyncResult
	var firstErr error
	for _, rapper := range stale {
		result, err := s.SyncDiscography(ctx, rapper.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Stale profile sync failed",
				slog.String("rapper_id", rapper.ID.String()),
				slog.Any("error", err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, result)
	}

	if firstErr != nil {
		s.metrics.RecordOperationFailure(ctx, "sync_stale_profiles")
		return results, firstErr
	}
	s.metrics.RecordOperationSuccess(ctx, "sync_stale_profiles")
	return results, nil
}

// publishSynced emits the two post-sync notifications. Publish failures are
// logged, not returned: the database write is already durable and the next
// sweep re-announces.
func (s *ArtistService) publishSynced(ctx context.Context, rapperID shared.RapperID, releases int, syncedAt time.Time) {
	correlationID := eventutil.CorrelationIDFromCtx(ctx)

	changed, err := eventutil.NewMessage(correlationID, artistevents.ArtistChangedPayload{RapperID: rapperID})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build ArtistChanged message", slog.Any("error", err))
	} else if err := s.eventBus.Publish(artistevents.ArtistChanged, changed); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ArtistChanged", slog.Any("error", err))
	}

	synced, err := eventutil.NewMessage(correlationID, artistevents.DiscographySyncedPayload{
		RapperID: rapperID,
		Releases: releases,
		SyncedAt: syncedAt,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build DiscographySynced message", slog.Any("error", err))
	} else if err := s.eventBus.Publish(artistevents.DiscographySynced, synced); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish DiscographySynced", slog.Any("error", err))
	}
}
