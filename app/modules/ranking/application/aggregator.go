package rankingservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
)

// GetRankingView returns the cached view for a ranking, rebuilding it on a
// cache miss.
func (s *RankingService) GetRankingView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
	if view, ok := s.views.Get(rankingID); ok {
		return view, nil
	}
	return s.RebuildView(ctx, rankingID)
}

// RebuildView recomputes a ranking's view from raw vote rows and replaces
// the cached copy wholesale. The ranking must exist; an unknown ID surfaces
// ErrRankingNotFound instead of an empty view. Any read failure propagates;
// no partial view is ever stored.
func (s *RankingService) RebuildView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.rebuild_view")
	defer span.End()

	start := s.clock()
	s.metrics.RecordOperationAttempt(ctx, "rebuild_view")

	if _, err := s.repo.GetRanking(ctx, rankingID); err != nil {
		s.metrics.RecordOperationFailure(ctx, "rebuild_view")
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}

	items, err := s.repo.ListItems(ctx, rankingID)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "rebuild_view")
		return nil, fmt.Errorf("failed to load ranking items: %w", err)
	}

	votes, err := s.repo.ListVotes(ctx, rankingID)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "rebuild_view")
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	previous, err := s.repo.LatestPositions(ctx, rankingID)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "rebuild_view")
		return nil, fmt.Errorf("failed to load previous positions: %w", err)
	}

	view := rankingdomain.ComputeView(rankingID, toDomainItems(items), toDomainVotes(votes), previous, start)
	s.views.Reconcile(view)

	s.logger.InfoContext(ctx, "Ranking view recomputed",
		slog.String("ranking_id", rankingID.String()),
		slog.Int("items", len(view.Entries)),
		slog.Int("votes", len(votes)),
	)

	s.publishViewUpdated(ctx, view)

	s.metrics.RecordOperationSuccess(ctx, "rebuild_view")
	s.metrics.RecordOperationDuration(ctx, "rebuild_view", time.Since(start))

	return view.Clone(), nil
}

// RebuildForRapper recomputes every ranking that carries the rapper. Used
// when a rapper-level change notification arrives.
func (s *RankingService) RebuildForRapper(ctx context.Context, rapperID shared.RapperID) error {
	ids, err := s.repo.ListRankingIDsByRapper(ctx, rapperID)
	if err != nil {
		return fmt.Errorf("failed to find rankings for rapper: %w", err)
	}

	var firstErr error
	for _, id := range ids {
		if _, err := s.RebuildView(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "Recompute failed for ranking",
				slog.String("ranking_id", id.String()),
				slog.Any("error", err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// SnapshotRanking persists the current dynamic positions of one ranking as
// a new snapshot generation. Deltas on subsequent recomputes are measured
// against this baseline.
func (s *RankingService) SnapshotRanking(ctx context.Context, rankingID shared.RankingID) error {
	view, err := s.RebuildView(ctx, rankingID)
	if err != nil {
		return fmt.Errorf("failed to rebuild view for snapshot: %w", err)
	}

	now := s.clock()
	entries := make([]rankingdb.SnapshotEntry, 0, len(view.Entries))
	for _, e := range view.Entries {
		entries = append(entries, rankingdb.SnapshotEntry{
			RankingID:       rankingID,
			RapperID:        e.RapperID,
			DynamicPosition: e.DynamicPosition,
			TotalVotes:      e.TotalVotes,
			SnapshotAt:      now,
		})
	}

	if err := s.repo.SaveSnapshot(ctx, entries); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "Ranking snapshot saved",
		slog.String("ranking_id", rankingID.String()),
		slog.Int("entries", len(entries)),
	)
	return nil
}

// SnapshotAll snapshots every ranking. Failures are collected per ranking
// so one broken ranking does not starve the rest of the batch.
func (s *RankingService) SnapshotAll(ctx context.Context) error {
	ids, err := s.repo.ListRankingIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rankings for snapshot: %w", err)
	}

	var firstErr error
	for _, id := range ids {
		if err := s.SnapshotRanking(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "Snapshot failed for ranking",
				slog.String("ranking_id", id.String()),
				slog.Any("error", err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *RankingService) publishViewUpdated(ctx context.Context, view *rankingdomain.View) {
	payload := rankingevents.ViewUpdatedPayload{
		RankingID:  view.RankingID,
		ItemCount:  len(view.Entries),
		ComputedAt: view.ComputedAt,
	}

	msg, err := eventutil.NewMessage(eventutil.CorrelationIDFromCtx(ctx), payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build ViewUpdated message", slog.Any("error", err))
		return
	}
	if err := s.eventBus.Publish(rankingevents.ViewUpdated, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ViewUpdated", slog.Any("error", err))
	}
}

func toDomainItems(items []rankingdb.RankingItem) []rankingdomain.Item {
	out := make([]rankingdomain.Item, 0, len(items))
	for _, item := range items {
		out = append(out, rankingdomain.Item{
			RapperID:   item.RapperID,
			RapperName: item.RapperName,
			Position:   item.Position,
			Reason:     item.Reason,
		})
	}
	return out
}

func toDomainVotes(votes []rankingdb.Vote) []rankingdomain.VoteRecord {
	out := make([]rankingdomain.VoteRecord, 0, len(votes))
	for _, v := range votes {
		out = append(out, rankingdomain.VoteRecord{
			UserID:    v.UserID,
			RapperID:  v.RapperID,
			Weight:    v.VoteWeight,
			UpdatedAt: v.UpdatedAt,
		})
	}
	return out
}

func toDomainDailyVotes(records []rankingdb.DailyVote) []rankingdomain.DailyVoteFact {
	out := make([]rankingdomain.DailyVoteFact, 0, len(records))
	for _, rec := range records {
		out = append(out, rankingdomain.DailyVoteFact{
			UserID:    rec.UserID,
			RankingID: rec.RankingID,
			RapperID:  rec.RapperID,
			VoteDay:   rec.VoteDay,
		})
	}
	return out
}
