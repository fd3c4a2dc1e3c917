package rankingservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
	"github.com/google/uuid"
)

// SubmitVote records a weighted vote for a rapper in a ranking.
//
// The optimistic increment is applied before persistence and rolled back to
// the pre-mutation snapshot if the transaction fails. A member the guard
// already knows voted today gets no increment at all, so a same-day
// resubmission can never double a displayed total.
func (s *RankingService) SubmitVote(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*VoteResult, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.submit_vote")
	defer span.End()

	start := s.clock()
	s.metrics.RecordOperationAttempt(ctx, "submit_vote")

	if !member.Authenticated() {
		s.metrics.RecordOperationFailure(ctx, "submit_vote")
		return nil, ErrNotAuthenticated
	}
	if rankingID == uuid.Nil {
		s.metrics.RecordOperationFailure(ctx, "submit_vote")
		return nil, ErrMissingRanking
	}
	if rapperID == uuid.Nil {
		s.metrics.RecordOperationFailure(ctx, "submit_vote")
		return nil, ErrMissingRapper
	}

	weight := member.Tier.VoteMultiplier()
	today := shared.VoteDay(start)

	span.SetAttributes(
		attribute.String("ranking_id", rankingID.String()),
		attribute.String("rapper_id", rapperID.String()),
		attribute.Int("weight", int(weight)),
	)

	// The ranking must exist before any optimistic mutation or persistence
	// happens; otherwise a vote for a bogus ID would leave rows behind.
	if _, err := s.repo.GetRanking(ctx, rankingID); err != nil {
		s.metrics.RecordOperationFailure(ctx, "submit_vote")
		return nil, fmt.Errorf("failed to load ranking: %w", err)
	}

	// Refresh the guard from the authoritative table. A failed read falls
	// back to whatever the cache already holds (stale-but-available).
	records, err := s.repo.ListDailyVotes(ctx, member.UserID, rankingID, today)
	if err != nil {
		s.logger.WarnContext(ctx, "Daily vote fetch failed, falling back to cached state",
			slog.String("user_id", string(member.UserID)),
			slog.String("ranking_id", rankingID.String()),
			slog.Any("error", err),
		)
	} else {
		s.guard.Seed(member.UserID, rankingID, toDomainDailyVotes(records))
	}

	alreadyVoted := s.guard.HasVotedToday(member.UserID, rankingID, rapperID)

	// Optimistic phase: only a first vote of the day moves the displayed total.
	var snapshot *rankingdomain.View
	incremented := false
	if !alreadyVoted {
		snapshot = s.views.ApplyOptimistic(rankingID, rapperID, weight)
		incremented = true
	}

	vote := &rankingdb.Vote{
		UserID:     member.UserID,
		RankingID:  rankingID,
		RapperID:   rapperID,
		VoteWeight: weight,
		MemberTier: member.Tier,
		VoteDay:    today,
	}

	alreadyCounted, err := s.repo.SubmitVote(ctx, vote)
	if err != nil {
		if incremented {
			s.views.Restore(rankingID, snapshot)
		}
		s.publishVoteFailed(ctx, member, rankingID, rapperID, err)
		s.metrics.RecordOperationFailure(ctx, "submit_vote")
		return nil, fmt.Errorf("failed to persist vote: %w", err)
	}

	// The guard was permissive but the database says today's vote already
	// existed; undo the increment so the total is not counted twice.
	if incremented && alreadyCounted {
		s.views.Restore(rankingID, snapshot)
	}

	s.guard.AddVoteToTracking(member.UserID, rankingID, rapperID)

	counted := alreadyVoted || alreadyCounted
	s.publishVoteRecorded(ctx, member, rankingID, rapperID, weight, counted, today)

	s.metrics.RecordOperationSuccess(ctx, "submit_vote")
	s.metrics.RecordOperationDuration(ctx, "submit_vote", time.Since(start))

	return &VoteResult{Weight: weight, AlreadyCounted: counted}, nil
}

func (s *RankingService) publishVoteRecorded(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID, weight shared.VoteWeight, alreadyCounted bool, voteDay string) {
	payload := rankingevents.VoteRecordedPayload{
		UserID:         member.UserID,
		RankingID:      rankingID,
		RapperID:       rapperID,
		Weight:         weight,
		AlreadyCounted: alreadyCounted,
		VoteDay:        voteDay,
	}

	msg, err := eventutil.NewMessage(eventutil.CorrelationIDFromCtx(ctx), payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build VoteRecorded message", slog.Any("error", err))
		return
	}
	if err := s.eventBus.Publish(rankingevents.VoteRecorded, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish VoteRecorded", slog.Any("error", err))
	}

	changed, err := eventutil.NewMessage(eventutil.CorrelationIDFromCtx(ctx), rankingevents.VotesChangedPayload{RankingID: rankingID})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build VotesChanged message", slog.Any("error", err))
		return
	}
	if err := s.eventBus.Publish(rankingevents.VotesChanged, changed); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish VotesChanged", slog.Any("error", err))
	}
}

func (s *RankingService) publishVoteFailed(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID, cause error) {
	payload := rankingevents.VoteFailedPayload{
		UserID:    member.UserID,
		RankingID: rankingID,
		RapperID:  rapperID,
		Reason:    cause.Error(),
	}

	msg, err := eventutil.NewMessage(eventutil.CorrelationIDFromCtx(ctx), payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build VoteFailed message", slog.Any("error", err))
		return
	}
	if err := s.eventBus.Publish(rankingevents.VoteFailed, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish VoteFailed", slog.Any("error", err))
	}
}
