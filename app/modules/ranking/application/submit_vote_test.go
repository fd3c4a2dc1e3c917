package rankingservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
)

var (
	testUser   = shared.MemberContext{UserID: "member-1", Tier: shared.TierGold}
	rankingOne = uuid.MustParse("33333333-0000-4000-8000-000000000001")
	rapperOne  = uuid.MustParse("44444444-0000-4000-8000-000000000001")
	rapperTwo  = uuid.MustParse("44444444-0000-4000-8000-000000000002")
)

func newTestService(repo *FakeRankingDB, bus *FakeEventBus) *RankingService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	svc := NewRankingService(repo, bus, logger, observability.NoopMetrics{}, tracer)
	return svc.WithClock(func() time.Time {
		return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	})
}

// seedView primes the view store so optimistic increments have a view to
// mutate, the way a prior read request would.
func seedView(svc *RankingService, rankingID shared.RankingID) {
	svc.views.Reconcile(&rankingdomain.View{
		RankingID: rankingID,
		Entries: []rankingdomain.Entry{
			{RapperID: rapperOne, RapperName: "One", DynamicPosition: 1, TotalVotes: 10},
			{RapperID: rapperTwo, RapperName: "Two", DynamicPosition: 2, TotalVotes: 5},
		},
		ComputedAt: time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC),
	})
}

func cachedTotal(t *testing.T, svc *RankingService, rankingID shared.RankingID, rapperID shared.RapperID) int {
	t.Helper()
	view, ok := svc.views.Get(rankingID)
	if !ok {
		t.Fatal("expected a cached view")
	}
	for _, e := range view.Entries {
		if e.RapperID == rapperID {
			return e.TotalVotes
		}
	}
	t.Fatalf("rapper %s not in view", rapperID)
	return 0
}

func TestSubmitVote_FirstVoteOfDay(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	result, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Gold tier weighs 3.
	if result.Weight != 3 {
		t.Errorf("expected weight 3, got %d", result.Weight)
	}
	if result.AlreadyCounted {
		t.Error("first vote of the day must not be already counted")
	}

	// Optimistic increment survives a successful persist.
	if got := cachedTotal(t, svc, rankingOne, rapperOne); got != 13 {
		t.Errorf("expected optimistic total 13, got %d", got)
	}

	if len(repo.CapturedVotes) != 1 {
		t.Fatalf("expected one persisted vote, got %d", len(repo.CapturedVotes))
	}
	vote := repo.CapturedVotes[0]
	if vote.VoteWeight != 3 || vote.MemberTier != shared.TierGold {
		t.Errorf("persisted vote carries wrong weight/tier: %+v", vote)
	}
	if vote.VoteDay != "2026-08-20" {
		t.Errorf("expected vote day 2026-08-20, got %s", vote.VoteDay)
	}

	if bus.TopicCount(rankingevents.VoteRecorded) != 1 {
		t.Error("expected one VoteRecorded event")
	}
	if bus.TopicCount(rankingevents.VotesChanged) != 1 {
		t.Error("expected one VotesChanged event")
	}
}

func TestSubmitVote_SameDayResubmissionDoesNotDoubleCount(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	if _, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}

	if !result.AlreadyCounted {
		t.Error("same-day resubmission must report already counted")
	}

	// The displayed total moved exactly once.
	if got := cachedTotal(t, svc, rankingOne, rapperOne); got != 13 {
		t.Errorf("expected total 13 after resubmission, got %d", got)
	}

	// The canonical row is still updated (weight refresh), so both calls
	// reach the repository.
	if len(repo.CapturedVotes) != 2 {
		t.Errorf("expected two repository writes, got %d", len(repo.CapturedVotes))
	}
}

func TestSubmitVote_GuardMissButDatabaseDuplicateRollsBack(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	// Fresh process, empty guard, but the table already has today's row.
	repo.SubmitVoteFunc = func(ctx context.Context, vote *rankingdb.Vote) (bool, error) {
		return true, nil
	}
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	result, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.AlreadyCounted {
		t.Error("database-detected duplicate must report already counted")
	}
	if got := cachedTotal(t, svc, rankingOne, rapperOne); got != 10 {
		t.Errorf("optimistic increment must be rolled back, got total %d", got)
	}
}

func TestSubmitVote_PersistFailureRollsBackAndPublishesVoteFailed(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	repo.SubmitVoteFunc = func(ctx context.Context, vote *rankingdb.Vote) (bool, error) {
		return false, errors.New("connection reset")
	}
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	_, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if err == nil {
		t.Fatal("expected persist error to propagate")
	}

	if got := cachedTotal(t, svc, rankingOne, rapperOne); got != 10 {
		t.Errorf("expected rollback to pre-vote total 10, got %d", got)
	}
	if bus.TopicCount(rankingevents.VoteFailed) != 1 {
		t.Error("expected one VoteFailed event")
	}
	if bus.TopicCount(rankingevents.VoteRecorded) != 0 {
		t.Error("failed vote must not publish VoteRecorded")
	}

	// The guard must not remember the failed attempt.
	if svc.guard.HasVotedToday(testUser.UserID, rankingOne, rapperOne) {
		t.Error("failed vote leaked into the daily guard")
	}
}

func TestSubmitVote_SeedsGuardFromRepository(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	repo.ListDailyVotesFunc = func(ctx context.Context, userID shared.UserID, rankingID shared.RankingID, voteDay string) ([]rankingdb.DailyVote, error) {
		return []rankingdb.DailyVote{{
			UserID:    userID,
			RankingID: rankingID,
			RapperID:  rapperOne,
			VoteDay:   voteDay,
		}}, nil
	}
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	result, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.AlreadyCounted {
		t.Error("repository-seeded guard must flag the resubmission")
	}
	if got := cachedTotal(t, svc, rankingOne, rapperOne); got != 10 {
		t.Errorf("no optimistic increment expected, got total %d", got)
	}
}

func TestSubmitVote_GuardReadFailureFallsBackPermissively(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	repo.ListDailyVotesFunc = func(ctx context.Context, userID shared.UserID, rankingID shared.RankingID, voteDay string) ([]rankingdb.DailyVote, error) {
		return nil, errors.New("timeout")
	}
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	// The guard read failed but the vote still goes through; the database
	// constraint is the backstop.
	result, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AlreadyCounted {
		t.Error("fresh vote should count despite the failed guard read")
	}
}

func TestSubmitVote_SameDayDifferentRapperCounts(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	if _, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	result, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperTwo)
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}

	// The daily limit is per rapper, not per ranking.
	if result.AlreadyCounted {
		t.Error("vote for a different rapper must count")
	}
	if got := cachedTotal(t, svc, rankingOne, rapperTwo); got != 8 {
		t.Errorf("expected total 8 for second rapper, got %d", got)
	}
}

func TestSubmitVote_UnknownRankingPersistsNothing(t *testing.T) {
	repo := NewFakeRankingDB()
	bus := NewFakeEventBus()
	repo.GetRankingFunc = func(ctx context.Context, rankingID shared.RankingID) (*rankingdb.Ranking, error) {
		return nil, rankingdb.ErrRankingNotFound
	}
	svc := newTestService(repo, bus)
	seedView(svc, rankingOne)

	_, err := svc.SubmitVote(context.Background(), testUser, rankingOne, rapperOne)
	if !errors.Is(err, rankingdb.ErrRankingNotFound) {
		t.Fatalf("expected ErrRankingNotFound, got %v", err)
	}

	if len(repo.CapturedVotes) != 0 {
		t.Error("a vote for an unknown ranking must not reach the repository")
	}
	if got := cachedTotal(t, svc, rankingOne, rapperOne); got != 10 {
		t.Errorf("no optimistic increment expected, got total %d", got)
	}
	if bus.TopicCount(rankingevents.VoteRecorded) != 0 {
		t.Error("a rejected vote must not publish VoteRecorded")
	}
}

func TestSubmitVote_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		member  shared.MemberContext
		ranking shared.RankingID
		rapper  shared.RapperID
		wantErr error
	}{
		{
			name:    "anonymous member",
			member:  shared.MemberContext{},
			ranking: rankingOne,
			rapper:  rapperOne,
			wantErr: ErrNotAuthenticated,
		},
		{
			name:    "missing ranking",
			member:  testUser,
			ranking: uuid.Nil,
			rapper:  rapperOne,
			wantErr: ErrMissingRanking,
		},
		{
			name:    "missing rapper",
			member:  testUser,
			ranking: rankingOne,
			rapper:  uuid.Nil,
			wantErr: ErrMissingRapper,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRankingDB()
			bus := NewFakeEventBus()
			svc := newTestService(repo, bus)

			_, err := svc.SubmitVote(context.Background(), tt.member, tt.ranking, tt.rapper)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(repo.CapturedVotes) != 0 {
				t.Error("validation failure must not reach the repository")
			}
		})
	}
}
