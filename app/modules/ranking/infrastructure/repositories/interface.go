package rankingdb

import (
	"context"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// RankingDB defines the persistence surface of the ranking module.
type RankingDB interface {
	GetRanking(ctx context.Context, rankingID shared.RankingID) (*Ranking, error)
	ListRankingIDs(ctx context.Context) ([]shared.RankingID, error)
	// ListRankingIDsByRapper returns the rankings that carry a rapper, so a
	// rapper-level change can invalidate exactly the views that show them.
	ListRankingIDsByRapper(ctx context.Context, rapperID shared.RapperID) ([]shared.RankingID, error)
	ListItems(ctx context.Context, rankingID shared.RankingID) ([]RankingItem, error)

	ListVotes(ctx context.Context, rankingID shared.RankingID) ([]Vote, error)
	ListDailyVotes(ctx context.Context, userID shared.UserID, rankingID shared.RankingID, voteDay string) ([]DailyVote, error)

	// SubmitVote upserts the canonical vote row and inserts the
	// daily-tracking row in a single transaction. The returned flag is true
	// when a daily row for the same (user, ranking, rapper, day) already
	// existed, i.e. the vote was a same-day resubmission.
	SubmitVote(ctx context.Context, vote *Vote) (alreadyCounted bool, err error)

	// LatestPositions returns the most recent snapshot's dynamic position
	// per rapper, or an empty map when the ranking was never snapshotted.
	LatestPositions(ctx context.Context, rankingID shared.RankingID) (map[shared.RapperID]int, error)
	SaveSnapshot(ctx context.Context, entries []SnapshotEntry) error
	PositionHistory(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]SnapshotEntry, error)
}
