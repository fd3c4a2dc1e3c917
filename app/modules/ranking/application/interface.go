package rankingservice

import (
	"context"

	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// VoteResult reports the outcome of a submitted vote.
type VoteResult struct {
	Weight shared.VoteWeight
	// AlreadyCounted is true for a same-day resubmission: the vote was a
	// server-side no-op and no optimistic increment survived.
	AlreadyCounted bool
}

// Service is the ranking module's application surface.
type Service interface {
	SubmitVote(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*VoteResult, error)
	GetRankingView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error)
	RebuildView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error)
	RebuildForRapper(ctx context.Context, rapperID shared.RapperID) error
	SnapshotRanking(ctx context.Context, rankingID shared.RankingID) error
	SnapshotAll(ctx context.Context) error
	ExportStandings(ctx context.Context, rankingID shared.RankingID) ([]byte, error)
	PositionChart(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]byte, error)
}
