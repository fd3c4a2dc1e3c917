package rankinghandlers

import (
	"context"

	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// FakeService records calls and delegates to per-test hooks.
type FakeService struct {
	trace []string

	SubmitVoteFunc       func(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*rankingservice.VoteResult, error)
	RebuildViewFunc      func(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error)
	RebuildForRapperFunc func(ctx context.Context, rapperID shared.RapperID) error
	SnapshotAllFunc      func(ctx context.Context) error

	CapturedMembers  []shared.MemberContext
	CapturedRankings []shared.RankingID
	CapturedRappers  []shared.RapperID
}

var _ rankingservice.Service = (*FakeService)(nil)

func NewFakeService() *FakeService {
	return &FakeService{}
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) SubmitVote(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*rankingservice.VoteResult, error) {
	f.trace = append(f.trace, "SubmitVote")
	f.CapturedMembers = append(f.CapturedMembers, member)
	f.CapturedRankings = append(f.CapturedRankings, rankingID)
	f.CapturedRappers = append(f.CapturedRappers, rapperID)
	if f.SubmitVoteFunc != nil {
		return f.SubmitVoteFunc(ctx, member, rankingID, rapperID)
	}
	return &rankingservice.VoteResult{Weight: 1}, nil
}

func (f *FakeService) GetRankingView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
	f.trace = append(f.trace, "GetRankingView")
	return &rankingdomain.View{RankingID: rankingID}, nil
}

func (f *FakeService) RebuildView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
	f.trace = append(f.trace, "RebuildView")
	f.CapturedRankings = append(f.CapturedRankings, rankingID)
	if f.RebuildViewFunc != nil {
		return f.RebuildViewFunc(ctx, rankingID)
	}
	return &rankingdomain.View{RankingID: rankingID}, nil
}

func (f *FakeService) RebuildForRapper(ctx context.Context, rapperID shared.RapperID) error {
	f.trace = append(f.trace, "RebuildForRapper")
	f.CapturedRappers = append(f.CapturedRappers, rapperID)
	if f.RebuildForRapperFunc != nil {
		return f.RebuildForRapperFunc(ctx, rapperID)
	}
	return nil
}

func (f *FakeService) SnapshotRanking(ctx context.Context, rankingID shared.RankingID) error {
	f.trace = append(f.trace, "SnapshotRanking")
	return nil
}

func (f *FakeService) SnapshotAll(ctx context.Context) error {
	f.trace = append(f.trace, "SnapshotAll")
	if f.SnapshotAllFunc != nil {
		return f.SnapshotAllFunc(ctx)
	}
	return nil
}

func (f *FakeService) ExportStandings(ctx context.Context, rankingID shared.RankingID) ([]byte, error) {
	f.trace = append(f.trace, "ExportStandings")
	return nil, nil
}

func (f *FakeService) PositionChart(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]byte, error) {
	f.trace = append(f.trace, "PositionChart")
	return nil, nil
}
