package api

import (
	"context"
	"time"

	artistservice "github.com/spit-hierarchy/spit-backend/app/modules/artist/application"
	artistdomain "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain"
	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	rankingqueue "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/queue"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// FakeRankingService stubs the ranking application surface.
type FakeRankingService struct {
	SubmitVoteFunc     func(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*rankingservice.VoteResult, error)
	GetRankingViewFunc func(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error)

	CapturedMembers []shared.MemberContext
}

var _ rankingservice.Service = (*FakeRankingService)(nil)

func (f *FakeRankingService) SubmitVote(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*rankingservice.VoteResult, error) {
	f.CapturedMembers = append(f.CapturedMembers, member)
	if f.SubmitVoteFunc != nil {
		return f.SubmitVoteFunc(ctx, member, rankingID, rapperID)
	}
	return &rankingservice.VoteResult{Weight: member.Tier.VoteMultiplier()}, nil
}

func (f *FakeRankingService) GetRankingView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
	if f.GetRankingViewFunc != nil {
		return f.GetRankingViewFunc(ctx, rankingID)
	}
	return &rankingdomain.View{RankingID: rankingID, ComputedAt: time.Now().UTC()}, nil
}

func (f *FakeRankingService) RebuildView(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
	return &rankingdomain.View{RankingID: rankingID}, nil
}

func (f *FakeRankingService) RebuildForRapper(ctx context.Context, rapperID shared.RapperID) error {
	return nil
}

func (f *FakeRankingService) SnapshotRanking(ctx context.Context, rankingID shared.RankingID) error {
	return nil
}

func (f *FakeRankingService) SnapshotAll(ctx context.Context) error {
	return nil
}

func (f *FakeRankingService) ExportStandings(ctx context.Context, rankingID shared.RankingID) ([]byte, error) {
	return []byte("PK\x03\x04"), nil
}

func (f *FakeRankingService) PositionChart(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]byte, error) {
	return []byte("\x89PNG"), nil
}

// FakeArtistService stubs the artist application surface.
type FakeArtistService struct {
	GetRapperFunc func(ctx context.Context, rapperID shared.RapperID) (*artistdomain.Rapper, error)
	Rappers       []artistdomain.Rapper
	Releases      []artistdomain.Release
}

var _ artistservice.Service = (*FakeArtistService)(nil)

func (f *FakeArtistService) SyncDiscography(ctx context.Context, rapperID shared.RapperID) (artistservice.SyncResult, error) {
	return artistservice.SyncResult{RapperID: rapperID}, nil
}

func (f *FakeArtistService) SyncStaleProfiles(ctx context.Context) ([]artistservice.SyncResult, error) {
	return nil, nil
}

func (f *FakeArtistService) GetRapper(ctx context.Context, rapperID shared.RapperID) (*artistdomain.Rapper, error) {
	if f.GetRapperFunc != nil {
		return f.GetRapperFunc(ctx, rapperID)
	}
	return &artistdomain.Rapper{ID: rapperID, Name: "Test Rapper", Slug: "test-rapper"}, nil
}

func (f *FakeArtistService) ListRappers(ctx context.Context) ([]artistdomain.Rapper, error) {
	return f.Rappers, nil
}

func (f *FakeArtistService) ListReleases(ctx context.Context, rapperID shared.RapperID) ([]artistdomain.Release, error) {
	return f.Releases, nil
}

// FakeQueueService records enqueue requests.
type FakeQueueService struct {
	SyncRequests []shared.RapperID
	EnqueueErr   error
}

var _ rankingqueue.QueueService = (*FakeQueueService)(nil)

func (f *FakeQueueService) RequestSnapshot(ctx context.Context) error {
	return f.EnqueueErr
}

func (f *FakeQueueService) RequestDiscographySync(ctx context.Context, rapperID shared.RapperID) error {
	if f.EnqueueErr != nil {
		return f.EnqueueErr
	}
	f.SyncRequests = append(f.SyncRequests, rapperID)
	return nil
}

func (f *FakeQueueService) GetScheduledJobs(ctx context.Context) ([]rankingqueue.JobInfo, error) {
	return nil, nil
}

func (f *FakeQueueService) HealthCheck(ctx context.Context) error {
	return nil
}

func (f *FakeQueueService) Start(ctx context.Context) error {
	return nil
}

func (f *FakeQueueService) Stop(ctx context.Context) error {
	return nil
}
