package rankingservice

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// FakeRankingDB implements rankingdb.RankingDB for service testing.
type FakeRankingDB struct {
	trace []string

	// Function fields allow per-test behavior configuration
	GetRankingFunc             func(ctx context.Context, rankingID shared.RankingID) (*rankingdb.Ranking, error)
	ListRankingIDsFunc         func(ctx context.Context) ([]shared.RankingID, error)
	ListRankingIDsByRapperFunc func(ctx context.Context, rapperID shared.RapperID) ([]shared.RankingID, error)
	ListItemsFunc              func(ctx context.Context, rankingID shared.RankingID) ([]rankingdb.RankingItem, error)
	ListVotesFunc              func(ctx context.Context, rankingID shared.RankingID) ([]rankingdb.Vote, error)
	ListDailyVotesFunc         func(ctx context.Context, userID shared.UserID, rankingID shared.RankingID, voteDay string) ([]rankingdb.DailyVote, error)
	SubmitVoteFunc             func(ctx context.Context, vote *rankingdb.Vote) (bool, error)
	LatestPositionsFunc        func(ctx context.Context, rankingID shared.RankingID) (map[shared.RapperID]int, error)
	SaveSnapshotFunc           func(ctx context.Context, entries []rankingdb.SnapshotEntry) error
	PositionHistoryFunc        func(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]rankingdb.SnapshotEntry, error)

	// CapturedVotes collects every vote handed to SubmitVote.
	CapturedVotes []*rankingdb.Vote
	// CapturedSnapshots collects every snapshot batch handed to SaveSnapshot.
	CapturedSnapshots [][]rankingdb.SnapshotEntry
}

var _ rankingdb.RankingDB = (*FakeRankingDB)(nil)

func NewFakeRankingDB() *FakeRankingDB {
	return &FakeRankingDB{trace: []string{}}
}

func (f *FakeRankingDB) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRankingDB) Trace() []string {
	return f.trace
}

func (f *FakeRankingDB) GetRanking(ctx context.Context, rankingID shared.RankingID) (*rankingdb.Ranking, error) {
	f.record("GetRanking")
	if f.GetRankingFunc != nil {
		return f.GetRankingFunc(ctx, rankingID)
	}
	return &rankingdb.Ranking{ID: rankingID}, nil
}

func (f *FakeRankingDB) ListRankingIDs(ctx context.Context) ([]shared.RankingID, error) {
	f.record("ListRankingIDs")
	if f.ListRankingIDsFunc != nil {
		return f.ListRankingIDsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeRankingDB) ListRankingIDsByRapper(ctx context.Context, rapperID shared.RapperID) ([]shared.RankingID, error) {
	f.record("ListRankingIDsByRapper")
	if f.ListRankingIDsByRapperFunc != nil {
		return f.ListRankingIDsByRapperFunc(ctx, rapperID)
	}
	return nil, nil
}

func (f *FakeRankingDB) ListItems(ctx context.Context, rankingID shared.RankingID) ([]rankingdb.RankingItem, error) {
	f.record("ListItems")
	if f.ListItemsFunc != nil {
		return f.ListItemsFunc(ctx, rankingID)
	}
	return nil, nil
}

func (f *FakeRankingDB) ListVotes(ctx context.Context, rankingID shared.RankingID) ([]rankingdb.Vote, error) {
	f.record("ListVotes")
	if f.ListVotesFunc != nil {
		return f.ListVotesFunc(ctx, rankingID)
	}
	return nil, nil
}

func (f *FakeRankingDB) ListDailyVotes(ctx context.Context, userID shared.UserID, rankingID shared.RankingID, voteDay string) ([]rankingdb.DailyVote, error) {
	f.record("ListDailyVotes")
	if f.ListDailyVotesFunc != nil {
		return f.ListDailyVotesFunc(ctx, userID, rankingID, voteDay)
	}
	return nil, nil
}

func (f *FakeRankingDB) SubmitVote(ctx context.Context, vote *rankingdb.Vote) (bool, error) {
	f.record("SubmitVote")
	f.CapturedVotes = append(f.CapturedVotes, vote)
	if f.SubmitVoteFunc != nil {
		return f.SubmitVoteFunc(ctx, vote)
	}
	return false, nil
}

func (f *FakeRankingDB) LatestPositions(ctx context.Context, rankingID shared.RankingID) (map[shared.RapperID]int, error) {
	f.record("LatestPositions")
	if f.LatestPositionsFunc != nil {
		return f.LatestPositionsFunc(ctx, rankingID)
	}
	return map[shared.RapperID]int{}, nil
}

func (f *FakeRankingDB) SaveSnapshot(ctx context.Context, entries []rankingdb.SnapshotEntry) error {
	f.record("SaveSnapshot")
	f.CapturedSnapshots = append(f.CapturedSnapshots, entries)
	if f.SaveSnapshotFunc != nil {
		return f.SaveSnapshotFunc(ctx, entries)
	}
	return nil
}

func (f *FakeRankingDB) PositionHistory(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]rankingdb.SnapshotEntry, error) {
	f.record("PositionHistory")
	if f.PositionHistoryFunc != nil {
		return f.PositionHistoryFunc(ctx, rankingID, rapperID)
	}
	return nil, nil
}

// FakeEventBus implements eventbus.EventBus, capturing published messages
// per topic.
type FakeEventBus struct {
	mu        sync.Mutex
	Published map[string][]*message.Message

	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Published[topic] = append(f.Published[topic], messages...)
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakeEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message)
	close(ch)
	return ch, nil
}

func (f *FakeEventBus) EnsureStream(ctx context.Context, streamName string, subjects ...string) error {
	return nil
}

func (f *FakeEventBus) Close() error {
	return nil
}

// TopicCount returns how many messages were published to a topic.
func (f *FakeEventBus) TopicCount(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Published[topic])
}
