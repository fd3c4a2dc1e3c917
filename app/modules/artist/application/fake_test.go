package artistservice

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// FakeArtistDB records calls and delegates to per-test hooks.
type FakeArtistDB struct {
	trace []string

	GetRapperFunc        func(ctx context.Context, rapperID shared.RapperID) (*artistdb.Rapper, error)
	ListRappersFunc      func(ctx context.Context) ([]artistdb.Rapper, error)
	ListStaleRappersFunc func(ctx context.Context, cutoff time.Time, limit int) ([]artistdb.Rapper, error)
	MarkSyncedFunc       func(ctx context.Context, rapperID shared.RapperID, musicBrainzID string, syncedAt time.Time) error
	UpsertReleasesFunc   func(ctx context.Context, releases []artistdb.Release) (int, error)
	ListReleasesFunc     func(ctx context.Context, rapperID shared.RapperID) ([]artistdb.Release, error)

	CapturedReleases [][]artistdb.Release
	CapturedMBIDs    []string
}

var _ artistdb.ArtistDB = (*FakeArtistDB)(nil)

func NewFakeArtistDB() *FakeArtistDB {
	return &FakeArtistDB{}
}

func (f *FakeArtistDB) record(op string) {
	f.trace = append(f.trace, op)
}

func (f *FakeArtistDB) Trace() []string {
	return f.trace
}

func (f *FakeArtistDB) GetRapper(ctx context.Context, rapperID shared.RapperID) (*artistdb.Rapper, error) {
	f.record("GetRapper")
	if f.GetRapperFunc != nil {
		return f.GetRapperFunc(ctx, rapperID)
	}
	return &artistdb.Rapper{ID: rapperID, Name: "Unknown"}, nil
}

func (f *FakeArtistDB) ListRappers(ctx context.Context) ([]artistdb.Rapper, error) {
	f.record("ListRappers")
	if f.ListRappersFunc != nil {
		return f.ListRappersFunc(ctx)
	}
	return nil, nil
}

func (f *FakeArtistDB) ListStaleRappers(ctx context.Context, cutoff time.Time, limit int) ([]artistdb.Rapper, error) {
	f.record("ListStaleRappers")
	if f.ListStaleRappersFunc != nil {
		return f.ListStaleRappersFunc(ctx, cutoff, limit)
	}
	return nil, nil
}

func (f *FakeArtistDB) MarkSynced(ctx context.Context, rapperID shared.RapperID, musicBrainzID string, syncedAt time.Time) error {
	f.record("MarkSynced")
	f.CapturedMBIDs = append(f.CapturedMBIDs, musicBrainzID)
	if f.MarkSyncedFunc != nil {
		return f.MarkSyncedFunc(ctx, rapperID, musicBrainzID, syncedAt)
	}
	return nil
}

func (f *FakeArtistDB) UpsertReleases(ctx context.Context, releases []artistdb.Release) (int, error) {
	f.record("UpsertReleases")
	f.CapturedReleases = append(f.CapturedReleases, releases)
	if f.UpsertReleasesFunc != nil {
		return f.UpsertReleasesFunc(ctx, releases)
	}
	return len(releases), nil
}

func (f *FakeArtistDB) ListReleases(ctx context.Context, rapperID shared.RapperID) ([]artistdb.Release, error) {
	f.record("ListReleases")
	if f.ListReleasesFunc != nil {
		return f.ListReleasesFunc(ctx, rapperID)
	}
	return nil, nil
}

// FakeMusicBrainz is an in-memory MusicBrainzClient.
type FakeMusicBrainz struct {
	SearchArtistFunc        func(ctx context.Context, name string) (string, error)
	BrowseReleaseGroupsFunc func(ctx context.Context, artistMBID string) ([]ReleaseGroup, error)

	SearchedNames []string
	BrowsedMBIDs  []string
}

var _ MusicBrainzClient = (*FakeMusicBrainz)(nil)

func (f *FakeMusicBrainz) SearchArtist(ctx context.Context, name string) (string, error) {
	f.SearchedNames = append(f.SearchedNames, name)
	if f.SearchArtistFunc != nil {
		return f.SearchArtistFunc(ctx, name)
	}
	return "mbid-resolved", nil
}

func (f *FakeMusicBrainz) BrowseReleaseGroups(ctx context.Context, artistMBID string) ([]ReleaseGroup, error) {
	f.BrowsedMBIDs = append(f.BrowsedMBIDs, artistMBID)
	if f.BrowseReleaseGroupsFunc != nil {
		return f.BrowseReleaseGroupsFunc(ctx, artistMBID)
	}
	return nil, nil
}

// FakeEventBus captures published messages per topic.
type FakeEventBus struct {
	Published   map[string][]*message.Message
	PublishFunc func(topic string, messages ...*message.Message) error
}

func NewFakeEventBus() *FakeEventBus {
	return &FakeEventBus{Published: make(map[string][]*message.Message)}
}

func (f *FakeEventBus) Publish(topic string, messages ...*message.Message) error {
	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	f.Published[topic] = append(f.Published[topic], messages...)
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

func (f *FakeEventBus) TopicCount(topic string) int {
	return len(f.Published[topic])
}
