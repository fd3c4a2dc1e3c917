package artistservice

import (
	"context"
	"testing"
	"time"

	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

func TestGetRapper_ProjectsStorageRow(t *testing.T) {
	repo := NewFakeArtistDB()
	syncedAt := time.Date(2026, 8, 19, 6, 0, 0, 0, time.UTC)
	repo.GetRapperFunc = func(ctx context.Context, rapperID shared.RapperID) (*artistdb.Rapper, error) {
		return &artistdb.Rapper{
			ID:            rapperID,
			Name:          "MF DOOM",
			Slug:          "mf-doom",
			MusicBrainzID: "mbid-doom",
			Verified:      true,
			SyncedAt:      syncedAt,
		}, nil
	}
	svc := newTestArtistService(repo, &FakeMusicBrainz{}, NewFakeEventBus())

	rapper, err := svc.GetRapper(context.Background(), rapperOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rapper.ID != rapperOne || rapper.Name != "MF DOOM" || rapper.Slug != "mf-doom" {
		t.Errorf("unexpected rapper projection: %+v", rapper)
	}
	if rapper.MusicBrainzID != "mbid-doom" || !rapper.Verified || !rapper.SyncedAt.Equal(syncedAt) {
		t.Errorf("sync state lost in projection: %+v", rapper)
	}
}

func TestListReleases_ProjectsStorageRows(t *testing.T) {
	repo := NewFakeArtistDB()
	repo.ListReleasesFunc = func(ctx context.Context, rapperID shared.RapperID) ([]artistdb.Release, error) {
		return []artistdb.Release{
			{MBID: "rg-1", RapperID: rapperID, Title: "Operation: Doomsday", ReleaseType: "Album", FirstReleased: "1999-10-19"},
			{MBID: "rg-2", RapperID: rapperID, Title: "Madvillainy", ReleaseType: "Album", FirstReleased: "2004-03-23"},
		}, nil
	}
	svc := newTestArtistService(repo, &FakeMusicBrainz{}, NewFakeEventBus())

	releases, err := svc.ListReleases(context.Background(), rapperOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(releases) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(releases))
	}
	first := releases[0]
	if first.MBID != "rg-1" || first.RapperID != rapperOne || first.Title != "Operation: Doomsday" {
		t.Errorf("unexpected release projection: %+v", first)
	}
	if first.ReleaseType != "Album" || first.FirstReleased != "1999-10-19" {
		t.Errorf("release metadata lost in projection: %+v", first)
	}
}
