package artistdb

import (
	"context"
	"time"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// ArtistDB defines the persistence surface of the artist module.
type ArtistDB interface {
	GetRapper(ctx context.Context, rapperID shared.RapperID) (*Rapper, error)
	ListRappers(ctx context.Context) ([]Rapper, error)
	// ListStaleRappers returns up to limit rappers whose last sync is older
	// than cutoff, never-synced profiles first.
	ListStaleRappers(ctx context.Context, cutoff time.Time, limit int) ([]Rapper, error)

	// MarkSynced records a completed discography sync: it stores the
	// resolved MusicBrainz ID, flips verified on, and stamps synced_at.
	MarkSynced(ctx context.Context, rapperID shared.RapperID, musicBrainzID string, syncedAt time.Time) error

	// UpsertReleases writes a sync batch, updating rows whose MBID already
	// exists. Returns the number of rows written.
	UpsertReleases(ctx context.Context, releases []Release) (int, error)
	ListReleases(ctx context.Context, rapperID shared.RapperID) ([]Release, error)
}
