package artistdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Rapper is the artist profile row. MusicBrainzID stays empty until the
// first discography sync resolves it; Verified flips on once it has.
type Rapper struct {
	bun.BaseModel `bun:"table:rappers,alias:rp"`

	ID            shared.RapperID `bun:"id,pk,type:uuid"`
	Name          string          `bun:"name,notnull"`
	Slug          string          `bun:"slug,notnull"`
	MusicBrainzID string          `bun:"musicbrainz_id"`
	Verified      bool            `bun:"verified,notnull,default:false"`
	SyncedAt      time.Time       `bun:"synced_at,nullzero"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Release is one release group of a rapper's discography, keyed by the
// MusicBrainz release-group ID so repeated syncs upsert in place.
type Release struct {
	bun.BaseModel `bun:"table:rapper_releases,alias:rr"`

	MBID          string          `bun:"mbid,pk"`
	RapperID      shared.RapperID `bun:"rapper_id,type:uuid,notnull"`
	Title         string          `bun:"title,notnull"`
	ReleaseType   string          `bun:"release_type"`
	FirstReleased string          `bun:"first_released"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
