// Package artistdomain holds the artist module's core types.
package artistdomain

import (
	"time"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Rapper is a rankable artist profile. MusicBrainzID is empty until the
// first successful discography sync resolves it.
type Rapper struct {
	ID            shared.RapperID
	Name          string
	Slug          string
	MusicBrainzID string
	Verified      bool
	SyncedAt      time.Time
}

// Release is one release group from a rapper's discography, keyed by its
// MusicBrainz release-group ID.
type Release struct {
	MBID          string
	RapperID      shared.RapperID
	Title         string
	ReleaseType   string
	FirstReleased string
}
