// Package artistevents defines the topics and payloads the artist module
// publishes and consumes.
package artistevents

import (
	"time"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Stream groups every artist subject under one JetStream stream.
const Stream = "artist"

const (
	// DiscographySyncRequested asks the module to refresh a rapper's
	// discography from MusicBrainz.
	DiscographySyncRequested = "artist.discography.sync.requested"
	// DiscographySynced announces a completed sync.
	DiscographySynced = "artist.discography.synced"
	// ArtistChanged is the change notification that a rapper row was
	// written; consumers treat it purely as an invalidation signal.
	ArtistChanged = "artist.changed"
)

// DiscographySyncRequestedPayload identifies the rapper to sync. A nil
// rapper ID means "sync whichever profiles are stale".
type DiscographySyncRequestedPayload struct {
	RapperID shared.RapperID `json:"rapper_id"`
}

// DiscographySyncedPayload summarizes a completed sync.
type DiscographySyncedPayload struct {
	RapperID shared.RapperID `json:"rapper_id"`
	Releases int             `json:"releases"`
	SyncedAt time.Time       `json:"synced_at"`
}

// ArtistChangedPayload identifies the rapper whose row changed.
type ArtistChangedPayload struct {
	RapperID shared.RapperID `json:"rapper_id"`
}
