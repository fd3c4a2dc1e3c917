package artistservice

import (
	"context"
	"errors"

	artistdomain "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// ErrMissingRapper flags a sync request without a resolvable rapper.
var ErrMissingRapper = errors.New("rapper id is required")

// SyncResult summarizes one discography sync.
type SyncResult struct {
	RapperID shared.RapperID
	Releases int
}

// Service is the artist module's application surface.
type Service interface {
	// SyncDiscography refreshes one rapper's discography from MusicBrainz,
	// resolving the MusicBrainz ID on first sync.
	SyncDiscography(ctx context.Context, rapperID shared.RapperID) (SyncResult, error)
	// SyncStaleProfiles refreshes the rappers whose discography data is
	// older than the configured cadence.
	SyncStaleProfiles(ctx context.Context) ([]SyncResult, error)

	GetRapper(ctx context.Context, rapperID shared.RapperID) (*artistdomain.Rapper, error)
	ListRappers(ctx context.Context) ([]artistdomain.Rapper, error)
	ListReleases(ctx context.Context, rapperID shared.RapperID) ([]artistdomain.Release, error)
}
