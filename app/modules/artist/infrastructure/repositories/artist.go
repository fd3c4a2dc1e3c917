package artistdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// ArtistDBImpl handles database operations for rapper profiles and their
// discographies.
type ArtistDBImpl struct {
	DB *bun.DB
}

var _ ArtistDB = (*ArtistDBImpl)(nil)

// GetRapper retrieves a rapper by ID.
func (db *ArtistDBImpl) GetRapper(ctx context.Context, rapperID shared.RapperID) (*Rapper, error) {
	rapper := new(Rapper)

	err := db.DB.NewSelect().
		Model(rapper).
		Where("id = ?", rapperID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRapperNotFound
		}
		return nil, fmt.Errorf("failed to get rapper: %w", err)
	}
	return rapper, nil
}

// ListRappers returns every rapper profile, ordered by name.
func (db *ArtistDBImpl) ListRappers(ctx context.Context) ([]Rapper, error) {
	var rappers []Rapper
	err := db.DB.NewSelect().
		Model(&rappers).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rappers: %w", err)
	}
	return rappers, nil
}

// ListStaleRappers returns up to limit rappers whose last sync is older than
// cutoff. Never-synced profiles sort first so new additions are picked up on
// the next sweep.
func (db *ArtistDBImpl) ListStaleRappers(ctx context.Context, cutoff time.Time, limit int) ([]Rapper, error) {
	var rappers []Rapper
	err := db.DB.NewSelect().
		Model(&rappers).
		Where("synced_at IS NULL OR synced_at < ?", cutoff).
		Order("synced_at ASC NULLS FIRST").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale rappers: %w", err)
	}
	return rappers, nil
}

// MarkSynced records a completed discography sync.
func (db *ArtistDBImpl) MarkSynced(ctx context.Context, rapperID shared.RapperID, musicBrainzID string, syncedAt time.Time) error {
	res, err := db.DB.NewUpdate().
		Model((*Rapper)(nil)).
		Set("musicbrainz_id = ?", musicBrainzID).
		Set("verified = TRUE").
		Set("synced_at = ?", syncedAt).
		Set("updated_at = ?", syncedAt).
		Where("id = ?", rapperID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark rapper synced: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrRapperNotFound
	}
	return nil
}

// UpsertReleases writes a sync batch, updating rows whose MBID exists.
func (db *ArtistDBImpl) UpsertReleases(ctx context.Context, releases []Release) (int, error) {
	if len(releases) == 0 {
		return 0, nil
	}

	err := db.DB.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&releases).
			On("CONFLICT (mbid) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("release_type = EXCLUDED.release_type").
			Set("first_released = EXCLUDED.first_released").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to upsert releases: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(releases), nil
}

// ListReleases returns a rapper's stored discography, newest first.
func (db *ArtistDBImpl) ListReleases(ctx context.Context, rapperID shared.RapperID) ([]Release, error) {
	var releases []Release
	err := db.DB.NewSelect().
		Model(&releases).
		Where("rapper_id = ?", rapperID).
		Order("first_released DESC", "title ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	return releases, nil
}
