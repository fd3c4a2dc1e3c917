package rankingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// RankingDBImpl handles database operations for rankings and votes.
type RankingDBImpl struct {
	DB *bun.DB
}

var _ RankingDB = (*RankingDBImpl)(nil)

// GetRanking retrieves a ranking by ID.
func (db *RankingDBImpl) GetRanking(ctx context.Context, rankingID shared.RankingID) (*Ranking, error) {
	ranking := new(Ranking)

	err := db.DB.NewSelect().
		Model(ranking).
		Where("id = ?", rankingID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, fmt.Errorf("failed to get ranking: %w", err)
	}
	return ranking, nil
}

// ListRankingIDs returns the IDs of every ranking.
func (db *RankingDBImpl) ListRankingIDs(ctx context.Context) ([]shared.RankingID, error) {
	var ids []shared.RankingID
	err := db.DB.NewSelect().
		Model((*Ranking)(nil)).
		Column("id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking ids: %w", err)
	}
	return ids, nil
}

// ListRankingIDsByRapper returns the rankings whose items include a rapper.
func (db *RankingDBImpl) ListRankingIDsByRapper(ctx context.Context, rapperID shared.RapperID) ([]shared.RankingID, error) {
	var ids []shared.RankingID
	err := db.DB.NewSelect().
		Model((*RankingItem)(nil)).
		ColumnExpr("DISTINCT ranking_id").
		Where("rapper_id = ?", rapperID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings by rapper: %w", err)
	}
	return ids, nil
}

// ListItems retrieves the curated items of a ranking with rapper names
// joined in, ordered by editorial position.
func (db *RankingDBImpl) ListItems(ctx context.Context, rankingID shared.RankingID) ([]RankingItem, error) {
	var items []RankingItem

	err := db.DB.NewSelect().
		Model(&items).
		ColumnExpr("ri.*").
		ColumnExpr("rp.name AS rapper_name").
		Join("JOIN rappers AS rp ON rp.id = ri.rapper_id").
		Where("ri.ranking_id = ?", rankingID).
		Order("ri.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking items: %w", err)
	}
	return items, nil
}

// ListVotes returns all canonical vote rows for a ranking.
func (db *RankingDBImpl) ListVotes(ctx context.Context, rankingID shared.RankingID) ([]Vote, error) {
	var votes []Vote

	err := db.DB.NewSelect().
		Model(&votes).
		Where("ranking_id = ?", rankingID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	return votes, nil
}

// ListDailyVotes is the authoritative "has voted today" read, filtered to
// one user, one ranking, one calendar day.
func (db *RankingDBImpl) ListDailyVotes(ctx context.Context, userID shared.UserID, rankingID shared.RankingID, voteDay string) ([]DailyVote, error) {
	var records []DailyVote

	err := db.DB.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Where("ranking_id = ?", rankingID).
		Where("vote_day = ?", voteDay).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily votes: %w", err)
	}
	return records, nil
}

// SubmitVote persists the canonical vote upsert and the daily-tracking
// insert atomically. The daily row's uniqueness constraint is the
// authoritative same-day duplicate check; the canonical row's conflict key
// makes repeat votes an update instead of a second row.
func (db *RankingDBImpl) SubmitVote(ctx context.Context, vote *Vote) (bool, error) {
	tx, err := db.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	vote.UpdatedAt = time.Now().UTC()

	_, err = tx.NewInsert().
		Model(vote).
		On("CONFLICT (user_id, ranking_id, rapper_id) DO UPDATE").
		Set("vote_weight = EXCLUDED.vote_weight").
		Set("member_tier = EXCLUDED.member_tier").
		Set("vote_day = EXCLUDED.vote_day").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to upsert vote during SubmitVote: %w", err)
	}

	daily := &DailyVote{
		UserID:    vote.UserID,
		RankingID: vote.RankingID,
		RapperID:  vote.RapperID,
		VoteDay:   vote.VoteDay,
	}

	res, err := tx.NewInsert().
		Model(daily).
		On("CONFLICT (user_id, rapper_id, ranking_id, vote_day) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to insert daily tracking during SubmitVote: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read daily tracking result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction during SubmitVote: %w", err)
	}

	// zero rows affected means the daily row already existed
	return rows == 0, nil
}

// LatestPositions reads the most recent snapshot set for a ranking.
func (db *RankingDBImpl) LatestPositions(ctx context.Context, rankingID shared.RankingID) (map[shared.RapperID]int, error) {
	var entries []SnapshotEntry

	err := db.DB.NewSelect().
		Model(&entries).
		Where("rs.ranking_id = ?", rankingID).
		Where("rs.snapshot_at = (SELECT MAX(snapshot_at) FROM ranking_snapshots WHERE ranking_id = ?)", rankingID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	positions := make(map[shared.RapperID]int, len(entries))
	for _, e := range entries {
		positions[e.RapperID] = e.DynamicPosition
	}
	return positions, nil
}

// SaveSnapshot persists one snapshot set. Entries must share a SnapshotAt
// so LatestPositions sees them as one generation.
func (db *RankingDBImpl) SaveSnapshot(ctx context.Context, entries []SnapshotEntry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := db.DB.NewInsert().
		Model(&entries).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// PositionHistory returns a rapper's snapshot rows oldest first, for trend charts.
func (db *RankingDBImpl) PositionHistory(ctx context.Context, rankingID shared.RankingID, rapperID shared.RapperID) ([]SnapshotEntry, error) {
	var entries []SnapshotEntry

	err := db.DB.NewSelect().
		Model(&entries).
		Where("ranking_id = ?", rankingID).
		Where("rapper_id = ?", rapperID).
		Order("snapshot_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load position history: %w", err)
	}
	return entries, nil
}
