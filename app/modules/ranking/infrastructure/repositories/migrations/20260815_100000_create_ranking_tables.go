package rankingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ranking tables...")

		if _, err := db.NewCreateTable().Model((*rankingdb.Ranking)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*rankingdb.RankingItem)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*rankingdb.Vote)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*rankingdb.DailyVote)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*rankingdb.SnapshotEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		// Conflict keys for the transactional vote submit
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_ranking_votes_identity ON ranking_votes (user_id, ranking_id, rapper_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_daily_vote_identity ON daily_vote_tracking (user_id, rapper_id, ranking_id, vote_day)").Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_ranking_items_rapper ON ranking_items (ranking_id, rapper_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_ranking_votes_ranking ON ranking_votes (ranking_id)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_ranking_votes_updated_at ON ranking_votes (ranking_id, updated_at)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_daily_vote_lookup ON daily_vote_tracking (user_id, ranking_id, vote_day)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_snapshots_ranking_at ON ranking_snapshots (ranking_id, snapshot_at DESC)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_snapshots_rapper ON ranking_snapshots (ranking_id, rapper_id, snapshot_at)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Ranking tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ranking tables...")

		for _, model := range []any{
			(*rankingdb.SnapshotEntry)(nil),
			(*rankingdb.DailyVote)(nil),
			(*rankingdb.Vote)(nil),
			(*rankingdb.RankingItem)(nil),
			(*rankingdb.Ranking)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Ranking tables dropped successfully!")
		return nil
	})
}
