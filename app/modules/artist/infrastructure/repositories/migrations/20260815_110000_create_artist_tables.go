package artistmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating artist tables...")

		if _, err := db.NewCreateTable().Model((*artistdb.Rapper)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*artistdb.Release)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.NewRaw("CREATE UNIQUE INDEX IF NOT EXISTS uq_rappers_slug ON rappers (slug)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rappers_synced_at ON rappers (synced_at ASC NULLS FIRST)").Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_rapper_releases_rapper ON rapper_releases (rapper_id)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Artist tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping artist tables...")

		if _, err := db.NewDropTable().Model((*artistdb.Release)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*artistdb.Rapper)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Artist tables dropped successfully!")
		return nil
	})
}
