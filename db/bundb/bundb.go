package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/config"
)

// DBService bundles the per-module repositories over one connection pool.
type DBService struct {
	RankingDB *rankingdb.RankingDBImpl
	ArtistDB  *artistdb.ArtistDBImpl
	db        *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// NewBunDBService initializes a new DBService with the provided Postgres
// configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig) (*DBService, error) {
	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	db.RegisterModel(&rankingdb.Ranking{})
	db.RegisterModel(&rankingdb.RankingItem{})
	db.RegisterModel(&rankingdb.Vote{})
	db.RegisterModel(&rankingdb.DailyVote{})
	db.RegisterModel(&rankingdb.SnapshotEntry{})
	db.RegisterModel(&artistdb.Rapper{})
	db.RegisterModel(&artistdb.Release{})

	return &DBService{
		RankingDB: &rankingdb.RankingDBImpl{DB: db},
		ArtistDB:  &artistdb.ArtistDBImpl{DB: db},
		db:        db,
	}, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
