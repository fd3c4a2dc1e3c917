package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/uptrace/bun/migrate"

	artistmigrations "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories/migrations"
	rankingmigrations "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories/migrations"
	"github.com/spit-hierarchy/spit-backend/config"
	"github.com/spit-hierarchy/spit-backend/db/bundb"
	"github.com/spit-hierarchy/spit-backend/integration_tests/containers"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
)

// TestEnv is a disposable backend environment: a migrated Postgres and a
// JetStream-enabled NATS, both in containers torn down with the test.
type TestEnv struct {
	DB       *bundb.DBService
	EventBus eventbus.EventBus
	Logger   *slog.Logger
	DSN      string
	NATSURL  string
}

// Setup starts the containers, runs every module's migrations, and connects
// the event bus. Tests that call it are skipped in -short runs.
func Setup(t *testing.T) *TestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test requires docker")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(context.Background()) })

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start nats: %v", err)
	}
	t.Cleanup(func() { natsContainer.Terminate(context.Background()) })

	dbService, err := bundb.NewBunDBService(ctx, config.PostgresConfig{DSN: dsn})
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	t.Cleanup(func() { dbService.GetDB().Close() })

	migrators := []*migrate.Migrator{
		migrate.NewMigrator(dbService.GetDB(), rankingmigrations.Migrations),
		migrate.NewMigrator(dbService.GetDB(), artistmigrations.Migrations),
	}
	for _, migrator := range migrators {
		if err := migrator.Init(ctx); err != nil {
			t.Fatalf("failed to init migrations: %v", err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	bus, err := eventbus.NewEventBus(ctx, natsURL, logger)
	if err != nil {
		t.Fatalf("failed to connect event bus: %v", err)
	}
	t.Cleanup(func() { bus.Close() })

	return &TestEnv{
		DB:       dbService,
		EventBus: bus,
		Logger:   logger,
		DSN:      dsn,
		NATSURL:  natsURL,
	}
}
