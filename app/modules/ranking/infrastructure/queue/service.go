// Package rankingqueue schedules the recurring maintenance jobs for the
// ranking pipeline on River: the nightly position snapshot and the periodic
// discography sweep. Workers publish requests on the event bus instead of
// mutating state directly, keeping the module handlers the single write path.
package rankingqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	artistevents "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain/events"
	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/eventbus"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
	"github.com/spit-hierarchy/spit-backend/internal/observability"
)

// QueueService is the contract for the ranking module's scheduled jobs.
type QueueService interface {
	// RequestSnapshot enqueues an immediate snapshot job in addition to the
	// nightly periodic run.
	RequestSnapshot(ctx context.Context) error
	// RequestDiscographySync enqueues a sync job for one rapper.
	RequestDiscographySync(ctx context.Context, rapperID shared.RapperID) error
	// GetScheduledJobs returns information about pending jobs (for debugging)
	GetScheduledJobs(ctx context.Context) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Service runs the ranking module's job scheduling on River.
type Service struct {
	client   *river.Client[pgx.Tx]
	pool     *pgxpool.Pool
	logger   *slog.Logger
	db       *bun.DB
	metrics  observability.OperationMetrics
	eventBus eventbus.EventBus
}

// NewService creates a River-based queue service. syncEvery controls the
// periodic discography sweep; the snapshot job always runs at midnight UTC so
// snapshots line up with the vote-day rollover.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, syncEvery time.Duration, metrics observability.OperationMetrics, eventBus eventbus.EventBus) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("operation", "new_ranking_queue_service"),
		slog.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_queue")

	ctxLogger.Info("Initializing ranking queue service")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, newSnapshotWorker(ctxLogger, eventBus))
	river.AddWorker(workers, newDiscographySyncWorker(ctxLogger, eventBus))

	periodicJobs := []*river.PeriodicJob{
		river.NewPeriodicJob(
			midnightUTC{},
			func() (river.JobArgs, *river.InsertOpts) {
				return SnapshotJob{}, &river.InsertOpts{Queue: "ranking"}
			},
			&river.PeriodicJobOpts{RunOnStart: false},
		),
		river.NewPeriodicJob(
			river.PeriodicInterval(syncEvery),
			func() (river.JobArgs, *river.InsertOpts) {
				return DiscographySyncJob{}, &river.InsertOpts{Queue: "ranking"}
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 50},
			"ranking":          {MaxWorkers: 10}, // Dedicated queue for ranking maintenance
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", slog.Any("error", err))
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:   client,
		pool:     pool,
		logger:   logger,
		db:       bunDB,
		metrics:  metrics,
		eventBus: eventBus,
	}

	duration := time.Since(start)
	metrics.RecordOperationSuccess(ctx, "initialize_queue")
	metrics.RecordOperationDuration(ctx, "initialize_queue", duration)

	ctxLogger.Info("Ranking queue service initialized successfully")
	return service, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_queue")

	s.logger.Info("Starting ranking queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "start_queue")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "start_queue")
	s.metrics.RecordOperationDuration(ctx, "start_queue", duration)

	s.logger.Info("Ranking queue service started successfully")
	return nil
}

// Stop stops the River queue service and releases the pgx pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_queue")

	s.logger.Info("Stopping ranking queue service")

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "stop_queue")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "stop_queue")
	s.metrics.RecordOperationDuration(ctx, "stop_queue", duration)

	s.logger.Info("Ranking queue service stopped successfully")
	return nil
}

// RequestSnapshot enqueues an immediate snapshot job.
func (s *Service) RequestSnapshot(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "request_snapshot")

	_, err := s.client.Insert(ctx, SnapshotJob{}, &river.InsertOpts{
		Queue: "ranking",
		UniqueOpts: river.UniqueOpts{
			ByArgs: true, // One pending snapshot at a time
		},
	})
	if err != nil {
		s.logger.Error("Failed to enqueue snapshot job", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "request_snapshot")
		return fmt.Errorf("failed to enqueue snapshot job: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "request_snapshot")
	s.metrics.RecordOperationDuration(ctx, "request_snapshot", duration)
	return nil
}

// RequestDiscographySync enqueues a sync job for one rapper.
func (s *Service) RequestDiscographySync(ctx context.Context, rapperID shared.RapperID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "request_discography_sync")

	ctxLogger := s.logger.With(
		slog.String("rapper_id", rapperID.String()),
		slog.String("operation", "request_discography_sync"),
	)

	_, err := s.client.Insert(ctx, DiscographySyncJob{RapperID: rapperID}, &river.InsertOpts{
		Queue: "ranking",
		UniqueOpts: river.UniqueOpts{
			ByArgs: true, // Prevent duplicate scheduling for same rapper
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue discography sync job", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "request_discography_sync")
		return fmt.Errorf("failed to enqueue discography sync job: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "request_discography_sync")
	s.metrics.RecordOperationDuration(ctx, "request_discography_sync", duration)

	ctxLogger.Info("Discography sync job enqueued")
	return nil
}

// GetScheduledJobs returns pending ranking maintenance jobs (for debugging)
func (s *Service) GetScheduledJobs(ctx context.Context) ([]JobInfo, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "get_scheduled_jobs")

	type RiverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		CreatedAt   time.Time  `bun:"created_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []RiverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind IN (?, ?)", SnapshotJob{}.Kind(), DiscographySyncJob{}.Kind()).
		Where("state IN (?, ?)", "available", "scheduled").
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		s.logger.Error("Failed to query scheduled jobs", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "get_scheduled_jobs")
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "get_scheduled_jobs")
	s.metrics.RecordOperationDuration(ctx, "get_scheduled_jobs", duration)

	return result, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "queue_health_check")

	if s.client == nil {
		s.metrics.RecordOperationFailure(ctx, "queue_health_check")
		return fmt.Errorf("river client is nil")
	}

	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		s.logger.Error("Queue service health check failed", slog.Any("error", err))
		s.metrics.RecordOperationFailure(ctx, "queue_health_check")
		return fmt.Errorf("queue service health check failed: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordOperationSuccess(ctx, "queue_health_check")
	s.metrics.RecordOperationDuration(ctx, "queue_health_check", duration)

	s.logger.Debug("Queue service health check passed", slog.Int("total_jobs", count))
	return nil
}

// midnightUTC schedules a job at the next 00:00 UTC, matching the vote-day
// boundary used by the daily vote guard.
type midnightUTC struct{}

func (midnightUTC) Next(current time.Time) time.Time {
	next := current.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return next
}

// snapshotWorker publishes a snapshot request for the ranking handlers.
type snapshotWorker struct {
	river.WorkerDefaults[SnapshotJob]
	logger   *slog.Logger
	eventBus eventbus.EventBus
}

func newSnapshotWorker(logger *slog.Logger, eventBus eventbus.EventBus) *snapshotWorker {
	return &snapshotWorker{logger: logger, eventBus: eventBus}
}

func (w *snapshotWorker) Work(ctx context.Context, job *river.Job[SnapshotJob]) error {
	w.logger.InfoContext(ctx, "Publishing snapshot request", slog.Int64("job_id", job.ID))

	payload := rankingevents.SnapshotRequestedPayload{RequestedAt: time.Now().UTC()}
	msg, err := eventutil.NewMessage("", payload)
	if err != nil {
		return fmt.Errorf("failed to build snapshot request message: %w", err)
	}
	if err := w.eventBus.Publish(rankingevents.SnapshotRequested, msg); err != nil {
		return fmt.Errorf("failed to publish snapshot request: %w", err)
	}
	return nil
}

// discographySyncWorker publishes a sync request for the artist handlers.
type discographySyncWorker struct {
	river.WorkerDefaults[DiscographySyncJob]
	logger   *slog.Logger
	eventBus eventbus.EventBus
}

func newDiscographySyncWorker(logger *slog.Logger, eventBus eventbus.EventBus) *discographySyncWorker {
	return &discographySyncWorker{logger: logger, eventBus: eventBus}
}

func (w *discographySyncWorker) Work(ctx context.Context, job *river.Job[DiscographySyncJob]) error {
	w.logger.InfoContext(ctx, "Publishing discography sync request",
		slog.Int64("job_id", job.ID),
		slog.String("rapper_id", job.Args.RapperID.String()))

	payload := artistevents.DiscographySyncRequestedPayload{RapperID: job.Args.RapperID}
	msg, err := eventutil.NewMessage("", payload)
	if err != nil {
		return fmt.Errorf("failed to build discography sync message: %w", err)
	}
	if err := w.eventBus.Publish(artistevents.DiscographySyncRequested, msg); err != nil {
		return fmt.Errorf("failed to publish discography sync request: %w", err)
	}
	return nil
}
