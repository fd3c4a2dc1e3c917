package rankingqueue

import (
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// SnapshotJob triggers a position snapshot across every ranking. The worker
// publishes the snapshot request on the event bus rather than touching the
// database itself, so the ranking handlers stay the single write path.
type SnapshotJob struct{}

// Kind returns the job type identifier for River
func (SnapshotJob) Kind() string { return "ranking_snapshot" }

// DiscographySyncJob triggers a MusicBrainz discography refresh. RapperID is
// the zero UUID for the periodic sweep so the artist module picks the stalest
// profiles itself.
type DiscographySyncJob struct {
	RapperID shared.RapperID `json:"rapper_id"`
}

// Kind returns the job type identifier for River
func (DiscographySyncJob) Kind() string { return "discography_sync" }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
