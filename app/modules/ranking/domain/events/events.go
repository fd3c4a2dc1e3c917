// Package rankingevents defines the topics and payloads the ranking module
// publishes and consumes.
package rankingevents

import (
	"time"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Stream groups every ranking subject under one JetStream stream.
const Stream = "ranking"

const (
	// VoteRequested asks the module to record a member's vote.
	VoteRequested = "ranking.vote.requested"
	// VoteRecorded announces a successfully persisted vote.
	VoteRecorded = "ranking.vote.recorded"
	// VoteFailed announces a vote that could not be persisted.
	VoteFailed = "ranking.vote.failed"
	// VotesChanged is the change notification that vote rows for a ranking
	// were written; consumers treat it purely as an invalidation signal.
	VotesChanged = "ranking.votes.changed"
	// ViewUpdated announces that a ranking view was recomputed.
	ViewUpdated = "ranking.view.updated"
	// SnapshotRequested asks the module to persist position snapshots for
	// every ranking, feeding the next round of position deltas.
	SnapshotRequested = "ranking.snapshot.requested"
)

// VoteRequestedPayload carries a member's vote intent.
type VoteRequestedPayload struct {
	UserID    shared.UserID     `json:"user_id"`
	Tier      shared.MemberTier `json:"tier"`
	RankingID shared.RankingID  `json:"ranking_id"`
	RapperID  shared.RapperID   `json:"rapper_id"`
}

// VoteRecordedPayload announces a persisted vote.
type VoteRecordedPayload struct {
	UserID         shared.UserID     `json:"user_id"`
	RankingID      shared.RankingID  `json:"ranking_id"`
	RapperID       shared.RapperID   `json:"rapper_id"`
	Weight         shared.VoteWeight `json:"weight"`
	AlreadyCounted bool              `json:"already_counted"`
	VoteDay        string            `json:"vote_day"`
}

// VoteFailedPayload carries the reason a vote was rejected.
type VoteFailedPayload struct {
	UserID    shared.UserID    `json:"user_id"`
	RankingID shared.RankingID `json:"ranking_id"`
	RapperID  shared.RapperID  `json:"rapper_id"`
	Reason    string           `json:"reason"`
}

// VotesChangedPayload identifies the ranking whose vote rows changed. The
// payload is deliberately minimal: consumers refetch, never patch.
type VotesChangedPayload struct {
	RankingID shared.RankingID `json:"ranking_id"`
}

// ViewUpdatedPayload summarizes a completed recompute.
type ViewUpdatedPayload struct {
	RankingID  shared.RankingID `json:"ranking_id"`
	ItemCount  int              `json:"item_count"`
	ComputedAt time.Time        `json:"computed_at"`
}

// SnapshotRequestedPayload is empty today; the handler snapshots every
// ranking. A future shape could scope it to one ranking.
type SnapshotRequestedPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}
