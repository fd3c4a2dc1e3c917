package rankingdb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Ranking is a named, ordered list of rappers that members vote on.
type Ranking struct {
	bun.BaseModel `bun:"table:rankings,alias:r"`

	ID          shared.RankingID `bun:"id,pk,type:uuid"`
	Title       string           `bun:"title,notnull"`
	Description string           `bun:"description"`
	IsOfficial  bool             `bun:"is_official,notnull,default:false"`
	CreatedBy   shared.UserID    `bun:"created_by"`
	CreatedAt   time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// RankingItem is one curated entry of a ranking. Immutable except by admin edit.
type RankingItem struct {
	bun.BaseModel `bun:"table:ranking_items,alias:ri"`

	ID        int64            `bun:"id,pk,autoincrement"`
	RankingID shared.RankingID `bun:"ranking_id,type:uuid,notnull"`
	RapperID  shared.RapperID  `bun:"rapper_id,type:uuid,notnull"`
	Position  int              `bun:"position,notnull"` // editorial ordering
	Reason    string           `bun:"reason"`

	RapperName string `bun:"rapper_name,scanonly"`
}

// Vote is the canonical weighted vote row. One row per
// (user, ranking, rapper); a repeat vote updates weight and timestamps.
type Vote struct {
	bun.BaseModel `bun:"table:ranking_votes,alias:v"`

	ID         int64             `bun:"id,pk,autoincrement"`
	UserID     shared.UserID     `bun:"user_id,notnull"`
	RankingID  shared.RankingID  `bun:"ranking_id,type:uuid,notnull"`
	RapperID   shared.RapperID   `bun:"rapper_id,type:uuid,notnull"`
	VoteWeight shared.VoteWeight `bun:"vote_weight,notnull"`
	MemberTier shared.MemberTier `bun:"member_tier,notnull"` // tier at the moment of voting
	VoteDay    string            `bun:"vote_day,notnull"`
	CreatedAt  time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// DailyVote is the daily-tracking row. Existence is the "has voted today"
// fact; rows are created once and never updated, expiring by date rollover.
type DailyVote struct {
	bun.BaseModel `bun:"table:daily_vote_tracking,alias:dv"`

	ID        int64            `bun:"id,pk,autoincrement"`
	UserID    shared.UserID    `bun:"user_id,notnull"`
	RankingID shared.RankingID `bun:"ranking_id,type:uuid,notnull"`
	RapperID  shared.RapperID  `bun:"rapper_id,type:uuid,notnull"`
	VoteDay   string           `bun:"vote_day,notnull"`
	CreatedAt time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// SnapshotEntry is one rapper's dynamic position at snapshot time. The
// latest snapshot set per ranking is the baseline for position deltas;
// older sets remain for history charts.
type SnapshotEntry struct {
	bun.BaseModel `bun:"table:ranking_snapshots,alias:rs"`

	ID              int64            `bun:"id,pk,autoincrement"`
	RankingID       shared.RankingID `bun:"ranking_id,type:uuid,notnull"`
	RapperID        shared.RapperID  `bun:"rapper_id,type:uuid,notnull"`
	DynamicPosition int              `bun:"dynamic_position,notnull"`
	TotalVotes      int              `bun:"total_votes,notnull,default:0"`
	SnapshotAt      time.Time        `bun:"snapshot_at,nullzero,notnull,default:current_timestamp"`
}
