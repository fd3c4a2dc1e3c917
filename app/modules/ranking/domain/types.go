package rankingdomain

import (
	"time"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Item is one curated entry of a ranking: a rapper plus editorial metadata.
type Item struct {
	RapperID   shared.RapperID
	RapperName string
	Position   int // editorial ordering, admin-managed
	Reason     string
}

// VoteRecord is one persisted weighted vote row projected into the domain.
type VoteRecord struct {
	UserID    shared.UserID
	RapperID  shared.RapperID
	Weight    shared.VoteWeight
	UpdatedAt time.Time
}

// DailyVoteFact is the existence record limiting a member to one counted
// vote per rapper per ranking per calendar day.
type DailyVoteFact struct {
	UserID    shared.UserID
	RankingID shared.RankingID
	RapperID  shared.RapperID
	VoteDay   string
}

// Entry is one row of the computed ranking view.
type Entry struct {
	RapperID        shared.RapperID
	RapperName      string
	EditorialPos    int
	Reason          string
	TotalVotes      int
	DynamicPosition int
	PositionDelta   int // negative = moved up since the last snapshot
	Velocity24h     int
	Hot             bool
}

// View is the fully ordered, derived presentation of a ranking. It is
// rebuilt wholesale on every recompute; it has no incremental update path.
type View struct {
	RankingID  shared.RankingID
	Entries    []Entry
	ComputedAt time.Time
}

// Clone deep-copies a view so optimistic mutation never aliases the
// snapshot used for rollback.
func (v *View) Clone() *View {
	if v == nil {
		return nil
	}
	entries := make([]Entry, len(v.Entries))
	copy(entries, v.Entries)
	return &View{
		RankingID:  v.RankingID,
		Entries:    entries,
		ComputedAt: v.ComputedAt,
	}
}
