package shared

import (
	"time"

	"github.com/google/uuid"
)

// UserID identifies a member across every module.
type UserID string

// RankingID identifies a ranking list.
type RankingID = uuid.UUID

// RapperID identifies a rapper profile.
type RapperID = uuid.UUID

// VoteWeight is the tier-derived multiplier applied to a single vote.
type VoteWeight int

// OperationID correlates a multi-step operation across log lines and events.
type OperationID = uuid.UUID

// MemberTier is the membership level that determines vote weight.
type MemberTier string

const (
	TierBronze   MemberTier = "bronze"
	TierSilver   MemberTier = "silver"
	TierGold     MemberTier = "gold"
	TierPlatinum MemberTier = "platinum"
	TierDiamond  MemberTier = "diamond"
)

// VoteMultiplier returns the integer weight a member's vote carries.
// Unknown or empty tiers weigh 1, the same as bronze.
func (t MemberTier) VoteMultiplier() VoteWeight {
	switch t {
	case TierDiamond:
		return 5
	case TierPlatinum:
		return 4
	case TierGold:
		return 3
	case TierSilver:
		return 2
	default:
		return 1
	}
}

// MemberContext carries the authenticated member identity into the vote
// pipeline. It is passed explicitly so services stay free of ambient state.
type MemberContext struct {
	UserID UserID
	Tier   MemberTier
}

// Authenticated reports whether the context belongs to a signed-in member.
func (m MemberContext) Authenticated() bool {
	return m.UserID != ""
}

// VoteDay is the calendar-day granularity used by daily vote tracking.
// Days roll over in UTC.
func VoteDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
