package rankingservice

import (
	"log/slog"
	"sync"
	"time"

	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// guardKey namespaces the cache per (user, ranking) so one ranking's votes
// can never leak into another ranking's "already voted" answer.
type guardKey struct {
	UserID    shared.UserID
	RankingID shared.RankingID
}

// guardEntry is the cached daily-vote state for one member in one ranking.
// The identity fields are stored redundantly and re-validated on every
// read, so a corrupted or stale entry is discarded instead of trusted.
type guardEntry struct {
	UserID    shared.UserID
	RankingID shared.RankingID
	VoteDay   string
	Rappers   map[shared.RapperID]struct{}
}

// DailyVoteGuard answers "has this member already voted for this rapper,
// in this ranking, today?" from a local cache seeded by the authoritative
// daily-tracking table.
type DailyVoteGuard struct {
	mu      sync.Mutex
	entries map[guardKey]*guardEntry
	logger  *slog.Logger
	clock   func() time.Time
}

// NewDailyVoteGuard creates an empty guard.
func NewDailyVoteGuard(logger *slog.Logger, clock func() time.Time) *DailyVoteGuard {
	return &DailyVoteGuard{
		entries: make(map[guardKey]*guardEntry),
		logger:  logger,
		clock:   clock,
	}
}

// Seed replaces the cache for (user, ranking) with the authoritative facts.
// Facts whose user, ranking, or day do not match the expected identity are
// logged and excluded rather than cached.
func (g *DailyVoteGuard) Seed(userID shared.UserID, rankingID shared.RankingID, records []rankingdomain.DailyVoteFact) {
	today := shared.VoteDay(g.clock())

	entry := &guardEntry{
		UserID:    userID,
		RankingID: rankingID,
		VoteDay:   today,
		Rappers:   make(map[shared.RapperID]struct{}, len(records)),
	}

	for _, rec := range records {
		if rec.UserID != userID || rec.RankingID != rankingID || rec.VoteDay != today {
			g.logger.Warn("Discarding daily vote record that does not match its cache slot",
				slog.String("expected_user", string(userID)),
				slog.String("record_user", string(rec.UserID)),
				slog.String("expected_ranking", rankingID.String()),
				slog.String("record_ranking", rec.RankingID.String()),
				slog.String("expected_day", today),
				slog.String("record_day", rec.VoteDay),
			)
			continue
		}
		entry.Rappers[rec.RapperID] = struct{}{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[guardKey{UserID: userID, RankingID: rankingID}] = entry
}

// HasVotedToday reports whether a matching record exists for today. A
// cached entry from another day, user, or ranking is dropped on read and
// treated as "not yet voted" (permissive default; the database uniqueness
// constraint remains the authoritative backstop).
func (g *DailyVoteGuard) HasVotedToday(userID shared.UserID, rankingID shared.RankingID, rapperID shared.RapperID) bool {
	today := shared.VoteDay(g.clock())

	g.mu.Lock()
	defer g.mu.Unlock()

	key := guardKey{UserID: userID, RankingID: rankingID}
	entry, ok := g.entries[key]
	if !ok {
		return false
	}

	if entry.UserID != userID || entry.RankingID != rankingID || entry.VoteDay != today {
		g.logger.Info("Dropping stale daily vote cache entry",
			slog.String("user_id", string(userID)),
			slog.String("ranking_id", rankingID.String()),
			slog.String("cached_day", entry.VoteDay),
			slog.String("today", today),
		)
		delete(g.entries, key)
		return false
	}

	_, voted := entry.Rappers[rapperID]
	return voted
}

// AddVoteToTracking records a vote in the cache. Idempotent: calling it
// twice for the same rapper and day changes nothing.
func (g *DailyVoteGuard) AddVoteToTracking(userID shared.UserID, rankingID shared.RankingID, rapperID shared.RapperID) {
	today := shared.VoteDay(g.clock())

	g.mu.Lock()
	defer g.mu.Unlock()

	key := guardKey{UserID: userID, RankingID: rankingID}
	entry, ok := g.entries[key]
	if !ok || entry.VoteDay != today {
		entry = &guardEntry{
			UserID:    userID,
			RankingID: rankingID,
			VoteDay:   today,
			Rappers:   make(map[shared.RapperID]struct{}),
		}
		g.entries[key] = entry
	}

	entry.Rappers[rapperID] = struct{}{}
}
