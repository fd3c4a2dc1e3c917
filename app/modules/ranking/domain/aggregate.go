package rankingdomain

import (
	"bytes"
	"sort"
	"time"

	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// hotPercentile keeps the top 15% of positive 24h velocities; the value at
// that index becomes the hot cutoff.
const hotPercentile = 0.15

// velocityWindow is the trailing window used for vote velocity.
const velocityWindow = 24 * time.Hour

// ComputeView derives the ordered ranking view from raw vote rows.
//
// Weighted totals are summed per rapper, positions are dense 1..N by
// descending total with ties broken by ascending rapper ID, deltas are
// current position minus the previous snapshot's position for the same
// rapper (zero when the rapper has no prior snapshot), and hot flags come
// from the velocity percentile cutoff.
func ComputeView(
	rankingID shared.RankingID,
	items []Item,
	votes []VoteRecord,
	previousPositions map[shared.RapperID]int,
	now time.Time,
) *View {
	totals := make(map[shared.RapperID]int, len(items))
	velocities := make(map[shared.RapperID]int, len(items))

	windowStart := now.Add(-velocityWindow)
	for _, v := range votes {
		totals[v.RapperID] += int(v.Weight)
		if v.UpdatedAt.After(windowStart) {
			velocities[v.RapperID] += int(v.Weight)
		}
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			RapperID:     item.RapperID,
			RapperName:   item.RapperName,
			EditorialPos: item.Position,
			Reason:       item.Reason,
			TotalVotes:   totals[item.RapperID],
			Velocity24h:  velocities[item.RapperID],
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalVotes != entries[j].TotalVotes {
			return entries[i].TotalVotes > entries[j].TotalVotes
		}
		return bytes.Compare(entries[i].RapperID[:], entries[j].RapperID[:]) < 0
	})

	cutoff := HotCutoff(collectVelocities(entries))

	for i := range entries {
		entries[i].DynamicPosition = i + 1
		if prev, ok := previousPositions[entries[i].RapperID]; ok {
			entries[i].PositionDelta = entries[i].DynamicPosition - prev
		}
		entries[i].Hot = cutoff > 0 && entries[i].TotalVotes >= cutoff
	}

	return &View{
		RankingID:  rankingID,
		Entries:    entries,
		ComputedAt: now,
	}
}

func collectVelocities(entries []Entry) []int {
	velocities := make([]int, 0, len(entries))
	for _, e := range entries {
		velocities = append(velocities, e.Velocity24h)
	}
	return velocities
}

// HotCutoff returns the velocity-derived threshold a weighted total must
// meet to be flagged hot. Only positive velocities participate; with none,
// the cutoff is 0 and nothing qualifies.
func HotCutoff(velocities []int) int {
	positive := make([]int, 0, len(velocities))
	for _, v := range velocities {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) == 0 {
		return 0
	}

	sort.Sort(sort.Reverse(sort.IntSlice(positive)))

	idx := int(float64(len(velocities)) * hotPercentile)
	if idx >= len(positive) {
		idx = len(positive) - 1
	}
	return positive[idx]
}

// ApplyOptimisticVote bumps a rapper's displayed total in place without
// re-ranking. The authoritative recompute that follows replaces the view
// wholesale, so positions are left untouched here.
func (v *View) ApplyOptimisticVote(rapperID shared.RapperID, weight shared.VoteWeight) {
	for i := range v.Entries {
		if v.Entries[i].RapperID == rapperID {
			v.Entries[i].TotalVotes += int(weight)
			return
		}
	}
}
