package rankingservice

import (
	"sync"

	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// ViewStore holds the current in-memory view per ranking. Optimistic vote
// increments mutate it immediately; every successful recompute replaces the
// stored view wholesale (last-writer-wins reconciliation).
type ViewStore struct {
	mu    sync.RWMutex
	views map[shared.RankingID]*rankingdomain.View
}

// NewViewStore creates an empty store.
func NewViewStore() *ViewStore {
	return &ViewStore{views: make(map[shared.RankingID]*rankingdomain.View)}
}

// Get returns a copy of the cached view for a ranking, if any.
func (vs *ViewStore) Get(rankingID shared.RankingID) (*rankingdomain.View, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	view, ok := vs.views[rankingID]
	if !ok {
		return nil, false
	}
	return view.Clone(), true
}

// ApplyOptimistic bumps a rapper's displayed total and returns the
// pre-mutation snapshot for rollback. With no cached view there is nothing
// to mutate and the returned snapshot is nil.
func (vs *ViewStore) ApplyOptimistic(rankingID shared.RankingID, rapperID shared.RapperID, weight shared.VoteWeight) *rankingdomain.View {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	view, ok := vs.views[rankingID]
	if !ok {
		return nil
	}

	snapshot := view.Clone()
	view.ApplyOptimisticVote(rapperID, weight)
	return snapshot
}

// Restore puts a snapshot back, undoing an optimistic mutation. A nil
// snapshot means there was nothing cached before; the slot is cleared so a
// later read falls through to a fresh recompute.
func (vs *ViewStore) Restore(rankingID shared.RankingID, snapshot *rankingdomain.View) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	if snapshot == nil {
		delete(vs.views, rankingID)
		return
	}
	vs.views[rankingID] = snapshot
}

// Reconcile replaces the stored view with a freshly computed one.
func (vs *ViewStore) Reconcile(view *rankingdomain.View) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.views[view.RankingID] = view
}
