package rankinghandlers

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	artistevents "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain/events"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
)

// HandleVotesChanged recomputes a ranking when its vote rows change. The
// payload is only an invalidation signal: the handler refetches everything
// rather than patching.
func (h *RankingHandlers) HandleVotesChanged(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.VotesChangedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal VotesChangedPayload: %w", err)
	}

	ctx := eventutil.CtxWithCorrelationID(msg.Context(), correlationID)

	if _, err := h.service.RebuildView(ctx, payload.RankingID); err != nil {
		h.logger.Error("Failed to rebuild ranking view",
			slog.String("correlation_id", correlationID),
			slog.String("ranking_id", payload.RankingID.String()),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to rebuild ranking view: %w", err)
	}

	return nil
}

// HandleArtistChanged recomputes every ranking carrying the changed rapper.
func (h *RankingHandlers) HandleArtistChanged(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[artistevents.ArtistChangedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal ArtistChangedPayload: %w", err)
	}

	ctx := eventutil.CtxWithCorrelationID(msg.Context(), correlationID)

	if err := h.service.RebuildForRapper(ctx, payload.RapperID); err != nil {
		return fmt.Errorf("failed to rebuild rankings for rapper: %w", err)
	}

	return nil
}

// HandleSnapshotRequested persists a fresh snapshot generation for every
// ranking.
func (h *RankingHandlers) HandleSnapshotRequested(msg *message.Message) error {
	correlationID, _, err := eventutil.UnmarshalPayload[rankingevents.SnapshotRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal SnapshotRequestedPayload: %w", err)
	}

	ctx := eventutil.CtxWithCorrelationID(msg.Context(), correlationID)

	if err := h.service.SnapshotAll(ctx); err != nil {
		return fmt.Errorf("failed to snapshot rankings: %w", err)
	}

	h.logger.Info("Ranking snapshots completed", slog.String("correlation_id", correlationID))
	return nil
}
