package artisthandlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	artistevents "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain/events"
	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
)

// HandleDiscographySyncRequested handles the DiscographySyncRequested event.
// A zero rapper ID is the periodic sweep: the service picks the stalest
// profiles itself.
func (h *ArtistHandlers) HandleDiscographySyncRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[artistevents.DiscographySyncRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal DiscographySyncRequestedPayload: %w", err)
	}

	h.logger.Info("Received DiscographySyncRequested event",
		slog.String("correlation_id", correlationID),
		slog.String("rapper_id", payload.RapperID.String()),
	)

	ctx := eventutil.CtxWithCorrelationID(msg.Context(), correlationID)

	if payload.RapperID == uuid.Nil {
		if _, err := h.service.SyncStaleProfiles(ctx); err != nil {
			return fmt.Errorf("failed to sync stale profiles: %w", err)
		}
		return nil
	}

	if _, err := h.service.SyncDiscography(ctx, payload.RapperID); err != nil {
		// A vanished rapper is terminal: redelivery cannot fix the message.
		if errors.Is(err, artistdb.ErrRapperNotFound) {
			h.logger.Warn("Dropping sync request for unknown rapper",
				slog.String("correlation_id", correlationID),
				slog.String("rapper_id", payload.RapperID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to sync discography: %w", err)
	}
	return nil
}
