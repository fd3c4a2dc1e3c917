package rankinghandlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
	rankingevents "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain/events"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/internal/eventutil"
)

// HandleVoteRequested handles the VoteRequested event.
func (h *RankingHandlers) HandleVoteRequested(msg *message.Message) error {
	correlationID, payload, err := eventutil.UnmarshalPayload[rankingevents.VoteRequestedPayload](msg, h.logger)
	if err != nil {
		return fmt.Errorf("failed to unmarshal VoteRequestedPayload: %w", err)
	}

	h.logger.Info("Received VoteRequested event",
		slog.String("correlation_id", correlationID),
		slog.String("user_id", string(payload.UserID)),
		slog.String("ranking_id", payload.RankingID.String()),
		slog.String("rapper_id", payload.RapperID.String()),
	)

	member := shared.MemberContext{
		UserID: payload.UserID,
		Tier:   payload.Tier,
	}

	ctx := eventutil.CtxWithCorrelationID(msg.Context(), correlationID)

	_, err = h.service.SubmitVote(ctx, member, payload.RankingID, payload.RapperID)
	if err != nil {
		// Validation failures and votes for rankings that do not exist are
		// terminal: redelivery cannot fix the message.
		if errors.Is(err, rankingservice.ErrNotAuthenticated) ||
			errors.Is(err, rankingservice.ErrMissingRanking) ||
			errors.Is(err, rankingservice.ErrMissingRapper) ||
			errors.Is(err, rankingdb.ErrRankingNotFound) {
			h.logger.Warn("Rejected invalid vote request",
				slog.String("correlation_id", correlationID),
				slog.Any("error", err),
			)
			return nil
		}
		return fmt.Errorf("failed to submit vote: %w", err)
	}

	return nil
}
