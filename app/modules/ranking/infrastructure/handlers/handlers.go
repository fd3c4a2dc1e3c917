package rankinghandlers

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
)

// Handlers is the set of watermill handlers the ranking module registers.
type Handlers interface {
	HandleVoteRequested(msg *message.Message) error
	HandleVotesChanged(msg *message.Message) error
	HandleArtistChanged(msg *message.Message) error
	HandleSnapshotRequested(msg *message.Message) error
}

// RankingHandlers wires incoming events to the ranking service.
type RankingHandlers struct {
	service rankingservice.Service
	logger  *slog.Logger
}

var _ Handlers = (*RankingHandlers)(nil)

// NewRankingHandlers creates a new RankingHandlers.
func NewRankingHandlers(service rankingservice.Service, logger *slog.Logger) *RankingHandlers {
	return &RankingHandlers{
		service: service,
		logger:  logger,
	}
}
