package artisthandlers

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	artistservice "github.com/spit-hierarchy/spit-backend/app/modules/artist/application"
)

// Handlers is the set of watermill handlers the artist module registers.
type Handlers interface {
	HandleDiscographySyncRequested(msg *message.Message) error
}

// ArtistHandlers wires incoming events to the artist service.
type ArtistHandlers struct {
	service artistservice.Service
	logger  *slog.Logger
}

var _ Handlers = (*ArtistHandlers)(nil)

// NewArtistHandlers creates a new ArtistHandlers.
func NewArtistHandlers(service artistservice.Service, logger *slog.Logger) *ArtistHandlers {
	return &ArtistHandlers{
		service: service,
		logger:  logger,
	}
}
