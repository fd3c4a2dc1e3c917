// Package api exposes the HTTP surface of the backend: vote submission,
// ranking views, charts, exports, and rapper profiles.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	artistservice "github.com/spit-hierarchy/spit-backend/app/modules/artist/application"
	artistdomain "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain"
	artistdb "github.com/spit-hierarchy/spit-backend/app/modules/artist/infrastructure/repositories"
	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	rankingqueue "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/queue"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
)

// Handlers serves the HTTP API on top of the module services.
type Handlers struct {
	ranking rankingservice.Service
	artist  artistservice.Service
	queue   rankingqueue.QueueService
	logger  *slog.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(ranking rankingservice.Service, artist artistservice.Service, queue rankingqueue.QueueService, logger *slog.Logger) *Handlers {
	return &Handlers{
		ranking: ranking,
		artist:  artist,
		queue:   queue,
		logger:  logger,
	}
}

type voteRequest struct {
	RapperID shared.RapperID `json:"rapper_id"`
}

type voteResponse struct {
	Weight         shared.VoteWeight `json:"weight"`
	AlreadyCounted bool              `json:"already_counted"`
}

type entryResponse struct {
	RapperID        shared.RapperID `json:"rapper_id"`
	RapperName      string          `json:"rapper_name"`
	Position        int             `json:"position"`
	PositionDelta   int             `json:"position_delta"`
	TotalVotes      int             `json:"total_votes"`
	Velocity24h     int             `json:"velocity_24h"`
	Hot             bool            `json:"hot"`
	EditorialPos    int             `json:"editorial_position"`
	EditorialReason string          `json:"editorial_reason,omitempty"`
}

type viewResponse struct {
	RankingID  shared.RankingID `json:"ranking_id"`
	Entries    []entryResponse  `json:"entries"`
	ComputedAt time.Time        `json:"computed_at"`
}

// HandleSubmitVote handles POST /api/v1/rankings/{rankingID}/votes.
func (h *Handlers) HandleSubmitVote(w http.ResponseWriter, r *http.Request) {
	rankingID, err := uuid.Parse(chi.URLParam(r, "rankingID"))
	if err != nil {
		http.Error(w, "invalid ranking id", http.StatusBadRequest)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	member := MemberFromContext(r.Context())
	result, err := h.ranking.SubmitVote(r.Context(), member, rankingID, req.RapperID)
	if err != nil {
		switch {
		case errors.Is(err, rankingservice.ErrNotAuthenticated):
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		case errors.Is(err, rankingservice.ErrMissingRanking), errors.Is(err, rankingservice.ErrMissingRapper):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, rankingdb.ErrRankingNotFound):
			http.Error(w, "ranking not found", http.StatusNotFound)
		default:
			h.logger.ErrorContext(r.Context(), "Vote submission failed", slog.Any("error", err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, voteResponse{
		Weight:         result.Weight,
		AlreadyCounted: result.AlreadyCounted,
	})
}

// HandleGetRankingView handles GET /api/v1/rankings/{rankingID}.
func (h *Handlers) HandleGetRankingView(w http.ResponseWriter, r *http.Request) {
	rankingID, err := uuid.Parse(chi.URLParam(r, "rankingID"))
	if err != nil {
		http.Error(w, "invalid ranking id", http.StatusBadRequest)
		return
	}

	view, err := h.ranking.GetRankingView(r.Context(), rankingID)
	if err != nil {
		if errors.Is(err, rankingdb.ErrRankingNotFound) {
			http.Error(w, "ranking not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to load ranking view", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, http.StatusOK, toViewResponse(view))
}

// HandlePositionChart handles GET /api/v1/rankings/{rankingID}/items/{rapperID}/chart.
func (h *Handlers) HandlePositionChart(w http.ResponseWriter, r *http.Request) {
	rankingID, err := uuid.Parse(chi.URLParam(r, "rankingID"))
	if err != nil {
		http.Error(w, "invalid ranking id", http.StatusBadRequest)
		return
	}
	rapperID, err := uuid.Parse(chi.URLParam(r, "rapperID"))
	if err != nil {
		http.Error(w, "invalid rapper id", http.StatusBadRequest)
		return
	}

	png, err := h.ranking.PositionChart(r.Context(), rankingID, rapperID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render position chart", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// HandleExportStandings handles GET /api/v1/rankings/{rankingID}/export.
func (h *Handlers) HandleExportStandings(w http.ResponseWriter, r *http.Request) {
	rankingID, err := uuid.Parse(chi.URLParam(r, "rankingID"))
	if err != nil {
		http.Error(w, "invalid ranking id", http.StatusBadRequest)
		return
	}

	book, err := h.ranking.ExportStandings(r.Context(), rankingID)
	if err != nil {
		if errors.Is(err, rankingdb.ErrRankingNotFound) {
			http.Error(w, "ranking not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to export standings", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "standings-"+rankingID.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(book)
}

type rapperResponse struct {
	ID            shared.RapperID `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	MusicBrainzID string          `json:"musicbrainz_id,omitempty"`
	Verified      bool            `json:"verified"`
	SyncedAt      *time.Time      `json:"synced_at,omitempty"`
}

type releaseResponse struct {
	MBID          string `json:"mbid"`
	Title         string `json:"title"`
	ReleaseType   string `json:"release_type,omitempty"`
	FirstReleased string `json:"first_released,omitempty"`
}

type rapperDetailResponse struct {
	rapperResponse
	Releases []releaseResponse `json:"releases"`
}

// HandleListRappers handles GET /api/v1/rappers.
func (h *Handlers) HandleListRappers(w http.ResponseWriter, r *http.Request) {
	rappers, err := h.artist.ListRappers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list rappers", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]rapperResponse, 0, len(rappers))
	for i := range rappers {
		out = append(out, toRapperResponse(&rappers[i]))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// HandleGetRapper handles GET /api/v1/rappers/{rapperID}.
func (h *Handlers) HandleGetRapper(w http.ResponseWriter, r *http.Request) {
	rapperID, err := uuid.Parse(chi.URLParam(r, "rapperID"))
	if err != nil {
		http.Error(w, "invalid rapper id", http.StatusBadRequest)
		return
	}

	rapper, err := h.artist.GetRapper(r.Context(), rapperID)
	if err != nil {
		if errors.Is(err, artistdb.ErrRapperNotFound) {
			http.Error(w, "rapper not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "Failed to load rapper", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	releases, err := h.artist.ListReleases(r.Context(), rapperID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load releases", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	detail := rapperDetailResponse{
		rapperResponse: toRapperResponse(rapper),
		Releases:       make([]releaseResponse, 0, len(releases)),
	}
	for _, rel := range releases {
		detail.Releases = append(detail.Releases, releaseResponse{
			MBID:          rel.MBID,
			Title:         rel.Title,
			ReleaseType:   rel.ReleaseType,
			FirstReleased: rel.FirstReleased,
		})
	}
	h.respondJSON(w, http.StatusOK, detail)
}

// HandleRequestSync handles POST /api/v1/rappers/{rapperID}/sync. The sync
// itself runs through the queue so the request returns immediately.
func (h *Handlers) HandleRequestSync(w http.ResponseWriter, r *http.Request) {
	rapperID, err := uuid.Parse(chi.URLParam(r, "rapperID"))
	if err != nil {
		http.Error(w, "invalid rapper id", http.StatusBadRequest)
		return
	}

	if err := h.queue.RequestDiscographySync(r.Context(), rapperID); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to enqueue sync", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// HandleHealthz handles GET /healthz.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

func toViewResponse(view *rankingdomain.View) viewResponse {
	entries := make([]entryResponse, 0, len(view.Entries))
	for _, e := range view.Entries {
		entries = append(entries, entryResponse{
			RapperID:        e.RapperID,
			RapperName:      e.RapperName,
			Position:        e.DynamicPosition,
			PositionDelta:   e.PositionDelta,
			TotalVotes:      e.TotalVotes,
			Velocity24h:     e.Velocity24h,
			Hot:             e.Hot,
			EditorialPos:    e.EditorialPos,
			EditorialReason: e.Reason,
		})
	}
	return viewResponse{
		RankingID:  view.RankingID,
		Entries:    entries,
		ComputedAt: view.ComputedAt,
	}
}

func toRapperResponse(rapper *artistdomain.Rapper) rapperResponse {
	resp := rapperResponse{
		ID:            rapper.ID,
		Name:          rapper.Name,
		Slug:          rapper.Slug,
		MusicBrainzID: rapper.MusicBrainzID,
		Verified:      rapper.Verified,
	}
	if !rapper.SyncedAt.IsZero() {
		syncedAt := rapper.SyncedAt
		resp.SyncedAt = &syncedAt
	}
	return resp
}
