package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	artistdomain "github.com/spit-hierarchy/spit-backend/app/modules/artist/domain"
	rankingservice "github.com/spit-hierarchy/spit-backend/app/modules/ranking/application"
	rankingdomain "github.com/spit-hierarchy/spit-backend/app/modules/ranking/domain"
	rankingdb "github.com/spit-hierarchy/spit-backend/app/modules/ranking/infrastructure/repositories"
	"github.com/spit-hierarchy/spit-backend/app/shared"
	"github.com/spit-hierarchy/spit-backend/pkg/jwt"
)

const testJWTSecret = "test-secret-at-least-32-bytes-long!!"

var (
	apiRankingID = uuid.MustParse("33333333-0000-4000-8000-000000000001")
	apiRapperID  = uuid.MustParse("44444444-0000-4000-8000-000000000001")
)

type testAPI struct {
	server  *httptest.Server
	ranking *FakeRankingService
	artist  *FakeArtistService
	queue   *FakeQueueService
	jwt     jwt.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ranking := &FakeRankingService{}
	artist := &FakeArtistService{}
	queue := &FakeQueueService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwt.NewService(testJWTSecret, time.Hour)

	handlers := NewHandlers(ranking, artist, queue, logger)
	router := NewRouter(handlers, jwtService, nil, rate.Limit(1000), 1000)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testAPI{server: srv, ranking: ranking, artist: artist, queue: queue, jwt: jwtService}
}

func (a *testAPI) memberToken(t *testing.T, tier string) string {
	t.Helper()
	token, err := a.jwt.GenerateToken("user-1", tier, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSubmitVote_RequiresToken(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodPost, "/api/v1/rankings/"+apiRankingID.String()+"/votes", "", `{"rapper_id":"`+apiRapperID.String()+`"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	if len(a.ranking.CapturedMembers) != 0 {
		t.Error("service should not be reached without a token")
	}
}

func TestSubmitVote_RejectsBadToken(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodPost, "/api/v1/rankings/"+apiRankingID.String()+"/votes", "garbage", `{}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for a bad token, got %d", resp.StatusCode)
	}
}

func TestSubmitVote_CarriesTierFromToken(t *testing.T) {
	a := newTestAPI(t)
	token := a.memberToken(t, "gold")

	resp := a.do(t, http.MethodPost, "/api/v1/rankings/"+apiRankingID.String()+"/votes", token,
		`{"rapper_id":"`+apiRapperID.String()+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body voteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Weight != 3 {
		t.Errorf("expected gold weight 3, got %d", body.Weight)
	}

	if len(a.ranking.CapturedMembers) != 1 {
		t.Fatalf("expected 1 SubmitVote call, got %d", len(a.ranking.CapturedMembers))
	}
	member := a.ranking.CapturedMembers[0]
	if member.UserID != "user-1" || member.Tier != shared.TierGold {
		t.Errorf("unexpected member context: %+v", member)
	}
}

func TestSubmitVote_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown ranking", rankingdb.ErrRankingNotFound, http.StatusNotFound},
		{"missing rapper", rankingservice.ErrMissingRapper, http.StatusBadRequest},
		{"backend failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t)
			a.ranking.SubmitVoteFunc = func(ctx context.Context, member shared.MemberContext, rankingID shared.RankingID, rapperID shared.RapperID) (*rankingservice.VoteResult, error) {
				return nil, tt.serviceErr
			}
			token := a.memberToken(t, "bronze")

			resp := a.do(t, http.MethodPost, "/api/v1/rankings/"+apiRankingID.String()+"/votes", token,
				`{"rapper_id":"`+apiRapperID.String()+`"}`)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestSubmitVote_InvalidRankingID(t *testing.T) {
	a := newTestAPI(t)
	token := a.memberToken(t, "bronze")

	resp := a.do(t, http.MethodPost, "/api/v1/rankings/not-a-uuid/votes", token, `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetRankingView_IsPublic(t *testing.T) {
	a := newTestAPI(t)
	a.ranking.GetRankingViewFunc = func(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
		return &rankingdomain.View{
			RankingID: rankingID,
			Entries: []rankingdomain.Entry{
				{RapperID: apiRapperID, RapperName: "One", DynamicPosition: 1, TotalVotes: 13, Hot: true},
			},
			ComputedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		}, nil
	}

	resp := a.do(t, http.MethodGet, "/api/v1/rankings/"+apiRankingID.String(), "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body viewResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].TotalVotes != 13 || !body.Entries[0].Hot {
		t.Errorf("unexpected view body: %+v", body)
	}
}

func TestGetRankingView_NotFound(t *testing.T) {
	a := newTestAPI(t)
	a.ranking.GetRankingViewFunc = func(ctx context.Context, rankingID shared.RankingID) (*rankingdomain.View, error) {
		return nil, rankingdb.ErrRankingNotFound
	}

	resp := a.do(t, http.MethodGet, "/api/v1/rankings/"+apiRankingID.String(), "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPositionChart_ContentType(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodGet, "/api/v1/rankings/"+apiRankingID.String()+"/items/"+apiRapperID.String()+"/chart", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
}

func TestExportStandings_ContentDisposition(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodGet, "/api/v1/rankings/"+apiRankingID.String()+"/export", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
		t.Errorf("unexpected content disposition %s", cd)
	}
}

func TestRequestSync_Enqueues(t *testing.T) {
	a := newTestAPI(t)
	token := a.memberToken(t, "silver")

	resp := a.do(t, http.MethodPost, "/api/v1/rappers/"+apiRapperID.String()+"/sync", token, "")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	if len(a.queue.SyncRequests) != 1 || a.queue.SyncRequests[0] != apiRapperID {
		t.Errorf("expected one queued sync for %s, got %v", apiRapperID, a.queue.SyncRequests)
	}
}

func TestRequestSync_QueueFailure(t *testing.T) {
	a := newTestAPI(t)
	a.queue.EnqueueErr = errors.New("river down")
	token := a.memberToken(t, "silver")

	resp := a.do(t, http.MethodPost, "/api/v1/rappers/"+apiRapperID.String()+"/sync", token, "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}

func TestGetRapper_IncludesReleases(t *testing.T) {
	a := newTestAPI(t)
	a.artist.Releases = []artistdomain.Release{
		{MBID: "rg-1", RapperID: apiRapperID, Title: "Illmatic", ReleaseType: "Album", FirstReleased: "1994-04-19"},
	}

	resp := a.do(t, http.MethodGet, "/api/v1/rappers/"+apiRapperID.String(), "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body rapperDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ID != apiRapperID || body.Name != "Test Rapper" {
		t.Errorf("unexpected rapper body: %+v", body)
	}
	if len(body.Releases) != 1 || body.Releases[0].Title != "Illmatic" {
		t.Errorf("unexpected releases: %v", body.Releases)
	}
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t)

	resp := a.do(t, http.MethodGet, "/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRateLimit_RejectsBursts(t *testing.T) {
	ranking := &FakeRankingService{}
	artist := &FakeArtistService{}
	queue := &FakeQueueService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtService := jwt.NewService(testJWTSecret, time.Hour)

	handlers := NewHandlers(ranking, artist, queue, logger)
	router := NewRouter(handlers, jwtService, nil, rate.Limit(1), 1)
	srv := httptest.NewServer(router)
	defer srv.Close()

	statuses := make(map[int]int)
	for i := 0; i < 3; i++ {
		resp, err := srv.Client().Get(srv.URL + "/api/v1/rappers")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		statuses[resp.StatusCode]++
	}
	if statuses[http.StatusTooManyRequests] == 0 {
		t.Errorf("expected at least one 429, got %v", statuses)
	}
}
