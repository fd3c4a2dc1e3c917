package artistservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// MusicBrainz allows one request per second for anonymous clients.
	musicBrainzRPS       = 1
	releaseGroupPageSize = 100
	maxReleaseGroupPages = 20
)

// ReleaseGroup is the slice of a MusicBrainz release group the sync keeps.
type ReleaseGroup struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	PrimaryType      string `json:"primary-type"`
	FirstReleaseDate string `json:"first-release-date"`
}

// MusicBrainzClient is the slice of the MusicBrainz API the sync needs.
type MusicBrainzClient interface {
	// SearchArtist resolves an artist name to its MusicBrainz ID, returning
	// the top-scored match.
	SearchArtist(ctx context.Context, name string) (string, error)
	// BrowseReleaseGroups pages through every release group of an artist.
	BrowseReleaseGroups(ctx context.Context, artistMBID string) ([]ReleaseGroup, error)
}

// HTTPMusicBrainzClient talks to the MusicBrainz web service, throttled to
// the published anonymous rate limit.
type HTTPMusicBrainzClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

var _ MusicBrainzClient = (*HTTPMusicBrainzClient)(nil)

// NewMusicBrainzClient creates a rate-limited MusicBrainz client. userAgent
// is required by the MusicBrainz terms of service.
func NewMusicBrainzClient(baseURL, userAgent string) *HTTPMusicBrainzClient {
	return &HTTPMusicBrainzClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(musicBrainzRPS), 1),
	}
}

// SearchArtist resolves an artist name to its MusicBrainz ID.
func (c *HTTPMusicBrainzClient) SearchArtist(ctx context.Context, name string) (string, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf("artist:%q", name))
	query.Set("fmt", "json")
	query.Set("limit", "1")

	var result struct {
		Artists []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Score int    `json:"score"`
		} `json:"artists"`
	}
	if err := c.get(ctx, "artist", query, &result); err != nil {
		return "", fmt.Errorf("artist search failed: %w", err)
	}
	if len(result.Artists) == 0 {
		return "", fmt.Errorf("no MusicBrainz artist matches %q", name)
	}
	return result.Artists[0].ID, nil
}

// BrowseReleaseGroups pages through an artist's release groups. The page cap
// keeps a pathological discography from pinning the sync worker.
func (c *HTTPMusicBrainzClient) BrowseReleaseGroups(ctx context.Context, artistMBID string) ([]ReleaseGroup, error) {
	var all []ReleaseGroup

	for page := 0; page < maxReleaseGroupPages; page++ {
		query := url.Values{}
		query.Set("artist", artistMBID)
		query.Set("fmt", "json")
		query.Set("limit", fmt.Sprintf("%d", releaseGroupPageSize))
		query.Set("offset", fmt.Sprintf("%d", page*releaseGroupPageSize))

		var result struct {
			Count         int            `json:"release-group-count"`
			ReleaseGroups []ReleaseGroup `json:"release-groups"`
		}
		if err := c.get(ctx, "release-group", query, &result); err != nil {
			return nil, fmt.Errorf("release group browse failed: %w", err)
		}

		all = append(all, result.ReleaseGroups...)
		if len(all) >= result.Count || len(result.ReleaseGroups) == 0 {
			break
		}
	}
	return all, nil
}

func (c *HTTPMusicBrainzClient) get(ctx context.Context, resource string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("musicbrainz returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}
	return nil
}
