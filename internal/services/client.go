package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Per-call timeout on outbound provider requests. A timeout is treated as a
// network failure, not an auth failure.
const requestTimeout = 15 * time.Second

// audioFeaturesBatchLimit is the provider's ID cap per audio-features call.
const audioFeaturesBatchLimit = 100

// TokenSource supplies the current access token and the refresh path.
//
// The token must be read at call time, never captured, because a refresh may
// replace it between calls. The session manager is the only implementation
// outside of tests.
type TokenSource interface {
	// AccessToken returns the current access token, or "" when unauthenticated.
	AccessToken() string

	// Refresh obtains a fresh access token after a 401. Implementations
	// guarantee at most one logical refresh per trigger; a failed refresh
	// discards stored credentials and returns shared.ErrAuthExhausted.
	Refresh(ctx context.Context) error
}

// UpstreamError is a non-401 provider failure. It is never retried.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// SpotifyService is the API aggregator: it wraps raw provider calls with
// bearer authentication and the bounded refresh-and-retry policy.
type SpotifyService struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewSpotifyService creates an aggregator reading credentials from the given
// token source. baseURL and client are overridable for tests.
func NewSpotifyService(tokens TokenSource, baseURL string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}

	return &SpotifyService{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: client,
	}
}

// Fetch performs an authenticated GET against the provider and returns the
// raw JSON body.
//
// A 401 delegates to the token source for a single refresh, then retries
// exactly once; a second 401 fails the call without another refresh.
func (s *SpotifyService) Fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	return s.do(ctx, http.MethodGet, endpoint, nil)
}

// FetchMany issues all endpoint fetches concurrently and resolves only when
// every request has succeeded, failing fast on the first unrecoverable
// failure. Results are positionally ordered to match endpoints.
func (s *SpotifyService) FetchMany(ctx context.Context, endpoints []string) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(endpoints))

	g, ctx := errgroup.WithContext(ctx)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			data, err := s.Fetch(ctx, endpoint)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", endpoint, err)
			}
			results[i] = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// do runs one provider call with the bounded retry policy. body may be nil.
func (s *SpotifyService) do(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, error) {
	data, status, err := s.send(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		if err := s.tokens.Refresh(ctx); err != nil {
			return nil, err
		}
		// Retried at most once; a second 401 is a hard failure.
		data, status, err = s.send(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}
	}
	if status < 200 || status >= 300 {
		return nil, &UpstreamError{Status: status}
	}
	return data, nil
}

// send performs a single HTTP round trip, reading the access token at call
// time.
func (s *SpotifyService) send(ctx context.Context, method, endpoint string, body []byte) (json.RawMessage, int, error) {
	token := s.tokens.AccessToken()
	if token == "" {
		return nil, 0, shared.ErrNotAuthenticated
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	return buf.Bytes(), resp.StatusCode, nil
}

// fetchInto decodes a GET response into result.
func (s *SpotifyService) fetchInto(ctx context.Context, endpoint string, result any) error {
	data, err := s.Fetch(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postInto marshals payload and decodes the response into result (which may
// be nil when the response body is irrelevant).
func (s *SpotifyService) postInto(ctx context.Context, endpoint string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	data, err := s.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.fetchInto(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TopArtists retrieves the user's top artists for the given time range.
func (s *SpotifyService) TopArtists(ctx context.Context, tr models.TimeRange, limit int) ([]SpotifyArtist, error) {
	var page spotifyPage[SpotifyArtist]
	endpoint := fmt.Sprintf("/me/top/artists?time_range=%s&limit=%d", tr, clampLimit(limit))
	if err := s.fetchInto(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// TopTracks retrieves the user's top tracks for the given time range.
func (s *SpotifyService) TopTracks(ctx context.Context, tr models.TimeRange, limit int) ([]SpotifyTrack, error) {
	var page spotifyPage[SpotifyTrack]
	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", tr, clampLimit(limit))
	if err := s.fetchInto(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// RecentlyPlayed retrieves the user's play history, most recent first.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) ([]SpotifyPlayHistoryItem, error) {
	var page spotifyPage[SpotifyPlayHistoryItem]
	endpoint := fmt.Sprintf("/me/player/recently-played?limit=%d", clampLimit(limit))
	if err := s.fetchInto(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// AudioFeatures retrieves feature vectors for the given track IDs, batching
// requests to respect the provider's per-call ID limit. Null entries for
// unknown IDs are preserved as nils for the pipeline to discard.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackIDs []string) ([]*SpotifyAudioFeatures, error) {
	features := make([]*SpotifyAudioFeatures, 0, len(trackIDs))

	for start := 0; start < len(trackIDs); start += audioFeaturesBatchLimit {
		end := min(start+audioFeaturesBatchLimit, len(trackIDs))
		ids := strings.Join(trackIDs[start:end], ",")

		var response struct {
			AudioFeatures []*SpotifyAudioFeatures `json:"audio_features"`
		}
		endpoint := fmt.Sprintf("/audio-features?ids=%s", url.QueryEscape(ids))
		if err := s.fetchInto(ctx, endpoint, &response); err != nil {
			return nil, err
		}
		features = append(features, response.AudioFeatures...)
	}

	return features, nil
}

// FollowedArtistCount returns the number of artists the user follows.
func (s *SpotifyService) FollowedArtistCount(ctx context.Context) (int, error) {
	var response struct {
		Artists struct {
			Total int `json:"total"`
		} `json:"artists"`
	}
	if err := s.fetchInto(ctx, "/me/following?type=artist&limit=1", &response); err != nil {
		return 0, err
	}
	return response.Artists.Total, nil
}

// CreatePlaylist creates an empty playlist owned by the given user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID string, plan models.PlaylistPlan) (*SpotifyPlaylist, error) {
	payload := map[string]any{
		"name":        plan.Name,
		"description": plan.Description,
		"public":      plan.Public,
	}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.postInto(ctx, endpoint, payload, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracks appends the given URIs to a playlist in a single batch call.
// Callers cap the URI set before calling; the provider rejects oversized
// batches.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	payload := map[string]any{"uris": uris}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.postInto(ctx, endpoint, payload, nil)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
