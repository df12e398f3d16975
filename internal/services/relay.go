package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rlacey/statify/internal/shared"
)

// TokenResponse is the provider token payload forwarded by the relay.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

// relayError is the relay's JSON error envelope.
type relayError struct {
	Error string `json:"error"`
}

// RelayClient talks to the token relay service, which holds the client
// secret. The client itself only ever handles the code and refresh token.
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRelayClient creates a relay client for the given base URL.
func NewRelayClient(baseURL string, client *http.Client) *RelayClient {
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &RelayClient{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Exchange redeems an authorization code for a credential pair via the
// relay's /api/token endpoint.
func (c *RelayClient) Exchange(ctx context.Context, code, redirectURI, clientID string) (*TokenResponse, error) {
	payload := map[string]string{
		"code":         code,
		"redirect_uri": redirectURI,
		"client_id":    clientID,
	}
	return c.post(ctx, "/api/token", payload)
}

// Refresh redeems a refresh token for a new access token via the relay's
// /api/refresh endpoint.
func (c *RelayClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	return c.post(ctx, "/api/refresh", payload)
}

func (c *RelayClient) post(ctx context.Context, path string, payload map[string]string) (*TokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var relayErr relayError
		if err := json.NewDecoder(resp.Body).Decode(&relayErr); err == nil && relayErr.Error != "" {
			return nil, fmt.Errorf("%w: %s (status %d)", shared.ErrUpstreamRejected, relayErr.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrUpstreamRejected, resp.StatusCode)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: relay returned no access token", shared.ErrAuthFailed)
	}

	return &token, nil
}
