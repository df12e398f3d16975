package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rlacey/statify/internal/shared"
)

const defaultTokenURL = "https://accounts.spotify.com/api/token"

// Bounded timeout for the server-to-server token call. A timeout is treated
// like any other transport failure.
const upstreamTimeout = 10 * time.Second

// RelayHandler implements the stateless token relay endpoint pair.
//
// POST /api/token exchanges an authorization code; POST /api/refresh redeems
// a refresh token. Both inject HTTP Basic auth built from the configured
// client credentials and forward the provider's JSON body verbatim on
// success. Upstream error bodies are logged but never exposed to callers.
type RelayHandler struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	logger       *log.Logger
}

// RelayOpts contains configuration for creating a RelayHandler.
type RelayOpts struct {
	ClientID     string
	ClientSecret string
	TokenURL     string       // defaults to the Spotify accounts token endpoint
	HTTPClient   *http.Client // defaults to a client with a bounded timeout
	Logger       *log.Logger
}

// NewRelayHandler creates the relay handler. A missing client secret is not
// an error here: it surfaces as a per-request configuration failure
// (HTTP 500), not a startup crash.
func NewRelayHandler(opts RelayOpts) *RelayHandler {
	if opts.TokenURL == "" {
		opts.TokenURL = defaultTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: upstreamTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &RelayHandler{
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		tokenURL:     opts.TokenURL,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *RelayHandler) Routes() []string {
	return []string{"/api/token", "/api/refresh", "/health"}
}

// ServeHTTP dispatches to the exchange or refresh endpoint.
//
// OPTIONS preflights are answered by the CORS middleware before reaching
// this handler; everything else must be POST (GET for /health).
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch r.URL.Path {
	case "/api/token":
		h.exchange(w, r)
	case "/api/refresh":
		h.refresh(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// exchangeRequest is the body of POST /api/token.
type exchangeRequest struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
	ClientID    string `json:"client_id"`
}

// refreshRequest is the body of POST /api/refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RelayHandler) exchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" || req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	if h.clientSecret == "" {
		h.logger.Error("client secret is not configured")
		writeError(w, http.StatusInternalServerError, "Server configuration error")
		return
	}

	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {req.Code},
		"redirect_uri": {req.RedirectURI},
	}

	h.forward(w, req.ClientID, form, "Failed to exchange code for token")
}

func (h *RelayHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Missing refresh token")
		return
	}

	if h.clientID == "" || h.clientSecret == "" {
		h.logger.Error("client credentials are not configured")
		writeError(w, http.StatusInternalServerError, "Server configuration error")
		return
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {req.RefreshToken},
	}

	h.forward(w, h.clientID, form, "Failed to refresh token")
}

// forward performs the server-to-server token call and writes the relay
// response. clientID pairs with the configured secret for Basic auth.
func (h *RelayHandler) forward(w http.ResponseWriter, clientID string, form url.Values, rejectMsg string) {
	upstream, err := http.NewRequest(http.MethodPost, h.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		h.logger.Error("failed to build upstream request", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	upstream.SetBasicAuth(clientID, h.clientSecret)
	upstream.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.httpClient.Do(upstream)
	if err != nil {
		h.logger.Error("upstream token request failed", "error", err)
		writeError(w, http.StatusBadGateway, "Upstream request failed")
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.Error("failed to read upstream response", "error", err)
		writeError(w, http.StatusBadGateway, "Upstream request failed")
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Error("upstream rejected token request",
			"grant_type", form.Get("grant_type"),
			"status", resp.StatusCode,
			"body", string(body),
		)
		writeError(w, http.StatusBadRequest, rejectMsg)
		return
	}

	// Forward the provider's JSON verbatim.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// NewRelayRouter assembles the relay router with CORS and request logging.
func NewRelayRouter(h *RelayHandler, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(CORS(), RequestLogger(logger))
	router.Handler(h)
	return router
}

var _ Handler = (*RelayHandler)(nil)

// Describe returns a short human-readable summary for startup logging.
func (h *RelayHandler) Describe() string {
	return fmt.Sprintf("token relay → %s", h.tokenURL)
}
