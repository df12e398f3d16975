// Package session implements the token lifecycle manager: a small state
// machine that owns the credential pair, persists it through the token
// repository, and refreshes it through the relay when the provider reports
// an expired token.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rlacey/statify/internal/repositories"
	"github.com/rlacey/statify/internal/services"
	"github.com/rlacey/statify/internal/shared"
	"golang.org/x/oauth2"
)

// State is the lifecycle position of the credential pair.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Scopes is the fixed scope set requested at login.
var Scopes = []string{
	"user-read-recently-played",
	"user-top-read",
	"user-read-private",
	"user-read-email",
	"user-follow-read",
	"playlist-modify-private",
	"playlist-modify-public",
}

// Relay is the subset of the relay client the manager needs.
type Relay interface {
	Exchange(ctx context.Context, code, redirectURI, clientID string) (*services.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenResponse, error)
}

// Store persists the credential pair. Both fields are written atomically and
// cleared together.
type Store interface {
	SavePair(accessToken, refreshToken string) error
	Pair() (accessToken, refreshToken string, err error)
	Clear() error
}

var _ Store = (*repositories.TokenRepository)(nil)

// Manager owns the credential pair. It is the only writer of the access
// token; aggregator calls read the current value at call time through
// [Manager.AccessToken].
type Manager struct {
	mu           sync.Mutex
	state        State
	accessToken  string
	refreshToken string
	authState    string // pending OAuth state parameter
	generation   uint64 // bumped on every installed access token

	refreshMu sync.Mutex // serializes refresh attempts

	store       Store
	relay       Relay
	clientID    string
	redirectURI string
	logger      *log.Logger
}

// ManagerOpts contains dependencies for creating a Manager.
type ManagerOpts struct {
	Store       Store
	Relay       Relay
	ClientID    string
	RedirectURI string
	Logger      *log.Logger
}

// NewManager creates a manager, restoring any persisted credential pair.
func NewManager(opts ManagerOpts) (*Manager, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: token store is required", shared.ErrInvalidArgument)
	}
	if opts.Relay == nil {
		return nil, fmt.Errorf("%w: relay client is required", shared.ErrInvalidArgument)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	m := &Manager{
		state:       Unauthenticated,
		store:       opts.Store,
		relay:       opts.Relay,
		clientID:    opts.ClientID,
		redirectURI: opts.RedirectURI,
		logger:      opts.Logger,
	}

	access, refresh, err := opts.Store.Pair()
	if err != nil {
		return nil, fmt.Errorf("failed to restore credentials: %w", err)
	}
	if access != "" {
		m.accessToken = access
		m.refreshToken = refresh
		m.state = Authenticated
	}

	return m, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AccessToken returns the current access token, read at call time.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// Login constructs the provider authorization URL with the fixed scope set
// and a fresh CSRF state token, and moves the manager to Authenticating.
// Navigation itself (opening the browser) is the caller's job.
func (m *Manager) Login() (authURL, state string, err error) {
	state, err = shared.GenerateState()
	if err != nil {
		return "", "", err
	}

	config := &oauth2.Config{
		ClientID:    m.clientID,
		RedirectURL: m.redirectURI,
		Scopes:      Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: services.SpotifyAuthURL},
	}

	m.mu.Lock()
	m.authState = state
	m.state = Authenticating
	m.mu.Unlock()

	return config.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// HandleCallback exchanges the authorization code through the relay and
// persists the resulting pair. On failure the manager reverts to
// Unauthenticated and the pending attempt is discarded.
func (m *Manager) HandleCallback(ctx context.Context, code string) error {
	token, err := m.relay.Exchange(ctx, code, m.redirectURI, m.clientID)
	if err != nil {
		m.mu.Lock()
		m.authState = ""
		m.state = Unauthenticated
		m.mu.Unlock()
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	m.install(token)
	return nil
}

// Refresh redeems the stored refresh token for a new access token.
//
// At most one refresh is in flight per 401 trigger: concurrent callers that
// lose the race observe the winner's generation bump and return without a
// second upstream call. A failed refresh is fatal: all credentials are
// discarded and the state returns to Unauthenticated.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.mu.Lock()
	if m.generation != gen {
		// Another caller already installed a fresh token.
		m.mu.Unlock()
		return nil
	}
	refreshToken := m.refreshToken
	if refreshToken == "" {
		m.mu.Unlock()
		m.discard()
		return fmt.Errorf("%w: %v", shared.ErrAuthExhausted, shared.ErrNoRefreshToken)
	}
	m.state = Refreshing
	m.mu.Unlock()

	token, err := m.relay.Refresh(ctx, refreshToken)
	if err != nil {
		m.discard()
		return fmt.Errorf("%w: %v", shared.ErrAuthExhausted, err)
	}

	m.install(token)
	return nil
}

// Logout clears the persisted credential pair unconditionally and returns
// the manager to Unauthenticated, regardless of the current state.
func (m *Manager) Logout() error {
	err := m.store.Clear()

	m.mu.Lock()
	m.accessToken = ""
	m.refreshToken = ""
	m.authState = ""
	m.generation++
	m.state = Unauthenticated
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	return nil
}

// install persists and adopts a token response. The refresh token survives
// when the provider does not rotate it.
func (m *Manager) install(token *services.TokenResponse) {
	if err := m.store.SavePair(token.AccessToken, token.RefreshToken); err != nil {
		// In-memory credentials stay usable for this process; the next
		// start will require a fresh login.
		m.logger.Warn("failed to persist credentials", "error", err)
	}

	m.mu.Lock()
	m.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		m.refreshToken = token.RefreshToken
	}
	m.authState = ""
	m.generation++
	m.state = Authenticated
	m.mu.Unlock()
}

// discard drops every credential after an exhausted refresh.
func (m *Manager) discard() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear stored credentials", "error", err)
	}

	m.mu.Lock()
	m.accessToken = ""
	m.refreshToken = ""
	m.generation++
	m.state = Unauthenticated
	m.mu.Unlock()
}

var _ services.TokenSource = (*Manager)(nil)
