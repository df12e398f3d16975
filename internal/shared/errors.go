package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig       = fmt.Errorf("configuration not found")
	ErrInvalidConfig       = fmt.Errorf("invalid configuration")
	ErrServerMisconfigured = fmt.Errorf("server configuration error")

	// Relay errors
	ErrMissingParameter  = fmt.Errorf("missing required parameters")
	ErrUpstreamRejected  = fmt.Errorf("upstream rejected request")
	ErrUpstreamTransport = fmt.Errorf("upstream request failed")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrAuthExpired      = fmt.Errorf("access token expired")
	ErrAuthExhausted    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and pipeline errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrPartialFailure = fmt.Errorf("operation partially failed")
	ErrEmptyPlaylist  = fmt.Errorf("no tracks to add")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
