package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrTokenRetrieval = fmt.Errorf("token retrieval failed")
	ErrTokenExpired   = fmt.Errorf("access token expired")
	ErrRefreshFailed  = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// API and playback errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrNoDevices      = fmt.Errorf("no playback devices available")
	ErrDeviceNotFound = fmt.Errorf("device not found")
	ErrPlaybackFailed = fmt.Errorf("playback failed")

	// Input validation errors
	ErrInvalidTimeFormat = fmt.Errorf("invalid time format")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
)
