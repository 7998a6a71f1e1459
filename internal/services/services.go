package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Player defines the interface for a music service that exposes
// remote-controllable playback endpoints.
type Player interface {
	// Devices lists the playback devices currently available to the
	// authenticated user.
	Devices(ctx context.Context) ([]Device, error)

	// StartPlayback resumes playback on the device with the given ID.
	StartPlayback(ctx context.Context, deviceID string) error

	// SetToken installs the access token used for subsequent requests.
	SetToken(tok *oauth2.Token)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Player with the pieces needed to drive an
// interactive authorization code flow.
type OAuthService interface {
	Player

	// AuthURL returns the authorization URL for user login.
	AuthURL(state string) string

	// OAuthConfig exposes the underlying OAuth2 configuration for the
	// callback handler's code exchange.
	OAuthConfig() *oauth2.Config
}

// Device represents a playback endpoint exposed by the service.
//
// Devices are immutable snapshots fetched per cycle and never persisted.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}
