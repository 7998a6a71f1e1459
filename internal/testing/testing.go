// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/desertthunder/reveille/internal/services"
	"golang.org/x/oauth2"
)

// MockPlayer is a test double for [services.Player].
//
// Behavior is injected per test through the function fields; nil
// fields fall back to benign defaults.
type MockPlayer struct {
	DevicesFunc       func(ctx context.Context) ([]services.Device, error)
	StartPlaybackFunc func(ctx context.Context, deviceID string) error

	Token         *oauth2.Token
	SetTokenCalls int
	PlaybackCalls []string
}

func (m *MockPlayer) Devices(ctx context.Context) ([]services.Device, error) {
	if m.DevicesFunc != nil {
		return m.DevicesFunc(ctx)
	}
	return []services.Device{}, nil
}

func (m *MockPlayer) StartPlayback(ctx context.Context, deviceID string) error {
	m.PlaybackCalls = append(m.PlaybackCalls, deviceID)
	if m.StartPlaybackFunc != nil {
		return m.StartPlaybackFunc(ctx, deviceID)
	}
	return nil
}

func (m *MockPlayer) SetToken(tok *oauth2.Token) {
	m.Token = tok
	m.SetTokenCalls++
}

func (m *MockPlayer) Name() string { return "mock" }

// MockResolver is a test double for the run loop's token resolver.
type MockResolver struct {
	ResolveFunc func(ctx context.Context) (*oauth2.Token, error)
	Calls       int
}

func (m *MockResolver) Resolve(ctx context.Context) (*oauth2.Token, error) {
	m.Calls++
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return &oauth2.Token{AccessToken: "mock-token"}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
