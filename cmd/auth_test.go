package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/desertthunder/reveille/internal/shared"
	"github.com/desertthunder/reveille/internal/tokens"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func TestAuthLogout(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	cfg := shared.DefaultConfig()
	cfg.Credentials.Spotify.Username = "wakeup"
	cfg.Credentials.Spotify.AccessToken = "at-1"
	cfg.Credentials.Spotify.RefreshToken = "rt-1"
	if err := shared.SaveConfig(configPath, cfg); err != nil {
		t.Fatal(err)
	}

	cache := tokens.FileCache{Dir: dir}
	if err := cache.Store("wakeup", &oauth2.Token{AccessToken: "at-1"}); err != nil {
		t.Fatal(err)
	}

	logger := shared.NewLogger(io.Discard)
	manager := tokens.NewManager(&oauth2.Config{}, cache, "wakeup", logger)
	manager.Seed(cfg.Credentials.Spotify.Token())

	r := NewRunner(RunnerOpts{
		Config: cfg,
		Tokens: manager,
		Logger: logger,
		Output: &bytes.Buffer{},
	})

	app := &cli.Command{Name: "reveille", Commands: r.register()}
	args := []string{"reveille", "auth", "logout", "--config", configPath}
	if err := app.Run(context.Background(), args); err != nil {
		t.Fatalf("auth logout failed: %v", err)
	}

	if _, err := cache.Load("wakeup"); !errors.Is(err, tokens.ErrNotCached) {
		t.Errorf("expected the cached token to be gone, got %v", err)
	}

	// The config mirror is scrubbed too, so the manager cannot reseed.
	loaded, err := shared.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig after logout failed: %v", err)
	}
	s := loaded.Credentials.Spotify
	if s.AccessToken != "" || s.RefreshToken != "" || s.TokenExpiry != "" {
		t.Errorf("expected the token mirror to be cleared, got %+v", s)
	}
	if s.ClientID == "" || s.Username != "wakeup" {
		t.Errorf("credentials other than the token should survive logout, got %+v", s)
	}

	if _, err := manager.Resolve(context.Background()); !errors.Is(err, shared.ErrTokenRetrieval) {
		t.Errorf("expected resolution to fail after logout, got %v", err)
	}
}
