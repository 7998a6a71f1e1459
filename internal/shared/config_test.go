package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Alarm.Time != "07:30" {
		t.Errorf("expected default alarm time 07:30, got %q", cfg.Alarm.Time)
	}
	if cfg.Alarm.MaxAttempts != 3 || cfg.Alarm.BackoffSeconds != 5 {
		t.Errorf("unexpected retry defaults: %+v", cfg.Alarm)
	}
	if cfg.Alarm.Repeat || cfg.Alarm.FallbackFirst {
		t.Error("repeat and fallback_first should default to off")
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 3000 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Database.Path == "" {
		t.Error("expected a default database path")
	}
	if err := cfg.Credentials.Spotify.Validate(); err != nil {
		t.Errorf("embedded example should carry placeholder credentials: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads custom values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `[credentials.spotify]
username = "wakeup"
client_id = "abc123"
client_secret = "shh"
redirect_uri = "http://127.0.0.1:9999/callback"

[alarm]
time = "06:45"
device_id = "dev-7"
repeat = true
max_attempts = 5
backoff_seconds = 2
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Credentials.Spotify.Username != "wakeup" {
			t.Errorf("unexpected username %q", cfg.Credentials.Spotify.Username)
		}
		if cfg.Alarm.Time != "06:45" || cfg.Alarm.DeviceID != "dev-7" || !cfg.Alarm.Repeat {
			t.Errorf("unexpected alarm section: %+v", cfg.Alarm)
		}
		if cfg.Alarm.MaxAttempts != 5 || cfg.Alarm.BackoffSeconds != 2 {
			t.Errorf("unexpected retry settings: %+v", cfg.Alarm)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.toml")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error should name the path, got %q", err)
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[credentials\nusername ="), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Credentials.Spotify.Username = "wakeup"
	cfg.Alarm.Time = "05:00"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after save failed: %v", err)
	}
	if loaded.Credentials.Spotify.Username != "wakeup" || loaded.Alarm.Time != "05:00" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestSpotifyConfigValidate(t *testing.T) {
	t.Run("complete credentials pass", func(t *testing.T) {
		s := SpotifyConfig{
			Username:     "wakeup",
			ClientID:     "abc",
			ClientSecret: "shh",
			RedirectURI:  "http://127.0.0.1:3000/callback",
		}
		if err := s.Validate(); err != nil {
			t.Errorf("expected valid credentials, got %v", err)
		}
	})

	t.Run("reports every missing key", func(t *testing.T) {
		s := SpotifyConfig{Username: "wakeup", ClientID: "abc"}

		err := s.Validate()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		for _, key := range []string{"client_secret", "redirect_uri"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q should name %s", err, key)
			}
		}
		for _, key := range []string{"username", "client_id"} {
			if strings.Contains(err.Error(), key) {
				t.Errorf("error %q should not name present key %s", err, key)
			}
		}
	})
}

func TestSpotifyConfigToken(t *testing.T) {
	t.Run("empty config yields nil", func(t *testing.T) {
		var s SpotifyConfig
		if tok := s.Token(); tok != nil {
			t.Errorf("expected nil token, got %+v", tok)
		}
	})

	t.Run("update and rebuild round trip", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		var s SpotifyConfig
		err := s.Update(&oauth2.Token{
			AccessToken:  "at-1",
			RefreshToken: "rt-1",
			Expiry:       expiry,
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		tok := s.Token()
		if tok == nil {
			t.Fatal("expected a rebuilt token")
		}
		if tok.AccessToken != "at-1" || tok.RefreshToken != "rt-1" {
			t.Errorf("unexpected token: %+v", tok)
		}
		if !tok.Expiry.Equal(expiry) {
			t.Errorf("expiry mismatch: got %v, want %v", tok.Expiry, expiry)
		}
	})

	t.Run("update keeps prior refresh token", func(t *testing.T) {
		s := SpotifyConfig{RefreshToken: "rt-old"}
		if err := s.Update(&oauth2.Token{AccessToken: "at-2"}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if s.RefreshToken != "rt-old" {
			t.Errorf("refresh token should survive a rotation without one, got %q", s.RefreshToken)
		}
	})

	t.Run("nil token rejected", func(t *testing.T) {
		var s SpotifyConfig
		if err := s.Update(nil); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile failed: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("created file should parse: %v", err)
	}
	if cfg.Alarm.Time != "07:30" {
		t.Errorf("expected example defaults, got %+v", cfg.Alarm)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("expected an error when the file already exists")
	}
}
