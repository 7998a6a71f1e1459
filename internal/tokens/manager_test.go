package tokens

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/reveille/internal/shared"
	"golang.org/x/oauth2"
)

func newTestManager(t *testing.T, tokenURL string) (*Manager, FileCache) {
	t.Helper()

	cache := FileCache{Dir: t.TempDir()}
	config := &oauth2.Config{
		ClientID:     "abc123",
		ClientSecret: "shh",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
	return NewManager(config, cache, "wakeup", shared.NewLogger(io.Discard)), cache
}

func TestManagerResolve(t *testing.T) {
	t.Run("no cached token", func(t *testing.T) {
		m, _ := newTestManager(t, "")

		_, err := m.Resolve(context.Background())
		if !errors.Is(err, shared.ErrTokenRetrieval) {
			t.Fatalf("expected ErrTokenRetrieval, got %v", err)
		}
		if !strings.Contains(err.Error(), "auth login") {
			t.Errorf("error should point at the auth command, got %q", err)
		}
	})

	t.Run("empty cache falls back to a valid seed", func(t *testing.T) {
		m, cache := newTestManager(t, "")
		m.Seed(&oauth2.Token{
			AccessToken: "at-config",
			Expiry:      time.Now().Add(time.Hour),
		})

		got, err := m.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got.AccessToken != "at-config" {
			t.Errorf("expected the seeded token, got %+v", got)
		}

		// The seeded token is re-cached so the next run does not depend
		// on the config copy.
		cached, err := cache.Load("wakeup")
		if err != nil {
			t.Fatalf("Load after seeding failed: %v", err)
		}
		if cached.AccessToken != "at-config" {
			t.Errorf("seeded token should be re-cached, got %+v", cached)
		}
	})

	t.Run("empty cache refreshes an expired seed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "at-fresh", "token_type": "Bearer", "expires_in": 3600}`))
		}))
		defer server.Close()

		m, cache := newTestManager(t, server.URL)
		m.Seed(&oauth2.Token{
			AccessToken:  "at-stale",
			RefreshToken: "rt-config",
			Expiry:       time.Now().Add(-time.Hour),
		})

		got, err := m.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got.AccessToken != "at-fresh" || got.RefreshToken != "rt-config" {
			t.Errorf("expected a refresh driven by the seed, got %+v", got)
		}

		cached, err := cache.Load("wakeup")
		if err != nil {
			t.Fatalf("Load after refresh failed: %v", err)
		}
		if cached.AccessToken != "at-fresh" {
			t.Errorf("refreshed token should be cached, got %+v", cached)
		}
	})

	t.Run("cached token beats the seed", func(t *testing.T) {
		m, cache := newTestManager(t, "")
		if err := cache.Store("wakeup", &oauth2.Token{
			AccessToken: "at-cache",
			Expiry:      time.Now().Add(time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
		m.Seed(&oauth2.Token{
			AccessToken: "at-config",
			Expiry:      time.Now().Add(time.Hour),
		})

		got, err := m.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got.AccessToken != "at-cache" {
			t.Errorf("expected the cached token, got %+v", got)
		}
	})

	t.Run("valid token passes through", func(t *testing.T) {
		m, cache := newTestManager(t, "")
		want := &oauth2.Token{
			AccessToken: "at-live",
			Expiry:      time.Now().Add(time.Hour),
		}
		if err := cache.Store("wakeup", want); err != nil {
			t.Fatal(err)
		}

		got, err := m.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got.AccessToken != "at-live" {
			t.Errorf("expected the cached token, got %+v", got)
		}
	})

	t.Run("expired with no refresh token", func(t *testing.T) {
		m, cache := newTestManager(t, "")
		expired := &oauth2.Token{
			AccessToken: "at-stale",
			Expiry:      time.Now().Add(-time.Hour),
		}
		if err := cache.Store("wakeup", expired); err != nil {
			t.Fatal(err)
		}

		if _, err := m.Resolve(context.Background()); !errors.Is(err, shared.ErrTokenRetrieval) {
			t.Errorf("expected ErrTokenRetrieval, got %v", err)
		}
	})

	t.Run("expired token is refreshed and re-cached", func(t *testing.T) {
		var gotGrant, gotRefresh string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			gotGrant = r.FormValue("grant_type")
			gotRefresh = r.FormValue("refresh_token")
			w.Header().Set("Content-Type", "application/json")
			// Spotify omits refresh_token on refresh responses.
			w.Write([]byte(`{"access_token": "at-fresh", "token_type": "Bearer", "expires_in": 3600}`))
		}))
		defer server.Close()

		m, cache := newTestManager(t, server.URL)
		expired := &oauth2.Token{
			AccessToken:  "at-stale",
			RefreshToken: "rt-1",
			Expiry:       time.Now().Add(-time.Hour),
		}
		if err := cache.Store("wakeup", expired); err != nil {
			t.Fatal(err)
		}

		got, err := m.Resolve(context.Background())
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		if gotGrant != "refresh_token" || gotRefresh != "rt-1" {
			t.Errorf("unexpected refresh request: grant_type=%q refresh_token=%q", gotGrant, gotRefresh)
		}
		if got.AccessToken != "at-fresh" {
			t.Errorf("expected the refreshed token, got %+v", got)
		}
		if got.RefreshToken != "rt-1" {
			t.Errorf("refresh token should be carried over, got %q", got.RefreshToken)
		}

		cached, err := cache.Load("wakeup")
		if err != nil {
			t.Fatalf("Load after refresh failed: %v", err)
		}
		if cached.AccessToken != "at-fresh" || cached.RefreshToken != "rt-1" {
			t.Errorf("refreshed token should be re-cached, got %+v", cached)
		}
	})

	t.Run("refresh failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant"}`))
		}))
		defer server.Close()

		m, cache := newTestManager(t, server.URL)
		expired := &oauth2.Token{
			AccessToken:  "at-stale",
			RefreshToken: "rt-revoked",
			Expiry:       time.Now().Add(-time.Hour),
		}
		if err := cache.Store("wakeup", expired); err != nil {
			t.Fatal(err)
		}

		if _, err := m.Resolve(context.Background()); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("expected ErrRefreshFailed, got %v", err)
		}
	})
}

func TestManagerSaveAndClear(t *testing.T) {
	m, cache := newTestManager(t, "")

	if err := m.Save(nil); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil token, got %v", err)
	}

	tok := &oauth2.Token{AccessToken: "at-1", Expiry: time.Now().Add(time.Hour)}
	if err := m.Save(tok); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := cache.Load("wakeup"); err != nil {
		t.Errorf("saved token should be cached: %v", err)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := cache.Load("wakeup"); !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached after clear, got %v", err)
	}
}
