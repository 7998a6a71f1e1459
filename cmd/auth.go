package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/reveille/internal/server"
	"github.com/desertthunder/reveille/internal/services"
	"github.com/desertthunder/reveille/internal/shared"
	"github.com/desertthunder/reveille/internal/tokens"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user
// authorization, exchanges the auth code for tokens, and caches them.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, err := r.loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Validate(); err != nil {
		return err
	}

	svc, manager, err := r.authDeps(config)
	if err != nil {
		return err
	}

	token, err := r.doOAuth(config, svc)
	if err != nil {
		return err
	}

	if err := manager.Save(token); err != nil {
		return err
	}

	// Mirror the token into the config file so the account survives a
	// wiped keyring; the cache stays authoritative at runtime.
	if err := config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token cached for %s\n\n", config.Credentials.Spotify.Username)
	r.writePlain("You can now use: reveille alarm run\n")

	return nil
}

// AuthStatus resolves the cached token and confirms the authorized account.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.player == nil || r.tokens == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingCredentials)
	}

	tok, err := r.tokens.Resolve(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrTokenRetrieval) {
			r.writePlain("✗ Not authenticated\nRun: reveille auth login\n")
			return nil
		}
		return err
	}

	r.player.SetToken(tok)

	spotify, ok := r.player.(*services.SpotifyService)
	if !ok {
		r.writePlain("✓ Token cached and valid\n")
		return nil
	}

	profile, err := spotify.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("Account: %s (%s)\n", profile.DisplayName, profile.ID)
	if profile.Product != "" {
		r.writePlain("Plan: %s\n", profile.Product)
	}
	if !tok.Expiry.IsZero() {
		r.writePlain("Token expires: %s\n", tok.Expiry.Format(time.RFC1123))
	}

	return nil
}

// AuthLogout removes the cached token and the copy mirrored into the
// config file, so the token manager cannot reseed from it.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil {
		return fmt.Errorf("%w: Spotify credentials not configured", shared.ErrMissingCredentials)
	}

	if err := r.tokens.Clear(); err != nil {
		return err
	}
	r.tokens.Seed(nil)

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		if err := r.clearTokenMirror(configPath); err != nil {
			r.logger.Warn("failed to clear token mirror from config", "error", err)
		}
	}

	r.writePlain("✓ Cached token removed\n")
	return nil
}

// clearTokenMirror drops the persisted token fields from the config file.
func (r *Runner) clearTokenMirror(path string) error {
	config, err := shared.LoadConfig(path)
	if err != nil {
		return err
	}

	s := &config.Credentials.Spotify
	if s.AccessToken == "" && s.RefreshToken == "" && s.TokenExpiry == "" {
		return nil
	}

	s.AccessToken, s.RefreshToken, s.TokenExpiry = "", "", ""
	return shared.SaveConfig(path, config)
}

// loadConfig loads the config file at path, falling back to the
// runner's config only when the file exists but the runner already
// holds a loaded copy.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return shared.LoadConfig(path)
	}
	if r.config != nil {
		return r.config, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
}

// authDeps returns an OAuth-capable service and token manager for the
// given config, reusing the runner's instances when they exist.
func (r *Runner) authDeps(config *shared.Config) (services.OAuthService, *tokens.Manager, error) {
	if svc, ok := r.player.(services.OAuthService); ok && r.tokens != nil {
		return svc, r.tokens, nil
	}

	svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Spotify service: %w", err)
	}

	manager := tokens.NewManager(
		svc.OAuthConfig(),
		tokens.NewDefaultCache(),
		config.Credentials.Spotify.Username,
		r.logger,
	)
	manager.Seed(config.Credentials.Spotify.Token())

	return svc, manager, nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	authURL := oauthSrv.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.OAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrTokenRetrieval)
	}

	return result.Token, nil
}
