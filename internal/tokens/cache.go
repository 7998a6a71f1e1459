// Package tokens caches OAuth2 tokens between process invocations and
// resolves a usable access token before each remote call.
package tokens

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

// ErrNotCached indicates no token has been stored for the user yet.
var ErrNotCached = errors.New("no cached token")

// service name under which tokens are filed in the OS keyring.
const keyringService = "reveille"

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// Cache persists one token per username.
type Cache interface {
	Load(username string) (*oauth2.Token, error)
	Store(username string, tok *oauth2.Token) error
	Delete(username string) error
}

// KeyringCache stores tokens as JSON in the OS keyring.
type KeyringCache struct{}

func (KeyringCache) Load(username string) (*oauth2.Token, error) {
	raw, err := keyringGet(keyringService, username)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("keyring read failed: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return &tok, nil
}

func (KeyringCache) Store(username string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := keyringSet(keyringService, username, string(data)); err != nil {
		return fmt.Errorf("keyring write failed: %w", err)
	}
	return nil
}

func (KeyringCache) Delete(username string) error {
	if err := keyringDelete(keyringService, username); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete failed: %w", err)
	}
	return nil
}

// FileCache stores tokens as JSON files under a directory, one file per
// username, mode 0600.
type FileCache struct {
	Dir string
}

// DefaultCacheDir returns ~/.reveille, falling back to the working
// directory when the home directory cannot be determined.
func DefaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".reveille"
	}
	return filepath.Join(home, ".reveille")
}

func (f FileCache) path(username string) string {
	return filepath.Join(f.Dir, "token_"+username+".json")
}

func (f FileCache) Load(username string) (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path(username))
	if os.IsNotExist(err) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached token: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return &tok, nil
}

func (f FileCache) Store(username string, tok *oauth2.Token) error {
	if err := os.MkdirAll(f.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(f.path(username), data, 0600); err != nil {
		return fmt.Errorf("failed to write cached token: %w", err)
	}
	return nil
}

func (f FileCache) Delete(username string) error {
	if err := os.Remove(f.path(username)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cached token: %w", err)
	}
	return nil
}

// FallbackCache tries a primary cache and falls back to a secondary on
// infrastructure failures (e.g. no keyring daemon on a headless box).
//
// ErrNotCached from the primary is authoritative only when the
// secondary also has nothing.
type FallbackCache struct {
	Primary   Cache
	Secondary Cache
}

func (c FallbackCache) Load(username string) (*oauth2.Token, error) {
	tok, err := c.Primary.Load(username)
	if err == nil {
		return tok, nil
	}
	return c.Secondary.Load(username)
}

func (c FallbackCache) Store(username string, tok *oauth2.Token) error {
	if err := c.Primary.Store(username, tok); err == nil {
		return nil
	}
	return c.Secondary.Store(username, tok)
}

func (c FallbackCache) Delete(username string) error {
	perr := c.Primary.Delete(username)
	serr := c.Secondary.Delete(username)
	if perr != nil {
		return perr
	}
	return serr
}

// NewDefaultCache returns the keyring cache backed by a file cache in
// [DefaultCacheDir].
func NewDefaultCache() Cache {
	return FallbackCache{
		Primary:   KeyringCache{},
		Secondary: FileCache{Dir: DefaultCacheDir()},
	}
}
