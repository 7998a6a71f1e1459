package server

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of one authorization code flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler serves the OAuth2 redirect endpoint for the
// authorization code flow. Implements [Handler] for registration with a
// [Router].
//
// The handler accepts exactly one callback; the flow's outcome is
// delivered once over the channel returned by [OAuthHandler.Result].
type OAuthHandler struct {
	config  *oauth2.Config
	state   string
	results chan OAuthResult
	done    atomic.Bool
	once    sync.Once
}

// NewOAuthHandler creates a handler bound to a CSRF state token. The
// state must be cryptographically random and match what was encoded
// into the authorization URL.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// Routes returns the path component of the configured redirect URI, so
// the handler always serves wherever the Spotify app is registered to
// call back.
func (h *OAuthHandler) Routes() []string {
	if u, err := url.Parse(h.config.RedirectURL); err == nil && u.Path != "" {
		return []string{u.Path}
	}
	return []string{"/callback"}
}

// ServeHTTP handles the provider's redirect: validates state, exchanges
// the authorization code, and publishes the result.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.done.CompareAndSwap(false, true) {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}

	token, status, err := h.exchange(r)
	if err != nil {
		h.Send(OAuthResult{err: err})
		http.Error(w, err.Error(), status)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// exchange validates the callback query and trades the code for
// tokens, returning the HTTP status to answer with on failure.
func (h *OAuthHandler) exchange(r *http.Request) (*oauth2.Token, int, error) {
	q := r.URL.Query()

	if q.Get("state") != h.state {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid state parameter")
	}

	code := q.Get("code")
	if code == "" {
		return nil, http.StatusBadRequest, fmt.Errorf("authorization failed: %s - %s", q.Get("error"), q.Get("error_description"))
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("token exchange failed: %w", err)
	}

	return token, http.StatusOK, nil
}

// Send publishes the flow outcome. Only the first call has any effect;
// the channel is closed afterwards.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns the channel carrying the single flow outcome.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .card { text-align: center; background: white; padding: 2rem;
                border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>✓ Authorization Successful</h1>
        <p>reveille is authorized. You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
