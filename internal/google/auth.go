package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"gcalnote/internal/config"
	"gcalnote/internal/logging"
)

const (
	// CallbackPort is the fixed port for the local OAuth redirect.
	CallbackPort = 8080

	// authTimeout bounds how long the interactive flow waits for the
	// browser redirect.
	authTimeout = 60 * time.Second

	scopeCalendarReadonly = "https://www.googleapis.com/auth/calendar.readonly"
)

var (
	// ErrNoClientCredentials means no OAuth client id/secret is configured.
	ErrNoClientCredentials = errors.New("no Google client credentials configured")

	// ErrNoRefreshToken means a refresh was requested without a stored
	// refresh token.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrAuthTimeout means the interactive flow received no callback in time.
	ErrAuthTimeout = errors.New("authentication timed out")
)

// Authenticator owns the OAuth tokens stored in settings. It serves the
// current access token to API clients and performs code exchange and
// refresh, persisting the settings after each successful mutation.
//
// Refresh is mutex-guarded so two concurrent 401 handlers cannot race to
// persist different tokens.
type Authenticator struct {
	settings *config.Settings
	logger   *slog.Logger

	mu sync.Mutex
}

// NewAuthenticator creates an Authenticator backed by the given settings.
func NewAuthenticator(settings *config.Settings, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{settings: settings, logger: logger}
}

func (a *Authenticator) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.settings.ClientID,
		ClientSecret: a.settings.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", CallbackPort),
		Scopes:       []string{scopeCalendarReadonly},
	}
}

// AccessToken returns the current bearer token ("" when unauthenticated).
func (a *Authenticator) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.AccessToken
}

// Refresh exchanges the stored refresh token for a new access token and
// persists it. Only the access token is overwritten; on failure nothing
// is mutated.
func (a *Authenticator) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settings.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	conf := a.oauthConfig()
	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: a.settings.RefreshToken})
	tok, err := ts.Token()
	if err != nil {
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	a.settings.AccessToken = tok.AccessToken
	if err := a.settings.Save(); err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	a.logger.Debug("access token refreshed",
		slog.String("token", logging.SanitizeToken(tok.AccessToken)))
	return nil
}

// AuthURL returns the browser authorization URL for the interactive flow.
func (a *Authenticator) AuthURL() string {
	return a.oauthConfig().AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Authorize runs the interactive consent flow: it starts a one-shot
// callback listener on the fixed port, opens the authorization URL in
// the system browser, waits for exactly one valid callback or the
// timeout, and exchanges the received code for tokens. The listener
// shutdown is idempotent; receiving a callback and hitting the timeout
// may both attempt it.
func (a *Authenticator) Authorize(ctx context.Context) error {
	if !a.settings.HasCredentials() {
		return ErrNoClientCredentials
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", CallbackPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var closeOnce sync.Once
	shutdown := func() {
		closeOnce.Do(func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		})
	}
	defer shutdown()

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<h1>Authentication complete</h1><p>You can close this tab and return to your notes.</p>")
		select {
		case codeCh <- code:
		default:
		}
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	authURL := a.AuthURL()
	a.logger.Info("complete the consent flow in your browser", slog.String("url", authURL))
	openBrowser(authURL)

	timer := time.NewTimer(authTimeout)
	defer timer.Stop()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return fmt.Errorf("callback listener failed: %w", err)
	case <-timer.C:
		return ErrAuthTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
	shutdown()

	return a.Exchange(ctx, code)
}

// Exchange trades an authorization code for tokens and persists both the
// access and (when present) refresh token.
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tok, err := a.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	a.settings.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		a.settings.RefreshToken = tok.RefreshToken
	}
	return a.settings.Save()
}

// importedCredentials is the settings blob of the sibling Obsidian
// plugin installation that this tool can adopt tokens from.
type importedCredentials struct {
	ClientID     string `json:"googleClientId"`
	ClientSecret string `json:"googleClientSecret"`
	AccessToken  string `json:"googleAccessToken"`
	RefreshToken string `json:"googleRefreshToken"`
}

// ImportCredentials copies OAuth material from another installation's
// JSON settings file (the plugin's data.json format) and persists it.
func (a *Authenticator) ImportCredentials(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}
	var creds importedCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return fmt.Errorf("credentials file %s has no tokens", path)
	}

	a.settings.ClientID = creds.ClientID
	a.settings.ClientSecret = creds.ClientSecret
	a.settings.AccessToken = creds.AccessToken
	a.settings.RefreshToken = creds.RefreshToken
	return a.settings.Save()
}

// openBrowser makes a best-effort attempt to open url in the system
// browser. Failure is fine; the URL is logged for manual use.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
