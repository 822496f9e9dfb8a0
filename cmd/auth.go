package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/favtrack/internal/catalog"
	"github.com/desertthunder/favtrack/internal/server"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the OAuth2 authorization flow against the catalog and
// persists the resulting token to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.reloadConfig(configPath)

	if config.Catalog.ClientID == "" || config.Catalog.ClientSecret == "" {
		return fmt.Errorf("%w: catalog client_id and client_secret must be set in %s", shared.ErrMissingCredentials, configPath)
	}

	if r.catalog == nil {
		client, err := catalog.NewClient(config.Catalog)
		if err != nil {
			return fmt.Errorf("failed to create catalog client: %w", err)
		}
		r.catalog = client
	}

	token, err := r.doOAuth(config)
	if err != nil {
		return err
	}

	r.catalog.SetToken(token)

	if err := config.Catalog.Update(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlain("✓ Authenticated with the catalog\n")
	r.writePlain("Token saved to: %s\n", configPath)
	return nil
}

// AuthStatus reports whether a catalog token is present and still valid.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	token := r.config.Catalog.Token()
	if token == nil {
		r.writePlain("✗ Not authenticated. Run 'favtrack auth login' first.\n")
		return nil
	}

	r.writePlain("✓ Token present\n")
	if token.Expiry.IsZero() {
		r.writePlain("Expiry: unknown\n")
		return nil
	}

	if time.Now().After(token.Expiry) {
		r.writePlain("Expiry: %s (expired)\n", token.Expiry.Format(time.RFC3339))
	} else {
		r.writePlain("Expiry: %s\n", token.Expiry.Format(time.RFC3339))
	}
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
// listening at the configured redirect URI.
func (r *Runner) doOAuth(config *shared.Config) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := r.catalog.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(r.catalog.OAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	redirect, err := url.Parse(config.Catalog.RedirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: catalog redirect_uri is not a valid URL", shared.ErrInvalidConfig)
	}

	httpServer := &http.Server{
		Addr:    redirect.Host,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", redirect.Host)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for catalog authorization...\n")
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
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
