// Catalog HTTP API client
//
// Endpoints follow the conventional storefront-scoped layout: search and
// lookup under /catalog/{storefront}, per-user favorites under /me.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
	"golang.org/x/oauth2"
)

const defaultStorefront = "us"

// Candidate represents one song returned by the catalog search API.
type Candidate struct {
	CatalogID       string `json:"id"`
	Title           string `json:"title"`
	ArtistName      string `json:"artist_name"`
	AlbumTitle      string `json:"album_title,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// Song converts the candidate into a [models.ResolvedSong].
func (c Candidate) Song() models.ResolvedSong {
	return models.ResolvedSong{
		CatalogID:       c.CatalogID,
		Title:           c.Title,
		ArtistName:      c.ArtistName,
		AlbumTitle:      c.AlbumTitle,
		DurationSeconds: c.DurationSeconds,
	}
}

// Client implements the catalog search and rating APIs.
// Uses [oauth2] for authentication.
type Client struct {
	baseURL    string
	storefront string
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
}

// NewClient creates a catalog client from configuration.
func NewClient(cfg shared.CatalogConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: missing catalog base_url", shared.ErrMissingCredentials)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing catalog client_id or client_secret", shared.ErrMissingCredentials)
	}

	storefront := cfg.Storefront
	if storefront == "" {
		storefront = defaultStorefront
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	base := strings.TrimSuffix(cfg.BaseURL, "/")

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"catalog-read", "library-write"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  base + "/oauth/authorize",
			TokenURL: base + "/oauth/token",
		},
	}

	return &Client{
		baseURL:    base,
		storefront: storefront,
		config:     config,
		httpClient: http.DefaultClient,
	}, nil
}

// Name returns the service name.
func (c *Client) Name() string {
	return "Catalog"
}

// Authenticate stores a token for subsequent requests. Expects either an
// "access_token" or "auth_code" in credentials.
func (c *Client) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		c.token = &oauth2.Token{AccessToken: accessToken}
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := c.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		c.token = token
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// SetToken replaces the current OAuth2 token.
func (c *Client) SetToken(token *oauth2.Token) {
	c.token = token
}

// OAuthConfig exposes the client's OAuth2 configuration for the login flow.
func (c *Client) OAuthConfig() *oauth2.Config {
	return c.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (c *Client) GetAuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// doRequest performs an authenticated HTTP request against the catalog API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if c.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthorized)
	}

	apiURL := c.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetworkTransient, err)
	}
	defer resp.Body.Close()

	if classified := shared.ClassifyHTTPStatus(resp.StatusCode); classified != nil {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("catalog API error (status %d): %s: %w", resp.StatusCode, errResp.Detail, classified)
		}
		return fmt.Errorf("catalog API error: status %d: %w", resp.StatusCode, classified)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search queries the catalog for songs matching the term, returning at most limit candidates in relevance order.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 5
	}
	if limit > 25 {
		limit = 25
	}

	endpoint := fmt.Sprintf("/catalog/%s/search?term=%s&types=songs&limit=%d",
		c.storefront, url.QueryEscape(term), limit)

	var response struct {
		Results struct {
			Songs []Candidate `json:"songs"`
		} `json:"results"`
	}

	if err := c.doRequest(ctx, http.MethodGet, endpoint, &response); err != nil {
		return nil, err
	}

	return response.Results.Songs, nil
}

// LookupByExternalID exchanges a player store identifier for the catalog
// song it names. Returns nil when the catalog has no mapping.
func (c *Client) LookupByExternalID(ctx context.Context, externalID string) (*Candidate, error) {
	endpoint := fmt.Sprintf("/catalog/%s/lookup?external_id=%s", c.storefront, url.QueryEscape(externalID))

	var candidate Candidate
	if err := c.doRequest(ctx, http.MethodGet, endpoint, &candidate); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if candidate.CatalogID == "" {
		return nil, nil
	}
	return &candidate, nil
}

// AddFavorite marks a catalog song as favorited. Repeated adds on an
// already-favorited song succeed without error.
func (c *Client) AddFavorite(ctx context.Context, catalogID string) error {
	endpoint := fmt.Sprintf("/me/favorites/%s", url.PathEscape(catalogID))
	return c.doRequest(ctx, http.MethodPut, endpoint, nil)
}

// RemoveFavorite clears a favorite. Removing a song that is not favorited succeeds.
func (c *Client) RemoveFavorite(ctx context.Context, catalogID string) error {
	endpoint := fmt.Sprintf("/me/favorites/%s", url.PathEscape(catalogID))
	err := c.doRequest(ctx, http.MethodDelete, endpoint, nil)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	return err
}

// GetRating queries the favorite status of a catalog song. A missing rating
// record reads as not favorited.
func (c *Client) GetRating(ctx context.Context, catalogID string) (models.Rating, error) {
	endpoint := fmt.Sprintf("/me/ratings/%s", url.PathEscape(catalogID))

	var response struct {
		Favorited bool `json:"favorited"`
	}

	err := c.doRequest(ctx, http.MethodGet, endpoint, &response)
	if errors.Is(err, shared.ErrNotFound) {
		return models.RatingNotFavorited, nil
	}
	if err != nil {
		return models.RatingUnknown, err
	}

	if response.Favorited {
		return models.RatingFavorited, nil
	}
	return models.RatingNotFavorited, nil
}
