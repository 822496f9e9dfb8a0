package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
)

func testConfig(baseURL string) shared.CatalogConfig {
	return shared.CatalogConfig{
		BaseURL:      baseURL,
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		Storefront:   "us",
	}
}

func authedClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(testConfig(baseURL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	if err := client.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("With Valid Config", func(t *testing.T) {
		client, err := NewClient(testConfig("https://catalog.test/v1"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if client.Name() != "Catalog" {
			t.Errorf("expected service name 'Catalog', got %s", client.Name())
		}
	})

	t.Run("Missing Base URL", func(t *testing.T) {
		cfg := testConfig("")
		if _, err := NewClient(cfg); err == nil {
			t.Error("expected error for missing base_url")
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		cfg := testConfig("https://catalog.test/v1")
		cfg.ClientSecret = ""
		if _, err := NewClient(cfg); err == nil {
			t.Error("expected error for missing client_secret")
		}
	})

	t.Run("Default Storefront", func(t *testing.T) {
		cfg := testConfig("https://catalog.test/v1")
		cfg.Storefront = ""
		client, err := NewClient(cfg)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if client.storefront != "us" {
			t.Errorf("expected default storefront us, got %s", client.storefront)
		}
	})
}

func TestClientSearch(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.RequestURI()
		json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"songs": []Candidate{
					{CatalogID: "song-1", Title: "Test Song", ArtistName: "Test Artist", AlbumTitle: "Album", DurationSeconds: 215},
					{CatalogID: "song-2", Title: "Test Song (Live)", ArtistName: "Test Artist"},
				},
			},
		})
	}))
	defer server.Close()

	client := authedClient(t, server.URL)

	candidates, err := client.Search(context.Background(), "Test Song Test Artist", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].CatalogID != "song-1" {
		t.Errorf("expected relevance order preserved, got %s first", candidates[0].CatalogID)
	}
	if gotAuth != "Bearer test_token" {
		t.Errorf("expected bearer token header, got %q", gotAuth)
	}
	if gotPath != "/catalog/us/search?term=Test+Song+Test+Artist&types=songs&limit=5" {
		t.Errorf("unexpected request path: %s", gotPath)
	}
}

func TestClientRequiresAuthentication(t *testing.T) {
	client, err := NewClient(testConfig("https://catalog.test/v1"))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	_, err = client.Search(context.Background(), "anything", 5)
	if !errors.Is(err, shared.ErrNotAuthorized) {
		t.Errorf("expected not-authorized error before Authenticate, got %v", err)
	}
}

func TestClientErrorClassification(t *testing.T) {
	tc := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, shared.ErrNotAuthorized},
		{"forbidden", http.StatusForbidden, shared.ErrNoSubscription},
		{"server error", http.StatusInternalServerError, shared.ErrNetworkTransient},
		{"rate limited", http.StatusTooManyRequests, shared.ErrNetworkTransient},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"detail":"boom"}`, tt.status)
			}))
			defer server.Close()

			client := authedClient(t, server.URL)
			_, err := client.Search(context.Background(), "anything", 5)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClientLookupByExternalID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(Candidate{CatalogID: "song-9", Title: "Test Song", ArtistName: "Test Artist"})
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		candidate, err := client.LookupByExternalID(context.Background(), "store-9")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if candidate == nil || candidate.CatalogID != "song-9" {
			t.Errorf("expected song-9, got %+v", candidate)
		}
	})

	t.Run("not found maps to nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		candidate, err := client.LookupByExternalID(context.Background(), "unknown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if candidate != nil {
			t.Errorf("expected nil candidate, got %+v", candidate)
		}
	})
}

func TestClientFavorites(t *testing.T) {
	t.Run("add is idempotent", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		for i := 0; i < 2; i++ {
			if err := client.AddFavorite(context.Background(), "song-1"); err != nil {
				t.Fatalf("add %d failed: %v", i+1, err)
			}
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})

	t.Run("remove tolerates missing favorite", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		if err := client.RemoveFavorite(context.Background(), "song-1"); err != nil {
			t.Errorf("expected idempotent remove, got %v", err)
		}
	})
}

func TestClientGetRating(t *testing.T) {
	t.Run("favorited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]bool{"favorited": true})
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		rating, err := client.GetRating(context.Background(), "song-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rating != models.RatingFavorited {
			t.Errorf("expected favorited, got %v", rating)
		}
	})

	t.Run("missing rating reads as not favorited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		rating, err := client.GetRating(context.Background(), "song-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rating != models.RatingNotFavorited {
			t.Errorf("expected not favorited, got %v", rating)
		}
	})

	t.Run("failure returns unknown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := authedClient(t, server.URL)
		rating, err := client.GetRating(context.Background(), "song-1")
		if err == nil {
			t.Fatal("expected error")
		}
		if rating != models.RatingUnknown {
			t.Errorf("expected unknown rating on failure, got %v", rating)
		}
	})
}
