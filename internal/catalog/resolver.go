package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/retry"
)

// Searcher is the slice of the catalog API the resolver consumes.
type Searcher interface {
	Search(ctx context.Context, term string, limit int) ([]Candidate, error)
	LookupByExternalID(ctx context.Context, externalID string) (*Candidate, error)
}

// Resolver matches playback observations to catalog songs.
//
// The resolver is stateless apart from a memo of the last identity it
// resolved, which suppresses duplicate searches when the same track is
// observed repeatedly.
type Resolver struct {
	client Searcher
	logger *log.Logger
	limit  int
	policy retry.Policy

	mu           sync.Mutex
	lastIdentity string
	lastSong     *models.ResolvedSong
}

// NewResolver creates a Resolver over the given catalog client.
// A limit of 0 defaults to 5 candidates per search.
func NewResolver(client Searcher, logger *log.Logger, limit int) *Resolver {
	if limit <= 0 {
		limit = 5
	}
	return &Resolver{
		client: client,
		logger: logger.With("component", "resolver"),
		limit:  limit,
		policy: retry.Quick,
	}
}

// Resolve matches the signal against the catalog.
//
// Returns (nil, nil) for tracks the catalog does not know. Transient search
// failures are retried under the quick policy; exhausted or permanent errors
// surface to the caller with their classification intact.
func (r *Resolver) Resolve(ctx context.Context, sig models.TrackSignal) (*models.ResolvedSong, error) {
	identity := sig.Identity()

	r.mu.Lock()
	if identity == r.lastIdentity {
		song := r.lastSong
		r.mu.Unlock()
		return song, nil
	}
	r.mu.Unlock()

	song, err := r.resolve(ctx, sig)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.lastIdentity = identity
	r.lastSong = song
	r.mu.Unlock()

	return song, nil
}

func (r *Resolver) resolve(ctx context.Context, sig models.TrackSignal) (*models.ResolvedSong, error) {
	// Exact store-ID lookup short-circuits scoring entirely.
	if sig.SourceID != "" {
		candidate, err := retry.Do(ctx, r.policy, func(ctx context.Context) (*Candidate, error) {
			return r.client.LookupByExternalID(ctx, sig.SourceID)
		})
		if err != nil {
			return nil, fmt.Errorf("external ID lookup: %w", err)
		}
		if candidate != nil {
			song := candidate.Song()
			r.logger.Debug("resolved by external ID", "catalog_id", song.CatalogID)
			return &song, nil
		}
	}

	term := strings.TrimSpace(sig.Name + " " + sig.Artist)
	candidates, err := retry.Do(ctx, r.policy, func(ctx context.Context) ([]Candidate, error) {
		return r.client.Search(ctx, term, r.limit)
	})
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	best := pickBest(sig, candidates)
	if best == nil {
		r.logger.Debug("no catalog match", "candidates", len(candidates))
		return nil, nil
	}

	song := best.Song()
	r.logger.Debug("resolved by search", "catalog_id", song.CatalogID)
	return &song, nil
}

// pickBest returns the highest-scoring candidate with score > 0, or nil.
// Ties keep the earlier candidate, preserving catalog relevance order.
func pickBest(sig models.TrackSignal, candidates []Candidate) *Candidate {
	var best *Candidate
	bestScore := 0.0

	for i := range candidates {
		score := scoreCandidate(sig, candidates[i])
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	return best
}

// scoreCandidate rates how well a search candidate matches the observed
// track. Comparisons are case-insensitive and whitespace-trimmed.
//
//	exact title  +3    partial title  +1
//	exact artist +2    partial artist +1
//	has album    +0.5  has duration   +0.5
func scoreCandidate(sig models.TrackSignal, c Candidate) float64 {
	score := 0.0

	title := canon(sig.Name)
	candTitle := canon(c.Title)
	switch {
	case title != "" && title == candTitle:
		score += 3
	case partialMatch(title, candTitle):
		score += 1
	}

	artist := canon(sig.Artist)
	candArtist := canon(c.ArtistName)
	switch {
	case artist != "" && artist == candArtist:
		score += 2
	case partialMatch(artist, candArtist):
		score += 1
	}

	if c.AlbumTitle != "" {
		score += 0.5
	}
	if c.DurationSeconds > 0 {
		score += 0.5
	}

	return score
}

func canon(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// partialMatch reports whether either trimmed, lowercased string contains the other.
func partialMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
