package rating

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/models"
)

// DefaultTTL bounds how long a cached favorite status is trusted.
const DefaultTTL = 300 * time.Second

// FavoriteCache is a TTL-bounded, write-through cache of favorite status per
// catalog song.
type FavoriteCache struct {
	service Service
	logger  *log.Logger
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]models.RatingCacheEntry
	// writes counts mutations per song; a remote read is discarded when a
	// mutation landed while it was in flight.
	writes map[string]uint64
}

// NewFavoriteCache creates a cache over the given rating service.
// A ttl of 0 defaults to [DefaultTTL].
func NewFavoriteCache(service Service, logger *log.Logger, ttl time.Duration) *FavoriteCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FavoriteCache{
		service: service,
		logger:  logger.With("component", "favorite_cache"),
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]models.RatingCacheEntry),
		writes:  make(map[string]uint64),
	}
}

// Get returns the favorite status for a catalog song.
//
// A fresh entry is returned with no I/O. On miss or expiry the remote
// service is queried and the result cached with a new deadline. A failed
// query returns [models.RatingUnknown] alongside the error rather than
// presenting an unread status as "not favorited".
func (c *FavoriteCache) Get(ctx context.Context, catalogID string) (models.Rating, error) {
	c.mu.Lock()
	entry, ok := c.entries[catalogID]
	seq := c.writes[catalogID]
	now := c.now()
	c.mu.Unlock()

	if ok && !entry.Expired(now) {
		return entry.Rating, nil
	}

	remote, err := c.service.GetRating(ctx, catalogID)
	if err != nil {
		c.logger.Debug("rating query failed", "error", err)
		return models.RatingUnknown, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A mutation during the read is authoritative over the read.
	if c.writes[catalogID] != seq {
		return c.entries[catalogID].Rating, nil
	}

	c.entries[catalogID] = models.RatingCacheEntry{
		CatalogID: catalogID,
		Rating:    remote,
		ExpiresAt: c.now().Add(c.ttl),
	}
	return remote, nil
}

// MarkFavorited overwrites the cache entry immediately after a successful
// mutation. Called synchronously on the mutation path.
func (c *FavoriteCache) MarkFavorited(catalogID string, favorited bool) {
	rating := models.RatingNotFavorited
	if favorited {
		rating = models.RatingFavorited
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes[catalogID]++
	c.entries[catalogID] = models.RatingCacheEntry{
		CatalogID: catalogID,
		Rating:    rating,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the entry for a catalog song, forcing the next Get to
// consult the remote service.
func (c *FavoriteCache) Invalidate(catalogID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, catalogID)
}
