// package rating caches favorite status for resolved catalog songs.
//
// The remote rating API is consulted at most once per TTL window per song;
// local mutations write through the cache immediately and are authoritative
// over any concurrently in-flight read.
package rating

import (
	"context"

	"github.com/desertthunder/favtrack/internal/models"
)

// Service is the remote favorite API.
//
// All three operations are idempotent: repeated AddFavorite on an
// already-favorited song succeeds without error, as does RemoveFavorite on a
// song that is not favorited.
type Service interface {
	AddFavorite(ctx context.Context, catalogID string) error
	RemoveFavorite(ctx context.Context, catalogID string) error
	GetRating(ctx context.Context, catalogID string) (models.Rating, error)
}
