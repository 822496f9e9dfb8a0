// Package models defines domain entities and persistence interfaces for the favtrack engine.
//
// The package contains two categories of types:
//
// 1. Playback observations and catalog results, passed between the signal
// sources, reconciler, and resolver:
//   - [TrackSignal] : A best-effort observation of the currently playing track
//   - [PlaybackState] : The reconciler's canonical playing/stopped state
//   - [ResolvedSong] : A track matched against the remote catalog
//   - [Rating] : Tri-state favorite status (favorited, not favorited, unknown)
//   - [RatingCacheEntry] : A favorite status with its expiry deadline
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PlayRecord] : A catalog-resolved play appended to listening history
//
// All persistent entities implement the Model interface providing ID generation, timestamps, and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
