// package engine reconciles playback signals from multiple sources into a
// single canonical now-playing state.
//
// The core abstraction is Reconciler, which serializes all signal handling
// in one goroutine, debounces track transitions, resolves accepted tracks
// against the catalog asynchronously, and emits events via a non-blocking
// channel for CLI/UI consumers.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/rating"
	"github.com/desertthunder/favtrack/internal/retry"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/desertthunder/favtrack/internal/signal"
)

// DefaultDebounce is how long a differing playing signal must hold steady
// before the engine accepts it as a track transition.
const DefaultDebounce = 300 * time.Millisecond

// Resolver maps an accepted track signal to a catalog song.
type Resolver interface {
	Resolve(ctx context.Context, track models.TrackSignal) (*models.ResolvedSong, error)
}

// FavoriteStore caches favorite status per catalog song.
// Implemented by [rating.FavoriteCache].
type FavoriteStore interface {
	Get(ctx context.Context, catalogID string) (models.Rating, error)
	MarkFavorited(catalogID string, favorited bool)
}

// Recorder persists accepted plays. Optional.
type Recorder interface {
	Record(ctx context.Context, song models.ResolvedSong, playedAt time.Time) error
}

// Snapshot is a point-in-time copy of the canonical playback state.
type Snapshot struct {
	Playing    bool
	Generation uint64
	Track      *models.TrackSignal
	Song       *models.ResolvedSong
	Rating     models.Rating
}

// Opts configures a Reconciler. Sources, Resolver, and Logger are
// required; the rest default to inert implementations.
type Opts struct {
	Sources   []signal.Source
	Resolver  Resolver
	Favorites FavoriteStore
	Rater     rating.Service
	Recorder  Recorder
	Sink      shared.ErrorSink
	Logger    *log.Logger
	Debounce  time.Duration
	Buffer    int
}

// Reconciler merges playback signals into canonical state.
//
// All state mutation happens on the Run goroutine. Snapshot and the
// favorite mutation methods are safe to call from other goroutines.
type Reconciler struct {
	sources   []signal.Source
	resolver  Resolver
	favorites FavoriteStore
	rater     rating.Service
	recorder  Recorder
	sink      shared.ErrorSink
	logger    *log.Logger
	debounce  time.Duration

	events  chan Event
	results chan resolveResult

	// cancelResolve aborts the in-flight resolution for the previous
	// generation. Touched only on the Run goroutine.
	cancelResolve context.CancelFunc

	mu         sync.Mutex
	generation uint64
	playing    bool
	current    *models.TrackSignal
	song       *models.ResolvedSong
	rating     models.Rating
}

type resolveResult struct {
	generation uint64
	track      *models.TrackSignal
	song       *models.ResolvedSong
	rating     models.Rating
	err        error
}

// NewReconciler creates a Reconciler from opts.
func NewReconciler(opts Opts) *Reconciler {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 16
	}
	sink := opts.Sink
	if sink == nil {
		sink = shared.NewCountingSink()
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Reconciler{
		sources:   opts.Sources,
		resolver:  opts.Resolver,
		favorites: opts.Favorites,
		rater:     opts.Rater,
		recorder:  opts.Recorder,
		sink:      sink,
		logger:    logger.With("component", "reconciler"),
		debounce:  debounce,
		events:    make(chan Event, buffer),
		results:   make(chan resolveResult, 4),
		rating:    models.RatingUnknown,
	}
}

// Events returns the channel reconciliation events are delivered on.
// Events are dropped rather than blocking when the consumer lags.
func (r *Reconciler) Events() <-chan Event {
	return r.events
}

// Snapshot returns a copy of the current canonical state.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Playing:    r.playing,
		Generation: r.generation,
		Track:      r.current,
		Song:       r.song,
		Rating:     r.rating,
	}
}

// Run starts all sources and processes signals until ctx is cancelled.
// Sources that fail to start or deliver nothing contribute no
// information; they never cause a stop transition on their own.
func (r *Reconciler) Run(ctx context.Context) error {
	merged := make(chan signal.Signal, 32)
	for _, src := range r.sources {
		src := src
		// Start blocks for the lifetime of the source, so it gets its
		// own goroutine. A source that fails contributes no information.
		go func() {
			if err := src.Start(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("signal source stopped", "source", src.Name(), "error", err)
				r.sink.Record(shared.Classify(err))
			}
		}()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case sig, ok := <-src.Signals():
					if !ok {
						return
					}
					select {
					case merged <- sig:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	timer := time.NewTimer(r.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	var pending *models.TrackSignal
	pendingArmed := false

	disarm := func() {
		pending = nil
		if pendingArmed {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pendingArmed = false
		}
	}

	for {
		select {
		case <-ctx.Done():
			disarm()
			return ctx.Err()

		case sig := <-merged:
			if !sig.State.IsPlaying {
				disarm()
				r.commitStop()
				continue
			}
			track := sig.State.Track
			if track == nil || track.Empty() {
				continue
			}
			id := track.Identity()

			r.mu.Lock()
			alreadyCurrent := r.playing && r.current != nil && r.current.Identity() == id
			r.mu.Unlock()
			if alreadyCurrent {
				// Flap back to the accepted track cancels any pending
				// transition without a new event.
				disarm()
				continue
			}

			if pendingArmed && pending.Identity() == id {
				pending = track
				continue
			}
			pending = track
			if pendingArmed {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}
			timer.Reset(r.debounce)
			pendingArmed = true

		case <-timer.C:
			if !pendingArmed || pending == nil {
				continue
			}
			track := pending
			pending = nil
			pendingArmed = false
			r.commitTrack(ctx, track)

		case res := <-r.results:
			r.applyResult(ctx, res)
		}
	}
}

// commitTrack accepts a debounced track transition and kicks off
// asynchronous catalog resolution for it.
func (r *Reconciler) commitTrack(ctx context.Context, track *models.TrackSignal) {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.playing = true
	r.current = track
	r.song = nil
	r.rating = models.RatingUnknown
	r.mu.Unlock()

	r.logger.Debug("track accepted", "track", track.Name, "artist", track.Artist, "generation", gen)
	r.emit(trackChangedEvent(gen, track))

	// A superseded resolution is cancelled, not just discarded, so slow
	// catalog calls and their retries stop doing work nobody wants.
	if r.cancelResolve != nil {
		r.cancelResolve()
	}
	resolveCtx, cancel := context.WithCancel(ctx)
	r.cancelResolve = cancel

	go func() {
		res := resolveResult{generation: gen, track: track, rating: models.RatingUnknown}
		song, err := r.resolver.Resolve(resolveCtx, *track)
		switch {
		case err != nil:
			res.err = err
		case song == nil:
			res.err = fmt.Errorf("%w: no catalog match for %q", shared.ErrNotFound, track.Name)
		default:
			res.song = song
			if r.favorites != nil {
				if rat, err := r.favorites.Get(resolveCtx, song.CatalogID); err != nil {
					r.sink.Record(shared.Classify(err))
				} else {
					res.rating = rat
				}
			}
		}
		select {
		case r.results <- res:
		case <-resolveCtx.Done():
		}
	}()
}

// commitStop transitions to stopped immediately. Stop is never debounced.
func (r *Reconciler) commitStop() {
	if r.cancelResolve != nil {
		r.cancelResolve()
		r.cancelResolve = nil
	}

	r.mu.Lock()
	if !r.playing {
		r.mu.Unlock()
		return
	}
	r.generation++
	gen := r.generation
	r.playing = false
	r.current = nil
	r.song = nil
	r.rating = models.RatingUnknown
	r.mu.Unlock()

	r.logger.Debug("playback stopped", "generation", gen)
	r.emit(stoppedEvent(gen))
}

// applyResult installs a resolution outcome if its generation still
// matches the current transition; stale results are discarded.
func (r *Reconciler) applyResult(ctx context.Context, res resolveResult) {
	r.mu.Lock()
	if res.generation != r.generation || !r.playing {
		r.mu.Unlock()
		r.logger.Debug("discarding stale resolution", "generation", res.generation)
		return
	}
	r.song = res.song
	r.rating = res.rating
	r.mu.Unlock()

	if res.err != nil {
		r.sink.Record(shared.Classify(res.err))
		r.emit(resolveFailedEvent(res.generation, res.track, res.err))
		return
	}

	r.emit(songResolvedEvent(res.generation, res.track, res.song, res.rating))

	if r.recorder != nil {
		if err := r.recorder.Record(ctx, *res.song, res.track.ObservedAt); err != nil {
			r.logger.Warn("failed to record play", "error", err)
			r.sink.Record(shared.Classify(err))
		}
	}
}

// RequestAddFavorite favorites the currently resolved song, retrying
// transient failures and writing through the favorite cache on success.
func (r *Reconciler) RequestAddFavorite(ctx context.Context) error {
	return r.mutateFavorite(ctx, true)
}

// RequestRemoveFavorite unfavorites the currently resolved song.
func (r *Reconciler) RequestRemoveFavorite(ctx context.Context) error {
	return r.mutateFavorite(ctx, false)
}

func (r *Reconciler) mutateFavorite(ctx context.Context, favorited bool) error {
	if r.rater == nil {
		return fmt.Errorf("%w: no rating service configured", shared.ErrInvalidConfig)
	}
	snap := r.Snapshot()
	if snap.Song == nil {
		return fmt.Errorf("%w: no resolved song to rate", shared.ErrNotFound)
	}
	id := snap.Song.CatalogID

	op := func(ctx context.Context) error {
		if favorited {
			return r.rater.AddFavorite(ctx, id)
		}
		return r.rater.RemoveFavorite(ctx, id)
	}
	if err := retry.Void(ctx, retry.Network, op); err != nil {
		r.sink.Record(shared.Classify(err))
		return err
	}

	if r.favorites != nil {
		r.favorites.MarkFavorited(id, favorited)
	}

	rat := models.RatingNotFavorited
	if favorited {
		rat = models.RatingFavorited
	}

	// The mutated song may no longer be canonical by the time the remote
	// call returns; rating and event both apply only when it still is.
	r.mu.Lock()
	gen := r.generation
	stillCurrent := r.song != nil && r.song.CatalogID == id
	if stillCurrent {
		r.rating = rat
	}
	r.mu.Unlock()

	if stillCurrent {
		r.emit(favoriteChangedEvent(gen, snap.Song, rat))
	}
	return nil
}

// emit sends an event without blocking. Events are dropped when the
// consumer falls behind.
func (r *Reconciler) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		r.logger.Debug("event dropped", "type", ev.Type)
	}
}
