package signal

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
)

func collect(ch <-chan Signal, timeout time.Duration) []Signal {
	var out []Signal
	deadline := time.After(timeout)
	for {
		select {
		case sig := <-ch:
			out = append(out, sig)
		case <-deadline:
			return out
		}
	}
}

func TestPushSourceDeliver(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("playing notification", func(t *testing.T) {
		src := NewPushSource(logger, 4)
		src.Deliver(map[string]string{
			KeyPlayerState: "Playing",
			KeyName:        "Test Song",
			KeyArtist:      "Test Artist",
			KeyAlbum:       "Test Album",
			KeyTotalTime:   "215000",
			KeyStoreID:     "id-123",
		})

		sigs := collect(src.Signals(), 50*time.Millisecond)
		if len(sigs) != 1 {
			t.Fatalf("expected 1 signal, got %d", len(sigs))
		}
		state := sigs[0].State
		if !state.HasTrack() {
			t.Fatal("expected playing state with a track")
		}
		if state.Track.Name != "Test Song" || state.Track.Artist != "Test Artist" {
			t.Errorf("unexpected track: %+v", state.Track)
		}
		if state.Track.DurationSeconds != 215 {
			t.Errorf("expected duration 215s, got %d", state.Track.DurationSeconds)
		}
		if state.Track.SourceID != "id-123" {
			t.Errorf("expected source ID id-123, got %q", state.Track.SourceID)
		}
	})

	t.Run("stop notifications emit immediately", func(t *testing.T) {
		src := NewPushSource(logger, 4)
		src.Deliver(map[string]string{KeyPlayerState: "Stopped"})
		src.Deliver(map[string]string{KeyPlayerState: "Paused"})

		sigs := collect(src.Signals(), 50*time.Millisecond)
		if len(sigs) != 2 {
			t.Fatalf("expected 2 signals, got %d", len(sigs))
		}
		for _, sig := range sigs {
			if sig.State.IsPlaying || sig.State.Track != nil {
				t.Errorf("stop signal must clear the track: %+v", sig.State)
			}
		}
	})

	t.Run("tolerates absent fields", func(t *testing.T) {
		src := NewPushSource(logger, 4)
		src.Deliver(map[string]string{KeyPlayerState: "Playing", KeyName: "Test Song"})

		sigs := collect(src.Signals(), 50*time.Millisecond)
		if len(sigs) != 1 {
			t.Fatalf("expected 1 signal, got %d", len(sigs))
		}
		if sigs[0].State.Track.Artist != "" {
			t.Error("missing artist should stay empty")
		}
	})

	t.Run("ignores payloads without state or track", func(t *testing.T) {
		src := NewPushSource(logger, 4)
		src.Deliver(map[string]string{KeyName: "Test Song"})
		src.Deliver(map[string]string{KeyPlayerState: "Playing"})

		if sigs := collect(src.Signals(), 50*time.Millisecond); len(sigs) != 0 {
			t.Errorf("expected no signals, got %d", len(sigs))
		}
	})
}

// mockBridge is a scripted AutomationBridge for PollingBridge tests.
type mockBridge struct {
	mu         sync.Mutex
	statuses   []Status
	errs       []error
	calls      int
	idCalls    int
	externalID string
}

func (m *mockBridge) Query(ctx context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return Status{}, m.errs[i]
	}
	if i >= len(m.statuses) {
		return m.statuses[len(m.statuses)-1], nil
	}
	return m.statuses[i], nil
}

func (m *mockBridge) ExternalID(ctx context.Context, track models.TrackSignal) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idCalls++
	return m.externalID, nil
}

func (m *mockBridge) queryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockBridge) externalIDCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idCalls
}

func TestPollingBridge(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("emits playing signal with external ID", func(t *testing.T) {
		bridge := &mockBridge{
			statuses:   []Status{{IsPlaying: true, TrackName: "Test Song", Artist: "Test Artist"}},
			externalID: "store-9",
		}
		poller := NewPollingBridge(bridge, logger, PollingOpts{Interval: 10 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		go poller.Start(ctx)

		sigs := collect(poller.Signals(), 60*time.Millisecond)
		cancel()

		if len(sigs) == 0 {
			t.Fatal("expected at least one signal")
		}
		first := sigs[0]
		if !first.State.HasTrack() || first.State.Track.Name != "Test Song" {
			t.Errorf("unexpected state: %+v", first.State)
		}
		if first.State.Track.SourceID != "store-9" {
			t.Errorf("expected store-9 source ID, got %q", first.State.Track.SourceID)
		}
	})

	t.Run("asks for external ID once per distinct track", func(t *testing.T) {
		bridge := &mockBridge{
			statuses:   []Status{{IsPlaying: true, TrackName: "Test Song", Artist: "Test Artist"}},
			externalID: "store-9",
		}
		poller := NewPollingBridge(bridge, logger, PollingOpts{Interval: 5 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		go poller.Start(ctx)

		collect(poller.Signals(), 60*time.Millisecond)
		cancel()

		if bridge.queryCalls() < 2 {
			t.Fatalf("expected repeated polls, got %d", bridge.queryCalls())
		}
		if bridge.externalIDCalls() != 1 {
			t.Errorf("expected a single external ID lookup, got %d", bridge.externalIDCalls())
		}
	})

	t.Run("player not running yields no signal", func(t *testing.T) {
		notRunning := make([]error, 64)
		for i := range notRunning {
			notRunning[i] = shared.ErrPlayerNotRunning
		}
		bridge := &mockBridge{errs: notRunning, statuses: []Status{{}}}
		poller := NewPollingBridge(bridge, logger, PollingOpts{Interval: 10 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		go poller.Start(ctx)

		sigs := collect(poller.Signals(), 35*time.Millisecond)
		cancel()

		if len(sigs) != 0 {
			t.Errorf("a failing source must not flicker to stopped, got %d signals", len(sigs))
		}
	})

	t.Run("query errors yield no signal", func(t *testing.T) {
		failing := make([]error, 64)
		for i := range failing {
			failing[i] = errors.New("osascript: timeout")
		}
		bridge := &mockBridge{errs: failing, statuses: []Status{{}}}
		poller := NewPollingBridge(bridge, logger, PollingOpts{Interval: 10 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		go poller.Start(ctx)

		sigs := collect(poller.Signals(), 25*time.Millisecond)
		cancel()

		if len(sigs) != 0 {
			t.Errorf("expected no signals on query error, got %d", len(sigs))
		}
	})

	t.Run("stopped player emits stop signal", func(t *testing.T) {
		bridge := &mockBridge{statuses: []Status{{IsPlaying: false}}}
		poller := NewPollingBridge(bridge, logger, PollingOpts{Interval: 10 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		go poller.Start(ctx)

		sigs := collect(poller.Signals(), 30*time.Millisecond)
		cancel()

		if len(sigs) == 0 {
			t.Fatal("expected a stop signal")
		}
		if sigs[0].State.IsPlaying {
			t.Error("expected stopped state")
		}
	})
}
