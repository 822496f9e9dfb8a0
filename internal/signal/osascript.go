package signal

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
)

// fieldSep separates track fields in script output. Chosen to never appear
// in real track metadata.
const fieldSep = "||"

const queryScript = `if application "Music" is not running then return "not_running"
tell application "Music"
	if player state is playing then
		set t to current track
		return "playing" & "||" & (name of t) & "||" & (artist of t) & "||" & (album of t)
	end if
	return "idle"
end tell`

const externalIDScript = `if application "Music" is not running then return ""
tell application "Music"
	if player state is playing then return (persistent ID of current track) as text
	return ""
end tell`

// ScriptBridge drives the local player through osascript, the macOS
// automation interpreter. It satisfies [AutomationBridge].
type ScriptBridge struct {
	logger *log.Logger

	// run executes an automation script and returns its trimmed output.
	// Swappable for tests.
	run func(ctx context.Context, script string) (string, error)
}

// NewScriptBridge creates a bridge that shells out to osascript.
func NewScriptBridge(logger *log.Logger) *ScriptBridge {
	return &ScriptBridge{
		logger: logger.With("component", "script_bridge"),
		run:    runOsascript,
	}
}

func runOsascript(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Query asks the player for its current state.
func (b *ScriptBridge) Query(ctx context.Context) (Status, error) {
	out, err := b.run(ctx, queryScript)
	if err != nil {
		return Status{}, fmt.Errorf("%w: %v", shared.ErrPlayerNotRunning, err)
	}

	if out == "not_running" {
		return Status{}, shared.ErrPlayerNotRunning
	}
	if !strings.HasPrefix(out, "playing"+fieldSep) {
		return Status{IsPlaying: false}, nil
	}

	parts := strings.SplitN(out, fieldSep, 4)
	if len(parts) < 4 {
		b.logger.Warn("malformed automation reply", "reply", out)
		return Status{IsPlaying: false}, nil
	}

	return Status{
		IsPlaying: true,
		TrackName: parts[1],
		Artist:    parts[2],
		Album:     parts[3],
	}, nil
}

// ExternalID returns the player's persistent identifier for the current
// track, or "" when none is available.
func (b *ScriptBridge) ExternalID(ctx context.Context, track models.TrackSignal) (string, error) {
	out, err := b.run(ctx, externalIDScript)
	if err != nil {
		return "", fmt.Errorf("external ID query: %w", err)
	}
	return out, nil
}
