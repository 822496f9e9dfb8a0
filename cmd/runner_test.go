package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
	"github.com/desertthunder/favtrack/internal/signal"
)

// stubBridge is a canned AutomationBridge for command tests.
type stubBridge struct {
	status signal.Status
	err    error
}

func (s *stubBridge) Query(ctx context.Context) (signal.Status, error) {
	return s.status, s.err
}

func (s *stubBridge) ExternalID(ctx context.Context, track models.TrackSignal) (string, error) {
	return "", nil
}

func testRunner(bridge signal.AutomationBridge) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Bridge: bridge,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})
	return runner, output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			bridge := &stubBridge{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Bridge:     bridge,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.bridge != bridge {
				t.Error("expected bridge to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil bridge builds a script bridge", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.bridge == nil {
				t.Error("expected a default automation bridge")
			}
		})
	})

	t.Run("write helpers", func(t *testing.T) {
		t.Run("writeJSON compact", func(t *testing.T) {
			runner, output := testRunner(&stubBridge{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if got := output.String(); got != "{\"key\":\"value\"}\n" {
				t.Errorf("unexpected output: %q", got)
			}
		})

		t.Run("writeJSON pretty", func(t *testing.T) {
			runner, output := testRunner(&stubBridge{})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "  \"key\": \"value\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("writePlain and writePlainln", func(t *testing.T) {
			runner, output := testRunner(&stubBridge{})

			runner.writePlain("a %d", 1)
			runner.writePlainln("b %d", 2)

			if got := output.String(); got != "a 1\nb 2\n" {
				t.Errorf("unexpected output: %q", got)
			}
		})

		t.Run("writePlainHeader", func(t *testing.T) {
			runner, output := testRunner(&stubBridge{})

			runner.writePlainHeader("Title")

			if !strings.Contains(output.String(), "Title\n") {
				t.Errorf("expected header title, got %q", output.String())
			}
		})
	})
}

func TestBuildSources(t *testing.T) {
	cases := []struct {
		mode     string
		sources  int
		wantPush bool
	}{
		{"push", 1, true},
		{"poll", 1, false},
		{"hybrid", 2, true},
		{"", 2, true},
	}

	for _, tc := range cases {
		t.Run("mode "+tc.mode, func(t *testing.T) {
			runner, _ := testRunner(&stubBridge{})
			config := shared.DefaultConfig()
			config.Player.Mode = tc.mode

			sources, push := runner.buildSources(config)

			if len(sources) != tc.sources {
				t.Errorf("expected %d sources, got %d", tc.sources, len(sources))
			}
			if tc.wantPush && push == nil {
				t.Error("expected a push source")
			}
			if !tc.wantPush && push != nil {
				t.Error("expected no push source")
			}
		})
	}
}

func TestRenderHistory(t *testing.T) {
	records := []*models.PlayRecord{
		{
			RecordID:        "rec-1",
			Sequence:        1,
			CatalogID:       "cat-1",
			Title:           "Karma Police",
			Artist:          "Radiohead",
			Album:           "OK Computer",
			DurationSeconds: 261,
			Favorited:       true,
			PlayedAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	t.Run("text", func(t *testing.T) {
		data, err := renderHistory(records, "text")
		if err != nil {
			t.Fatalf("renderHistory failed: %v", err)
		}
		if !strings.Contains(string(data), "Radiohead - Karma Police") {
			t.Errorf("unexpected text output: %s", data)
		}
	})

	t.Run("json", func(t *testing.T) {
		data, err := renderHistory(records, "json")
		if err != nil {
			t.Fatalf("renderHistory failed: %v", err)
		}
		var rows []map[string]any
		if err := json.Unmarshal(data, &rows); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(rows) != 1 || rows[0]["catalog_id"] != "cat-1" {
			t.Errorf("unexpected JSON rows: %v", rows)
		}
	})

	t.Run("csv", func(t *testing.T) {
		data, err := renderHistory(records, "csv")
		if err != nil {
			t.Fatalf("renderHistory failed: %v", err)
		}
		if !strings.Contains(string(data), "cat-1,Karma Police,Radiohead") {
			t.Errorf("unexpected CSV output: %s", data)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		data, err := renderHistory(records, "markdown")
		if err != nil {
			t.Fatalf("renderHistory failed: %v", err)
		}
		if !strings.Contains(string(data), "# Play History") {
			t.Errorf("unexpected markdown output: %s", data)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := renderHistory(records, "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestPrintEvent(t *testing.T) {
	track := &models.TrackSignal{Name: "Karma Police", Artist: "Radiohead"}
	song := &models.ResolvedSong{CatalogID: "cat-1", Title: "Karma Police", ArtistName: "Radiohead"}

	t.Run("track changed", func(t *testing.T) {
		runner, output := testRunner(&stubBridge{})
		runner.printEvent(engine.Event{Type: engine.EventTrackChanged, Track: track})

		if !strings.Contains(output.String(), "Radiohead - Karma Police") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("resolved", func(t *testing.T) {
		runner, output := testRunner(&stubBridge{})
		runner.printEvent(engine.Event{
			Type:   engine.EventSongResolved,
			Track:  track,
			Song:   song,
			Rating: models.RatingFavorited,
		})

		got := output.String()
		if !strings.Contains(got, "cat-1") || !strings.Contains(got, "♥") {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("resolve failed includes hint", func(t *testing.T) {
		runner, output := testRunner(&stubBridge{})
		runner.printEvent(engine.Event{
			Type: engine.EventResolveFailed,
			Err:  fmt.Errorf("%w: token expired", shared.ErrNotAuthorized),
		})

		if !strings.Contains(output.String(), "hint:") {
			t.Errorf("expected a suggestion hint, got %q", output.String())
		}
	})

	t.Run("stopped", func(t *testing.T) {
		runner, output := testRunner(&stubBridge{})
		runner.printEvent(engine.Event{Type: engine.EventStopped})

		if !strings.Contains(output.String(), "Stopped") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func TestStatusCommand(t *testing.T) {
	t.Run("playing as JSON", func(t *testing.T) {
		bridge := &stubBridge{status: signal.Status{
			IsPlaying: true,
			TrackName: "Karma Police",
			Artist:    "Radiohead",
			Album:     "OK Computer",
		}}
		runner, output := testRunner(bridge)

		cmd := statusCommand(runner)
		if err := cmd.Run(context.Background(), []string{"status", "--json"}); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		var report statusReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if !report.Playing || report.Track != "Karma Police" || report.Artist != "Radiohead" {
			t.Errorf("unexpected report: %+v", report)
		}
	})

	t.Run("player not running", func(t *testing.T) {
		bridge := &stubBridge{err: shared.ErrPlayerNotRunning}
		runner, output := testRunner(bridge)

		cmd := statusCommand(runner)
		if err := cmd.Run(context.Background(), []string{"status"}); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		if !strings.Contains(output.String(), "not running") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("stopped", func(t *testing.T) {
		bridge := &stubBridge{status: signal.Status{IsPlaying: false}}
		runner, output := testRunner(bridge)

		cmd := statusCommand(runner)
		if err := cmd.Run(context.Background(), []string{"status"}); err != nil {
			t.Fatalf("status failed: %v", err)
		}

		if !strings.Contains(output.String(), "Nothing playing") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}
