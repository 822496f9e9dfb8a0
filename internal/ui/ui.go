package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"

	"github.com/charmbracelet/bubbles/help"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	NowPlayingView ViewState = iota
	HistoryView
)

// Engine is the surface of the reconciler the TUI consumes.
type Engine interface {
	Events() <-chan engine.Event
	Snapshot() engine.Snapshot
	RequestAddFavorite(ctx context.Context) error
	RequestRemoveFavorite(ctx context.Context) error
}

// HistoryProvider yields recent plays for the history view. May be nil
// when history is disabled.
type HistoryProvider interface {
	ListRecent(limit int) ([]*models.PlayRecord, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	engine  Engine
	history HistoryProvider

	view      ViewState
	snapshot  engine.Snapshot
	resolving bool
	lastErr   error

	width       int
	height      int
	spin        spinner.Model
	historyList list.Model
	listReady   bool
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, eng Engine, history HistoryProvider) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &Model{
		ctx:     ctx,
		engine:  eng,
		history: history,
		view:    NowPlayingView,
		spin:    sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the spinner and subscribes to engine events.
func (m *Model) Init() tea.Cmd {
	m.snapshot = m.engine.Snapshot()
	return tea.Batch(m.spin.Tick, m.waitForEvent())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.historyList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleAppMsg(msg)
	}

	if m.view == HistoryView && m.listReady {
		var cmd tea.Cmd
		m.historyList, cmd = m.historyList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.view):
		return m.switchView()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if m.view == NowPlayingView {
			return m, m.requestFavorite(true)
		}
	case key.Matches(msg, m.keys.unfavor):
		if m.view == NowPlayingView {
			return m, m.requestFavorite(false)
		}
	}

	if m.view == HistoryView && m.listReady {
		var cmd tea.Cmd
		m.historyList, cmd = m.historyList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleAppMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgEngineEvent:
		event := msg.data.(engine.Event)
		m.snapshot = m.engine.Snapshot()
		switch event.Type {
		case engine.EventTrackChanged:
			m.resolving = true
			m.lastErr = nil
		case engine.EventSongResolved, engine.EventStopped:
			m.resolving = false
		case engine.EventResolveFailed:
			m.resolving = false
			m.lastErr = event.Err
		}
		return m, m.waitForEvent()

	case MsgEngineClosed:
		return m, tea.Quit

	case MsgFavoriteResult:
		if err, ok := msg.data.(error); ok && err != nil {
			m.lastErr = err
		} else {
			m.lastErr = nil
			m.snapshot = m.engine.Snapshot()
		}
		return m, nil

	case MsgHistoryFetched:
		data := msg.data.(struct {
			records []*models.PlayRecord
			err     error
		})
		if data.err != nil {
			m.lastErr = data.err
			return m, nil
		}
		items := make([]list.Item, len(data.records))
		for i, record := range data.records {
			items[i] = historyItem{record: record}
		}
		m.historyList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.historyList.Title = "Recent Plays"
		m.historyList.SetSize(m.width-4, m.height-8)
		m.listReady = true
		return m, nil
	}

	return m, nil
}

func (m *Model) switchView() (tea.Model, tea.Cmd) {
	if m.view == NowPlayingView {
		m.view = HistoryView
		if m.history != nil {
			return m, m.fetchHistory()
		}
		return m, nil
	}
	m.view = NowPlayingView
	return m, nil
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.engine.Events()
		if !ok {
			return engineClosedMsg()
		}
		return engineEventMsg(event)
	}
}

func (m *Model) requestFavorite(add bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if add {
			err = m.engine.RequestAddFavorite(m.ctx)
		} else {
			err = m.engine.RequestRemoveFavorite(m.ctx)
		}
		return favoriteResultMsg(err)
	}
}

func (m *Model) fetchHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := m.history.ListRecent(50)
		return historyFetchedMsg(records, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case NowPlayingView:
		return m.renderNowPlaying()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) renderNowPlaying() string {
	title := styles.title.Render("Now Playing")

	var body string
	if !m.snapshot.Playing || m.snapshot.Track == nil {
		body = styles.warn.Render("Nothing playing")
	} else {
		track := m.snapshot.Track
		body = fmt.Sprintf("%s - %s", track.Artist, track.Name)
		if track.Album != "" {
			body += fmt.Sprintf("\n%s", styles.help.Render(track.Album))
		}

		switch {
		case m.resolving:
			body += fmt.Sprintf("\n\n%s Resolving in catalog...", m.spin.View())
		case m.snapshot.Song != nil:
			song := m.snapshot.Song
			body += fmt.Sprintf("\n\n%s", styles.ok.Render(fmt.Sprintf("✓ %s [%s]", song.Title, shared.FormatDuration(song.DurationSeconds))))
			body += fmt.Sprintf("\n%s", m.renderRating())
		default:
			body += fmt.Sprintf("\n\n%s", styles.warn.Render("Not in catalog"))
		}
	}

	var footer string
	if m.lastErr != nil {
		footer = "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.lastErr))
		if hint := shared.Suggestion(m.lastErr); hint != "" {
			footer += "\n" + styles.help.Render(hint)
		}
	}

	helpView := m.help.View(m.keys)
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, body, footer, helpView)
}

func (m *Model) renderRating() string {
	switch m.snapshot.Rating {
	case models.RatingFavorited:
		return styles.ok.Render("♥ Favorited")
	case models.RatingNotFavorited:
		return styles.help.Render("♡ Not favorited")
	default:
		return styles.help.Render("Favorite status unknown")
	}
}

func (m *Model) renderHistory() string {
	if !m.listReady {
		return fmt.Sprintf("%s Loading history...", m.spin.View())
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.view, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.historyList.View(), helpView)
}
