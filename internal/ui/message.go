package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/favtrack/internal/engine"
	"github.com/desertthunder/favtrack/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgEngineEvent MsgKind = iota
	MsgEngineClosed
	MsgFavoriteResult
	MsgHistoryFetched
)

// engineEventMsg is the constructor for [MsgEngineEvent]
func engineEventMsg(event engine.Event) Msg {
	return Msg{kind: MsgEngineEvent, data: event}
}

// engineClosedMsg is the constructor for [MsgEngineClosed]
func engineClosedMsg() Msg {
	return Msg{kind: MsgEngineClosed}
}

// favoriteResultMsg is the constructor for [MsgFavoriteResult]
func favoriteResultMsg(err error) Msg {
	return Msg{kind: MsgFavoriteResult, data: err}
}

// historyFetchedMsg is the constructor for [MsgHistoryFetched]
func historyFetchedMsg(records []*models.PlayRecord, err error) Msg {
	return Msg{
		kind: MsgHistoryFetched,
		data: struct {
			records []*models.PlayRecord
			err     error
		}{records, err},
	}
}
