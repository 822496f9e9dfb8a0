// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides two views over the reconciliation engine:
//  1. [NowPlayingView] : Live canonical playback state with catalog resolution and favorite status
//  2. [HistoryView] : Browse recent catalog-resolved plays
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Engine events flow through the reconciler's event channel, so the view never polls the player itself.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, f/u, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
