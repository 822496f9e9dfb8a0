package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/favtrack/internal/models"
	"github.com/desertthunder/favtrack/internal/shared"
)

var _ list.Item = historyItem{}

// historyItem wraps [models.PlayRecord] to implement [list.Item].
type historyItem struct {
	record *models.PlayRecord
}

func (i historyItem) FilterValue() string { return i.record.Title }
func (i historyItem) Title() string {
	title := i.record.Title
	if i.record.Favorited {
		title += " ♥"
	}
	return title
}
func (i historyItem) Description() string {
	desc := i.record.Artist
	if i.record.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.record.Album)
	}
	if i.record.DurationSeconds > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.record.DurationSeconds))
	}
	return desc
}
