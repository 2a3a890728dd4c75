package notifications

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fedinotify/internal/render"
	"github.com/nhle/fedinotify/internal/theme"
)

// Item wraps a render.Row so it can be used in a bubbles/list.
type Item struct {
	Row render.Row
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Row.Primary }

// Title returns the primary text.
func (i Item) Title() string { return i.Row.Primary }

// Description returns the secondary text.
func (i Item) Description() string { return i.Row.Secondary }

// ItemDelegate implements list.ItemDelegate for notification rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a row. The first line holds the avatar badge, the primary
// text with the actor's handle, the action badge and the dismiss marker.
// The excerpt goes on the second.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	row := it.Row
	isSelected := index == m.Index()

	avatar := theme.AvatarStyle(row.Initial).Render(row.Initial)
	parts := []string{avatar, row.Primary}
	if row.AltText != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGray).Render("@"+row.AltText))
	}

	switch row.Action {
	case render.ActionFollow:
		parts = append(parts, theme.ActionStyle("follow").Render("+ follow"))
	case render.ActionConversation:
		parts = append(parts, theme.ActionStyle("conversation").Render("» thread"))
	}
	parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGray).Render("✕"))

	first := strings.Join(parts, " ")

	second := ""
	if row.Secondary != "" {
		// Indent under the text, past the avatar badge.
		pad := strings.Repeat(" ", lipgloss.Width(avatar)+1)
		second = pad + theme.SecondaryTextStyle.Render(row.Secondary)
	}

	line := first + "\n" + second

	if isSelected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
