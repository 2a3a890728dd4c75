// Package render maps notifications to display rows. Everything here is
// pure: no I/O, no terminal styling.
package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nhle/fedinotify/internal/model"
)

// Action is the contextual operation a row offers besides dismissal.
type Action int

const (
	ActionNone Action = iota
	ActionFollow
	ActionConversation
)

// String returns the label used in hints and tooltips.
func (a Action) String() string {
	switch a {
	case ActionFollow:
		return "Follow account"
	case ActionConversation:
		return "View conversation"
	default:
		return ""
	}
}

// Row is the display form of one notification.
type Row struct {
	// ID is the notification ID; the dismiss action always targets it.
	ID string

	Primary   string
	Secondary string

	// AvatarURL is the actor's static avatar; Initial is the placeholder
	// glyph shown where images cannot be drawn. AltText names the actor
	// next to the avatar.
	AvatarURL string
	Initial   string
	AltText   string

	Action Action

	// ActionTarget is the account ID for ActionFollow and the status ID
	// for ActionConversation.
	ActionTarget string
}

// BuildRow derives the row for n.
func BuildRow(n model.Notification) Row {
	name := n.Account.Name()

	row := Row{
		ID:        n.ID,
		AvatarURL: n.Account.AvatarStatic,
		Initial:   initial(name),
		AltText:   n.Account.Username,
	}
	if row.AvatarURL == "" {
		row.AvatarURL = n.Account.Avatar
	}

	content := ""
	if n.Status != nil {
		content = n.Status.Content
	}

	switch n.Type.Kind() {
	case model.NotificationFollow:
		row.Primary = fmt.Sprintf("%s is now following you!", name)
	case model.NotificationMention:
		row.Primary = fmt.Sprintf("%s mentioned you in a post.", name)
		row.Secondary = Excerpt(content)
	case model.NotificationReblog:
		row.Primary = fmt.Sprintf("%s reblogged your post.", name)
		row.Secondary = Excerpt(content)
	case model.NotificationFavourite:
		row.Primary = fmt.Sprintf("%s favorited your post.", name)
		row.Secondary = Excerpt(content)
	default:
		if n.Status.HasPoll() {
			row.Primary = "A poll you voted in or created has ended."
			row.Secondary = Excerpt(content)
		} else {
			row.Primary = "A magical thing happened!"
		}
	}

	switch {
	case n.Type == model.NotificationFollow:
		row.Action = ActionFollow
		row.ActionTarget = n.Account.ID
	case n.Status != nil:
		row.Action = ActionConversation
		row.ActionTarget = n.Status.ID
	}

	return row
}

// BuildRows maps a collection preserving order.
func BuildRows(ns []model.Notification) []Row {
	rows := make([]Row, len(ns))
	for i, n := range ns {
		rows[i] = BuildRow(n)
	}
	return rows
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "?"
}
