package notifications

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/nhle/fedinotify/internal/mastodon"
	"github.com/nhle/fedinotify/internal/model"
)

// Service is the part of the API client the notifications screen uses.
type Service interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	DismissNotification(ctx context.Context, id string) error
	ClearNotifications(ctx context.Context) error
	FollowAccount(ctx context.Context, accountID string) (*mastodon.Relationship, error)
}

// LoadedMsg carries the result of fetching the notification collection.
type LoadedMsg struct {
	Session       uint64
	Notifications []model.Notification
	Err           error
}

// DismissedMsg reports the outcome of dismissing one notification.
type DismissedMsg struct {
	Session uint64
	ID      string
	Err     error
}

// ClearedMsg reports the outcome of clearing all notifications.
type ClearedMsg struct {
	Session uint64
	Err     error
}

// FollowedMsg reports the outcome of following an account.
type FollowedMsg struct {
	Session      uint64
	AccountID    string
	Relationship *mastodon.Relationship
	Err          error
}

// OpenConversationMsg asks the parent to show the post behind a
// notification.
type OpenConversationMsg struct {
	Notification model.Notification
}

// defaultTimeout bounds every API call started from this screen.
const defaultTimeout = 30 * time.Second

// SessionOf returns the session stamp carried by a result message of this
// screen. ok is false for any other message.
func SessionOf(msg tea.Msg) (id uint64, ok bool) {
	switch msg := msg.(type) {
	case LoadedMsg:
		return msg.Session, true
	case DismissedMsg:
		return msg.Session, true
	case ClearedMsg:
		return msg.Session, true
	case FollowedMsg:
		return msg.Session, true
	}
	return 0, false
}

// fetch returns a command that loads the notification collection.
func fetch(svc Service, timeout time.Duration, session uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		ns, err := svc.ListNotifications(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("loading notifications failed")
			return LoadedMsg{Session: session, Err: err}
		}
		log.Debug().Int("count", len(ns)).Msg("notifications loaded")
		return LoadedMsg{Session: session, Notifications: ns}
	}
}

// dismiss returns a command that dismisses the notification with id.
func dismiss(svc Service, timeout time.Duration, session uint64, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := svc.DismissNotification(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("id", id).Msg("dismiss failed")
		}
		return DismissedMsg{Session: session, ID: id, Err: err}
	}
}

// clearAll returns a command that clears every notification.
func clearAll(svc Service, timeout time.Duration, session uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := svc.ClearNotifications(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("clear failed")
		}
		return ClearedMsg{Session: session, Err: err}
	}
}

// follow returns a command that follows accountID.
func follow(svc Service, timeout time.Duration, session uint64, accountID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		rel, err := svc.FollowAccount(ctx, accountID)
		if err != nil {
			log.Warn().Err(err).Str("account", accountID).Msg("follow failed")
		}
		return FollowedMsg{Session: session, AccountID: accountID, Relationship: rel, Err: err}
	}
}
