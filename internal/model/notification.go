package model

import "time"

// NotificationType identifies what kind of account activity a
// notification reports.
type NotificationType string

const (
	NotificationFollow    NotificationType = "follow"
	NotificationMention   NotificationType = "mention"
	NotificationReblog    NotificationType = "reblog"
	NotificationFavourite NotificationType = "favourite"
	NotificationOther     NotificationType = "other"
)

// Kind collapses wire values the client has no dedicated rendering for
// (poll, update, status, ...) into NotificationOther.
func (t NotificationType) Kind() NotificationType {
	switch t {
	case NotificationFollow, NotificationMention,
		NotificationReblog, NotificationFavourite:
		return t
	default:
		return NotificationOther
	}
}

// Notification is a single event about activity involving the signed-in
// account. Records are never edited locally; the list only shrinks when
// the server acknowledges a dismissal.
type Notification struct {
	// ID is the server-assigned notification identifier.
	ID string `json:"id"`

	// Type is the raw notification type as sent by the server.
	Type NotificationType `json:"type"`

	// Account is the actor that caused the notification.
	Account Account `json:"account"`

	// Status is the post the notification refers to, if any.
	Status *Status `json:"status,omitempty"`

	// CreatedAt is when the server generated the notification.
	CreatedAt time.Time `json:"created_at"`
}

// HasStatus reports whether the notification carries a post.
func (n Notification) HasStatus() bool {
	return n.Status != nil
}
