package mastodon

import "time"

// Notification is the wire shape of GET /api/v1/notifications entries.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Account   Account   `json:"account"`
	Status    *Status   `json:"status"`
}

// Account is the wire shape of an account.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Acct         string `json:"acct"`
	DisplayName  string `json:"display_name"`
	Avatar       string `json:"avatar"`
	AvatarStatic string `json:"avatar_static"`
	URL          string `json:"url"`
}

// Status is the wire shape of a status (post).
type Status struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	Poll      *Poll     `json:"poll"`
}

// Poll is the wire shape of a poll attached to a status.
type Poll struct {
	ID      string `json:"id"`
	Expired bool   `json:"expired"`
}

// Relationship is returned by POST /api/v1/accounts/:id/follow.
type Relationship struct {
	ID        string `json:"id"`
	Following bool   `json:"following"`
	Requested bool   `json:"requested"`
}

// dismissRequest is the body of POST /api/v1/notifications/dismiss.
type dismissRequest struct {
	ID string `json:"id"`
}
