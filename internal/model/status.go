package model

import "time"

// Status is a post as embedded in a notification. Content is HTML.
type Status struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Poll      *Poll     `json:"poll,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasPoll reports whether the post has a poll attached.
func (s *Status) HasPoll() bool {
	return s != nil && s.Poll != nil
}

// Poll is the subset of poll data the client displays.
type Poll struct {
	ID      string `json:"id"`
	Expired bool   `json:"expired"`
}
