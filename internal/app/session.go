package app

import (
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhle/fedinotify/internal/mastodon"
	"github.com/nhle/fedinotify/internal/model"
	"github.com/nhle/fedinotify/internal/ui/notifications"
)

// ServiceFactory builds the API service for a session. Tests replace it
// with a fake.
type ServiceFactory func(baseURL, token string) notifications.Service

// session is the active sign-in: a saved profile plus its token.
type session struct {
	// id increases with every sign-in; zero means none.
	id      uint64
	profile model.AccountProfile
	service notifications.Service
}

// label returns the header text identifying the session.
func (s *session) label() string {
	if s == nil {
		return "no account"
	}
	host := s.profile.BaseURL
	if u, err := url.Parse(s.profile.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}
	if s.profile.Name == "" || s.profile.Name == host {
		return host
	}
	return s.profile.Name + " · " + host
}

// mastodonFactory returns a ServiceFactory producing real API clients
// configured from cfg.
func mastodonFactory(cfg model.HTTPConfig) ServiceFactory {
	return func(baseURL, token string) notifications.Service {
		return mastodon.NewClient(baseURL, token,
			mastodon.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second),
			mastodon.WithUserAgent(cfg.UserAgent),
		)
	}
}

// startSession builds the service for profile and returns the session.
func (m *Model) startSession(profile model.AccountProfile, token string) *session {
	m.sessions++
	log.Info().
		Uint64("session", m.sessions).
		Str("account", profile.ID).
		Str("url", profile.BaseURL).
		Msg("starting session")

	return &session{
		id:      m.sessions,
		profile: profile,
		service: m.newService(profile.BaseURL, token),
	}
}
