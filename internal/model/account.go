package model

import "time"

// Account is a remote user as embedded in notifications.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Acct         string `json:"acct"`
	DisplayName  string `json:"display_name"`
	Avatar       string `json:"avatar"`
	AvatarStatic string `json:"avatar_static"`
}

// Name returns the display name, falling back to the username when the
// account has not set one.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// AccountProfile is a saved sign-in to one instance. The access token is
// not part of the profile; it lives in the system keyring.
type AccountProfile struct {
	// ID is the local identifier, also used to derive the keyring key.
	ID string `db:"id"`

	// Name is the user-chosen label shown in the accounts view.
	Name string `db:"name"`

	// BaseURL is the instance root, e.g. https://mastodon.social.
	BaseURL string `db:"base_url"`

	CreatedAt  time.Time `db:"created_at"`
	LastUsedAt time.Time `db:"last_used_at"`
}

// CredentialKey returns the keyring key holding this profile's token.
func (p AccountProfile) CredentialKey() string {
	return "account-" + p.ID
}
