package store

import (
	"context"
	"errors"

	"github.com/nhle/fedinotify/internal/model"
)

// ErrNotFound is returned when a lookup matches no account profile.
var ErrNotFound = errors.New("account profile not found")

// Store defines the persistence interface for saved account profiles.
// Notifications themselves are never persisted.
type Store interface {
	UpsertAccount(ctx context.Context, acct model.AccountProfile) (model.AccountProfile, error)
	GetAccounts(ctx context.Context) ([]model.AccountProfile, error)
	GetAccount(ctx context.Context, idOrName string) (*model.AccountProfile, error)
	GetLastUsedAccount(ctx context.Context) (*model.AccountProfile, error)
	TouchAccount(ctx context.Context, id string) error
	DeleteAccount(ctx context.Context, id string) error
}
