package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/fedinotify/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// accountColumns is the select list matching model.AccountProfile's db tags.
const accountColumns = "id, name, base_url, created_at, last_used_at"

// UpsertAccount inserts or updates a profile. A profile without an ID
// gets a new UUID; the stored profile is returned.
func (s *SQLiteStore) UpsertAccount(
	ctx context.Context,
	acct model.AccountProfile,
) (model.AccountProfile, error) {
	now := time.Now().UTC()
	if acct.ID == "" {
		acct.ID = uuid.New().String()
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = now
	}
	acct.LastUsedAt = now
	acct.BaseURL = strings.TrimRight(acct.BaseURL, "/")

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO accounts (id, name, base_url, created_at, last_used_at)
		VALUES (:id, :name, :base_url, :created_at, :last_used_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			base_url = excluded.base_url,
			last_used_at = excluded.last_used_at`,
		acct,
	)
	if err != nil {
		return model.AccountProfile{}, fmt.Errorf("upserting account %s: %w", acct.ID, err)
	}

	return acct, nil
}

// GetAccounts returns all profiles ordered by name.
func (s *SQLiteStore) GetAccounts(ctx context.Context) ([]model.AccountProfile, error) {
	var accts []model.AccountProfile
	err := s.db.SelectContext(ctx, &accts,
		"SELECT "+accountColumns+" FROM accounts ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	return accts, nil
}

// GetAccount looks a profile up by ID, then by name.
func (s *SQLiteStore) GetAccount(
	ctx context.Context,
	idOrName string,
) (*model.AccountProfile, error) {
	var acct model.AccountProfile
	err := s.db.GetContext(ctx, &acct,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ? OR name = ? LIMIT 1",
		idOrName, idOrName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying account %q: %w", idOrName, err)
	}
	return &acct, nil
}

// GetLastUsedAccount returns the most recently used profile.
func (s *SQLiteStore) GetLastUsedAccount(ctx context.Context) (*model.AccountProfile, error) {
	var acct model.AccountProfile
	err := s.db.GetContext(ctx, &acct,
		"SELECT "+accountColumns+" FROM accounts ORDER BY last_used_at DESC LIMIT 1",
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying last used account: %w", err)
	}
	return &acct, nil
}

// TouchAccount marks a profile as used now.
func (s *SQLiteStore) TouchAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET last_used_at = ? WHERE id = ?",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("touching account %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteAccount removes a profile by ID.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	return nil
}
