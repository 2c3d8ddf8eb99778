// Package store implements the client replica store: two independently
// synchronized SQLite files (owned and shared scope) holding the entity
// graph, a per-scope history token, and an outbox of local changes waiting
// to be pushed to the authority.
//
// All multi-row mutations run inside a single transaction, so a reader
// either sees all of a save's changes or none of them. Reads never touch
// the network.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/kevinbuckley/tripwit/internal/client/store/migrations"
	"github.com/kevinbuckley/tripwit/internal/dbx"
	"github.com/kevinbuckley/tripwit/internal/logging"
	"github.com/kevinbuckley/tripwit/internal/syncx"
)

const (
	metaAuthorID     = "author_id"
	metaHistoryToken = "history_token"
)

// Store is the durable on-device replica.
type Store struct {
	dbs    map[syncx.Scope]*sql.DB
	log    logging.Logger
	author string
	userID string
}

// Options configures Open.
type Options struct {
	// Dir is the directory holding the scope files (owned.db, shared.db).
	Dir string
	// UserID identifies the local user for share-permission checks.
	UserID string
}

// Open opens (creating if needed) both scope files, runs migrations on
// each, and loads or mints the device author id.
func Open(ctx context.Context, opts Options, log logging.Logger) (*Store, error) {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)

	s := &Store{
		dbs:    make(map[syncx.Scope]*sql.DB, len(syncx.Scopes)),
		log:    log.With("module", "store"),
		userID: opts.UserID,
	}

	for _, scope := range syncx.Scopes {
		path := filepath.Join(opts.Dir, string(scope)+".db")
		db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("opening %s scope: %w", scope, err)
		}
		if err := goose.UpContext(ctx, db, "."); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrating %s scope: %w", scope, err)
		}
		s.dbs[scope] = db
	}

	author, err := s.loadOrCreateAuthor(ctx)
	if err != nil {
		return nil, err
	}
	s.author = author

	return s, nil
}

// Close closes both scope files.
func (s *Store) Close() error {
	var firstErr error
	for scope, db := range s.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing %s scope: %w", scope, err)
		}
	}
	return firstErr
}

// Author returns the device+install author id stamped on local writes.
func (s *Store) Author() string { return s.author }

// UserID returns the local user identity.
func (s *Store) UserID() string { return s.userID }

// DB exposes the raw handle for a scope. Tests and the syncer use it;
// application code goes through the typed operations.
func (s *Store) DB(scope syncx.Scope) *sql.DB { return s.dbs[scope] }

// withTx runs fn in a transaction on the given scope.
func (s *Store) withTx(ctx context.Context, scope syncx.Scope, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.dbs[scope], nil, fn)
}

// loadOrCreateAuthor reads the persisted author id from the owned scope,
// minting and storing a fresh one on first run.
func (s *Store) loadOrCreateAuthor(ctx context.Context) (string, error) {
	db := s.dbs[syncx.ScopeOwned]

	author, err := getMeta(ctx, db, metaAuthorID)
	if err != nil {
		return "", err
	}
	if author != "" {
		return author, nil
	}

	author = uuid.NewString()
	if err := setMeta(ctx, db, metaAuthorID, author); err != nil {
		return "", fmt.Errorf("persisting author id: %w", err)
	}
	return author, nil
}

// HistoryToken returns the persisted cursor for a scope; zero value when
// the scope has never merged.
func (s *Store) HistoryToken(ctx context.Context, scope syncx.Scope) (syncx.Token, error) {
	v, err := getMeta(ctx, s.dbs[scope], metaHistoryToken)
	if err != nil {
		return "", err
	}
	return syncx.Token(v), nil
}

// SetHistoryToken persists the cursor for a scope. Called strictly after
// the merge transaction that consumed the token's entries has committed.
func (s *Store) SetHistoryToken(ctx context.Context, scope syncx.Scope, tok syncx.Token) error {
	return setMeta(ctx, s.dbs[scope], metaHistoryToken, string(tok))
}

func getMeta(ctx context.Context, q dbx.DBTX, key string) (string, error) {
	var v string
	err := q.QueryRowContext(ctx, `SELECT value FROM sync_meta WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading sync_meta %q: %w", key, err)
	}
	return v, nil
}

func setMeta(ctx context.Context, q dbx.DBTX, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("writing sync_meta %q: %w", key, err)
	}
	return nil
}
