// Package sqldao is the embedded SQLite backend, used for development,
// single-node deployments and tests.
package sqldao

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id      INTEGER PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL UNIQUE,
	push_token   TEXT NOT NULL DEFAULT '',
	created_date INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	event_id     INTEGER PRIMARY KEY,
	author_id    INTEGER NOT NULL,
	author_name  TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	friends_only INTEGER NOT NULL DEFAULT 0,
	game_id      INTEGER NOT NULL DEFAULT 0,
	start_date   INTEGER NOT NULL,
	end_date     INTEGER NOT NULL,
	created_date INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS events_by_author ON events (author_id);
CREATE INDEX IF NOT EXISTS events_by_end ON events (end_date);

CREATE TABLE IF NOT EXISTS signups (
	event_id     INTEGER NOT NULL REFERENCES events (event_id) ON DELETE CASCADE,
	user_id      INTEGER NOT NULL,
	status       INTEGER NOT NULL,
	created_date INTEGER NOT NULL,
	PRIMARY KEY (event_id, user_id)
);
CREATE INDEX IF NOT EXISTS signups_by_user ON signups (user_id);

CREATE TABLE IF NOT EXISTS relations (
	user_a       INTEGER NOT NULL,
	user_b       INTEGER NOT NULL,
	status       INTEGER NOT NULL,
	created_date INTEGER NOT NULL,
	updated_date INTEGER NOT NULL,
	PRIMARY KEY (user_a, user_b),
	CHECK (user_a < user_b)
);
CREATE INDEX IF NOT EXISTS relations_by_b ON relations (user_b);
`

var memoryDatabases atomic.Int64

type Store struct {
	db        *sql.DB
	users     *UserDAO
	events    *EventDAO
	signups   *SignupDAO
	relations *RelationDAO
}

// Open opens or creates the database file at path.
func Open(ctx context.Context, path string) (*Store, error) {

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	return newStore(ctx, db, pragmas)
}

// OpenMemory opens a private in-memory database.
func OpenMemory(ctx context.Context) (*Store, error) {

	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memoryDatabases.Add(1))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// every connection would otherwise see its own database
	db.SetMaxOpenConns(1)

	return newStore(ctx, db, []string{"PRAGMA foreign_keys=ON"})
}

func newStore(ctx context.Context, db *sql.DB, pragmas []string) (*Store, error) {

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Debug().Msg("sqlite store ready")

	return &Store{
		db:        db,
		users:     &UserDAO{db: db},
		events:    &EventDAO{db: db},
		signups:   &SignupDAO{db: db},
		relations: &RelationDAO{db: db},
	}, nil
}

func (s *Store) Users() api.UserDAO         { return s.users }
func (s *Store) Events() api.EventDAO       { return s.events }
func (s *Store) Signups() api.SignupDAO     { return s.signups }
func (s *Store) Relations() api.RelationDAO { return s.relations }

func (s *Store) Close() error {
	return s.db.Close()
}

func convErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return api.ErrNotFound
	}
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}
