package cqldao

import (
	"context"
)

// Tables are denormalized per query path: signups and relations are written
// once per user that looks them up.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id bigint PRIMARY KEY,
		name text,
		email text,
		push_token text,
		created_date bigint
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		event_id bigint PRIMARY KEY,
		author_id bigint,
		author_name text,
		title text,
		description text,
		friends_only boolean,
		game_id bigint,
		start_date bigint,
		end_date bigint,
		created_date bigint
	)`,
	`CREATE TABLE IF NOT EXISTS events_by_author (
		author_id bigint,
		event_id bigint,
		PRIMARY KEY (author_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS events_timeline (
		bucket int,
		position bigint,
		event_id bigint,
		PRIMARY KEY (bucket, position, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS event_signups (
		event_id bigint,
		user_id bigint,
		status int,
		created_date bigint,
		PRIMARY KEY (event_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS signups_by_user (
		user_id bigint,
		event_id bigint,
		status int,
		created_date bigint,
		PRIMARY KEY (user_id, event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS relations_by_user (
		user_id bigint,
		other_id bigint,
		user_a bigint,
		user_b bigint,
		status int,
		created_date bigint,
		updated_date bigint,
		PRIMARY KEY (user_id, other_id)
	)`,
}

var tables = []string{"users", "events", "events_by_author", "events_timeline",
	"event_signups", "signups_by_user", "relations_by_user"}

// CreateSchema creates the tables in the session keyspace.
func CreateSchema(ctx context.Context, session *GocqlSession) error {
	checkSession(session)
	for _, stmt := range schema {
		if err := session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Truncate empties every table. Meant for tests.
func Truncate(ctx context.Context, session *GocqlSession) error {
	checkSession(session)
	for _, table := range tables {
		if err := session.Query(`TRUNCATE ` + table).WithContext(ctx).Exec(); err != nil {
			return err
		}
	}
	return nil
}
