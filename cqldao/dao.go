// Package cqldao is the Cassandra backend.
package cqldao

import (
	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/api"
)

type Store struct {
	session   *GocqlSession
	users     *UserDAO
	events    *EventDAO
	signups   *SignupDAO
	relations *RelationDAO
}

// NewStore builds the DAOs over a session, connecting it if needed.
func NewStore(session *GocqlSession) *Store {
	reconnectIfNeeded(session)
	return &Store{
		session:   session,
		users:     &UserDAO{session: session},
		events:    &EventDAO{session: session},
		signups:   &SignupDAO{session: session},
		relations: &RelationDAO{session: session},
	}
}

func (s *Store) Users() api.UserDAO         { return s.users }
func (s *Store) Events() api.EventDAO       { return s.events }
func (s *Store) Signups() api.SignupDAO     { return s.signups }
func (s *Store) Relations() api.RelationDAO { return s.relations }

func (s *Store) Close() error {
	if s.session.IsValid() {
		s.session.Close()
	}
	return nil
}

func checkSession(session *GocqlSession) {
	if session == nil || !session.IsValid() {
		panic(ErrNoSession)
	}
}

func reconnectIfNeeded(session api.DbSession) {
	if session != nil && (!session.IsValid() || session.Closed()) {
		if err := session.Connect(); err != nil {
			log.Error().Err(err).Msg("cassandra connect failed")
		}
	}
}
