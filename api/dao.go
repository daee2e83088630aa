package api

import "context"

type DbSession interface {
	Connect() error
	IsValid() bool
	Closed() bool
}

// Store groups the DAOs of one persistence backend.
type Store interface {
	Users() UserDAO
	Events() EventDAO
	Signups() SignupDAO
	Relations() RelationDAO
	Close() error
}

type UserDAO interface {
	Load(ctx context.Context, userID int64) (*UserDTO, error)
	LoadAll(ctx context.Context) ([]*UserDTO, error)
	Insert(ctx context.Context, user *UserDTO) error
	SetPushToken(ctx context.Context, userID int64, token string) error
	Delete(ctx context.Context, userID int64) error
}

// EventDAO persists events. Loaded events carry their signups. Dates are
// milliseconds and 0 means an open bound.
type EventDAO interface {
	Load(ctx context.Context, ids ...int64) ([]*EventDTO, error)
	LoadInRange(ctx context.Context, from int64, to int64) ([]*EventDTO, error)
	LoadByAuthor(ctx context.Context, authorID int64) ([]*EventDTO, error)
	Insert(ctx context.Context, event *EventDTO) error
	Update(ctx context.Context, event *EventDTO) error
	Delete(ctx context.Context, eventID int64) error
}

type SignupDAO interface {
	Save(ctx context.Context, signup *SignupDTO) error
	Delete(ctx context.Context, eventID int64, userID int64) error
	LoadByUser(ctx context.Context, userID int64) ([]*SignupDTO, error)
}

// RelationDAO stores one record per pair. userA must be the lower id.
type RelationDAO interface {
	Load(ctx context.Context, userA int64, userB int64) (*RelationDTO, error)
	LoadAll(ctx context.Context, userID int64) ([]*RelationDTO, error)
	Save(ctx context.Context, relation *RelationDTO) error
	Delete(ctx context.Context, userA int64, userB int64) error
}
