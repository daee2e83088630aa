package api

type UserDTO struct {
	Id          int64
	Name        string
	Email       string
	PushToken   string
	CreatedDate int64
}

type EventDTO struct {
	Id          int64
	AuthorId    int64
	AuthorName  string
	Title       string
	Description string
	FriendsOnly bool
	GameId      int64
	StartDate   int64
	EndDate     int64
	CreatedDate int64
	Signups     map[int64]*SignupDTO
}

type SignupDTO struct {
	EventId     int64
	UserId      int64
	Status      SignupStatus
	CreatedDate int64
}

// RelationDTO keeps the status in its packed form: side A in the low byte
// and side B in the high byte.
type RelationDTO struct {
	UserA       int64
	UserB       int64
	Status      uint16
	CreatedDate int64
	UpdatedDate int64
}
