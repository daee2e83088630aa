package hub

import (
	"time"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/relation"
)

// Notification is one of the change messages published through the hub.
// Payloads are snapshots and must not be mutated by subscribers.
type Notification interface {
	notification()
}

type EventChanged struct {
	Event                 *common.Event
	ChangingUser          int64
	FriendsOfChangingUser []int64
	Action                common.EventAction
	// RecipientUserID restricts the notification to one user when set
	RecipientUserID int64
}

type SignupChanged struct {
	Signup *common.Signup
	Event  *common.Event
}

type RelationChanged struct {
	Relation         *relation.Relation
	ActiveUser       int64
	ActiveUserAction relation.Action
	TargetUser       int64
}

type UserChanged struct {
	User          *common.User
	FriendsOfUser []int64
	Action        common.UserAction
}

type UserStatistics struct {
	UserID         int64
	CreatedEvents  int
	JoinedEvents   int
	UpcomingEvents int
	Friends        int
	PendingInvites int
	ComputedAt     time.Time
}

func (*EventChanged) notification()    {}
func (*SignupChanged) notification()   {}
func (*RelationChanged) notification() {}
func (*UserChanged) notification()     {}

// Concerns reports whether the relation change involves userID.
func (n *RelationChanged) Concerns(userID int64) bool {
	return n.Relation.Involves(userID)
}
