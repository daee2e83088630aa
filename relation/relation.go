package relation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidParticipant = errors.New("user is not a participant of the relation")
	ErrCorruptStatus      = errors.New("corrupt relation status")
	ErrInvalidAction      = errors.New("invalid relation action")
	ErrSameUser           = errors.New("a relation needs two different users")
)

// Flag is the state one side of a relation holds.
type Flag uint8

const (
	None     Flag = 0
	Invited  Flag = 1
	Accepted Flag = 2
	Rejected Flag = 4
	Blocked  Flag = 8
)

func (f Flag) String() string {
	switch f {
	case None:
		return "None"
	case Invited:
		return "Invited"
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case Blocked:
		return "Blocked"
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

func decodeFlag(b uint8) (Flag, error) {
	switch f := Flag(b); f {
	case None, Invited, Accepted, Rejected, Blocked:
		return f, nil
	}
	return None, fmt.Errorf("%w: byte %#02x", ErrCorruptStatus, b)
}

// VisibleStatus is the relation as seen by one of its participants.
type VisibleStatus int

const (
	StatusNone VisibleStatus = iota
	StatusInvited
	StatusInviting
	StatusFriends
	StatusRejected
	StatusRejecting
	StatusBlocked
	StatusBlocking
)

var visibleStatusNames = [...]string{"None", "Invited", "Inviting", "Friends",
	"Rejected", "Rejecting", "Blocked", "Blocking"}

func (s VisibleStatus) String() string {
	if s < 0 || int(s) >= len(visibleStatusNames) {
		return fmt.Sprintf("VisibleStatus(%d)", int(s))
	}
	return visibleStatusNames[s]
}

type Action int

const (
	Invite Action = iota
	Accept
	Reject
	Block
	Remove
)

var actionNames = [...]string{"Invite", "Accept", "Reject", "Block", "Remove"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction accepts action names case-insensitively.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(name, s) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Status holds both sides of a relation. A belongs to the user with the
// lower id.
type Status struct {
	A Flag
	B Flag
}

func (s Status) MutualFriends() bool {
	return s.A == Accepted && s.B == Accepted
}

// Encode packs the status into its persisted form: A in the low byte, B in
// the high byte.
func (s Status) Encode() uint16 {
	return uint16(s.A) | uint16(s.B)<<8
}

func DecodeStatus(v uint16) (Status, error) {
	a, err := decodeFlag(uint8(v))
	if err != nil {
		return Status{}, err
	}
	b, err := decodeFlag(uint8(v >> 8))
	if err != nil {
		return Status{}, err
	}
	return Status{A: a, B: b}, nil
}

func (s Status) String() string {
	return fmt.Sprintf("(%v,%v)", s.A, s.B)
}

type Relation struct {
	UserA       int64
	UserB       int64
	Status      Status
	CreatedDate time.Time
	UpdatedDate time.Time
}

// New returns an empty relation between two users with roles assigned by
// id order.
func New(user1, user2 int64) (*Relation, error) {
	if user1 == user2 {
		return nil, ErrSameUser
	}
	a, b := Normalize(user1, user2)
	return &Relation{UserA: a, UserB: b}, nil
}

// Normalize orders a pair of user ids as (A, B).
func Normalize(user1, user2 int64) (int64, int64) {
	if user1 < user2 {
		return user1, user2
	}
	return user2, user1
}

func (r *Relation) Involves(userID int64) bool {
	return r.UserA == userID || r.UserB == userID
}

// Counterpart returns the other participant.
func (r *Relation) Counterpart(viewer int64) (int64, error) {
	switch viewer {
	case r.UserA:
		return r.UserB, nil
	case r.UserB:
		return r.UserA, nil
	}
	return 0, ErrInvalidParticipant
}

// StatusFor derives the visible status of the relation for viewer.
func (r *Relation) StatusFor(viewer int64) (VisibleStatus, error) {
	own, other, err := ExtractSides(r, viewer)
	if err != nil {
		return StatusNone, err
	}
	return DeriveStatus(own, other), nil
}

func (r *Relation) String() string {
	return fmt.Sprintf("relation[%d,%d]%v", r.UserA, r.UserB, r.Status)
}
