package common

import (
	"errors"
	"sort"
	"time"
)

const (
	MaxStartDateAhead = 365 * 24 * time.Hour // 1 year
	MaxEventDuration  = 7 * 24 * time.Hour   // 1 week
	MaxTitleLength    = 120
)

var (
	ErrInvalidStartDate = errors.New("invalid start date")
	ErrInvalidEndDate   = errors.New("invalid end date")
	ErrInvalidEventData = errors.New("invalid event data")
)

type EventAction int

const (
	EventCreated EventAction = iota
	EventDeleted
	EventEditedPeriod
	EventEditedVisibility
	EventEditedText
	EventEditedGame
)

var eventActionNames = [...]string{"Created", "Deleted", "EditedPeriod",
	"EditedVisibility", "EditedText", "EditedGame"}

func (a EventAction) String() string {
	if a < 0 || int(a) >= len(eventActionNames) {
		return "Unknown"
	}
	return eventActionNames[a]
}

type Event struct {
	ID          int64
	AuthorID    int64
	AuthorName  string
	Title       string
	Description string
	FriendsOnly bool
	GameID      int64
	StartDate   time.Time
	EndDate     time.Time
	CreatedDate time.Time
	Signups     map[int64]*Signup
}

func (e *Event) IsValid() error {

	if e.ID == 0 || e.AuthorID == 0 || e.Title == "" || len(e.Title) > MaxTitleLength {
		return ErrInvalidEventData
	}

	if e.StartDate.IsZero() || e.StartDate.Sub(e.CreatedDate) > MaxStartDateAhead {
		return ErrInvalidStartDate
	}

	if !e.EndDate.After(e.StartDate) || e.EndDate.Sub(e.StartDate) > MaxEventDuration {
		return ErrInvalidEndDate
	}

	return nil
}

// Overlaps reports whether the event takes place at some point in
// [from, to]. Zero bounds are open.
func (e *Event) Overlaps(from, to time.Time) bool {
	if !from.IsZero() && e.EndDate.Before(from) {
		return false
	}
	if !to.IsZero() && e.StartDate.After(to) {
		return false
	}
	return true
}

// HasActiveSignup reports whether userID joined and did not cancel.
func (e *Event) HasActiveSignup(userID int64) bool {
	s, ok := e.Signups[userID]
	return ok && s.Status != SignupCancelled
}

// HasNonOwnerSignup reports whether anyone but the author is still signed up.
func (e *Event) HasNonOwnerSignup() bool {
	for uid, s := range e.Signups {
		if uid != e.AuthorID && s.Status != SignupCancelled {
			return true
		}
	}
	return false
}

func (e *Event) SignupUserIDs() []int64 {
	ids := make([]int64, 0, len(e.Signups))
	for uid := range e.Signups {
		ids = append(ids, uid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy so snapshots handed to subscribers are not
// affected by later mutations.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Signups = make(map[int64]*Signup, len(e.Signups))
	for uid, s := range e.Signups {
		cs := *s
		c.Signups[uid] = &cs
	}
	return &c
}

// SortEvents orders by start date, then id.
func SortEvents(events []*Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartDate.Before(events[j].StartDate)
	})
}
