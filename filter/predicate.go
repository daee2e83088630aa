package filter

import (
	"github.com/Slm0nB/play-together-api-sub000/common"
)

// Visible applies the privacy rules. Friends-only events are shown to their
// author and the author's tracked friends.
func Visible(e *common.Event, c *Context) bool {
	if !e.FriendsOnly {
		return true
	}
	if !c.Authenticated() {
		return false
	}
	return e.AuthorID == c.ViewerID || c.IsFriend(e.AuthorID)
}

// Match reports whether e belongs to the result for c.
func Match(e *common.Event, c *Context) bool {

	if !Visible(e, c) || !e.Overlaps(c.From, c.To) {
		return false
	}

	if narrowed(e, c) {
		return true
	}

	// Include filters only widen when at least one is set
	for _, cr := range c.Include {
		if holds(cr, e, c) {
			return true
		}
	}

	return false
}

// Apply returns the events of the list that match c, keeping their order.
func Apply(events []*common.Event, c *Context) []*common.Event {
	result := make([]*common.Event, 0, len(events))
	for _, e := range events {
		if Match(e, c) {
			result = append(result, e)
		}
	}
	return result
}

func narrowed(e *common.Event, c *Context) bool {
	if len(c.GameIDs) > 0 && !containsID(c.GameIDs, e.GameID) {
		return false
	}
	if len(c.AuthorIDs) > 0 && !containsID(c.AuthorIDs, e.AuthorID) {
		return false
	}
	for _, cr := range c.Only {
		if !holds(cr, e, c) {
			return false
		}
	}
	return true
}

func holds(cr Criterion, e *common.Event, c *Context) bool {
	switch cr {
	case CreatedByMe:
		return c.Authenticated() && e.AuthorID == c.ViewerID
	case JoinedByMe:
		return c.Authenticated() && e.HasActiveSignup(c.ViewerID)
	case CreatedByFriends:
		return c.IsFriend(e.AuthorID)
	case JoinedByFriends:
		for uid, s := range e.Signups {
			if s.Status != common.SignupCancelled && c.IsFriend(uid) {
				return true
			}
		}
	}
	return false
}

func containsID(list []int64, id int64) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
