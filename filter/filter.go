// Package filter decides which events a viewer can see and which of those
// match the viewer's query.
package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrConflictingCriteria = errors.New("criterion used both as only and include filter")
	ErrInvalidCriterion    = errors.New("invalid criterion")
	ErrInvalidDateRange    = errors.New("invalid date range")
)

type Criterion int

const (
	CreatedByMe Criterion = iota
	JoinedByMe
	CreatedByFriends
	JoinedByFriends
)

var criterionNames = [...]string{"CreatedByMe", "JoinedByMe", "CreatedByFriends", "JoinedByFriends"}

func (c Criterion) String() string {
	if c < 0 || int(c) >= len(criterionNames) {
		return fmt.Sprintf("Criterion(%d)", int(c))
	}
	return criterionNames[c]
}

func ParseCriterion(s string) (Criterion, error) {
	for i, name := range criterionNames {
		if strings.EqualFold(name, s) {
			return Criterion(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCriterion, s)
}

// Context is what a viewer is asking for. ViewerID 0 means unauthenticated.
type Context struct {
	ViewerID  int64
	FriendIDs map[int64]struct{}
	From      time.Time
	To        time.Time
	Only      []Criterion
	Include   []Criterion
	GameIDs   []int64
	AuthorIDs []int64
}

func (c *Context) Authenticated() bool {
	return c.ViewerID != 0
}

func (c *Context) IsFriend(userID int64) bool {
	_, ok := c.FriendIDs[userID]
	return ok
}

func (c *Context) AddFriend(userID int64) {
	if c.FriendIDs == nil {
		c.FriendIDs = make(map[int64]struct{})
	}
	c.FriendIDs[userID] = struct{}{}
}

func (c *Context) RemoveFriend(userID int64) {
	delete(c.FriendIDs, userID)
}

func (c *Context) Friends() []int64 {
	ids := make([]int64, 0, len(c.FriendIDs))
	for id := range c.FriendIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DependsOnFriendSignups reports whether a friend joining or leaving an
// event can change the result.
func (c *Context) DependsOnFriendSignups() bool {
	for _, cr := range c.Only {
		if cr == JoinedByFriends {
			return true
		}
	}
	for _, cr := range c.Include {
		if cr == JoinedByFriends {
			return true
		}
	}
	return false
}

func (c *Context) Validate() error {
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return ErrInvalidDateRange
	}
	for _, o := range c.Only {
		if o < CreatedByMe || o > JoinedByFriends {
			return ErrInvalidCriterion
		}
		for _, i := range c.Include {
			if o == i {
				return fmt.Errorf("%w: %v", ErrConflictingCriteria, o)
			}
		}
	}
	for _, i := range c.Include {
		if i < CreatedByMe || i > JoinedByFriends {
			return ErrInvalidCriterion
		}
	}
	return nil
}

// Clone copies the context including its friend set.
func (c *Context) Clone() *Context {
	n := *c
	n.FriendIDs = make(map[int64]struct{}, len(c.FriendIDs))
	for id := range c.FriendIDs {
		n.FriendIDs[id] = struct{}{}
	}
	n.Only = append([]Criterion(nil), c.Only...)
	n.Include = append([]Criterion(nil), c.Include...)
	n.GameIDs = append([]int64(nil), c.GameIDs...)
	n.AuthorIDs = append([]int64(nil), c.AuthorIDs...)
	return &n
}

// Key identifies contexts that produce the same view. The friend set is
// derived from the viewer and is not part of it.
func (c *Context) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "v=%d", c.ViewerID)
	if !c.From.IsZero() {
		fmt.Fprintf(&b, ";from=%d", c.From.UnixMilli())
	}
	if !c.To.IsZero() {
		fmt.Fprintf(&b, ";to=%d", c.To.UnixMilli())
	}
	writeCriteria(&b, "only", c.Only)
	writeCriteria(&b, "include", c.Include)
	writeIDs(&b, "game", c.GameIDs)
	writeIDs(&b, "author", c.AuthorIDs)
	return b.String()
}

func writeCriteria(b *strings.Builder, name string, list []Criterion) {
	if len(list) == 0 {
		return
	}
	sorted := append([]Criterion(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	fmt.Fprintf(b, ";%s=%v", name, sorted)
}

func writeIDs(b *strings.Builder, name string, list []int64) {
	if len(list) == 0 {
		return
	}
	sorted := append([]int64(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	fmt.Fprintf(b, ";%s=%v", name, sorted)
}
