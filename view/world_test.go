package view

import (
	"context"
	"errors"
	"time"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/relation"
)

var (
	base         = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	errFetchDown = errors.New("fetch unavailable")
)

// world is an in-memory dataset that publishes like the domain layer does.
type world struct {
	hub       *hub.Hub
	events    map[int64]*common.Event
	relations map[[2]int64]*relation.Relation
	failFetch bool
	fetches   int
}

func newWorld() *world {
	return &world{
		hub:       hub.New(),
		events:    make(map[int64]*common.Event),
		relations: make(map[[2]int64]*relation.Relation),
	}
}

func (w *world) FetchFriendEvents(ctx context.Context, friendID int64, from, to time.Time) ([]*common.Event, error) {
	w.fetches++
	if w.failFetch {
		return nil, errFetchDown
	}
	var result []*common.Event
	for _, e := range w.events {
		if (e.AuthorID == friendID || e.HasActiveSignup(friendID)) && e.Overlaps(from, to) {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

func (w *world) friendsOf(userID int64) map[int64]struct{} {
	friends := make(map[int64]struct{})
	for _, r := range w.relations {
		if r.Status.MutualFriends() && r.Involves(userID) {
			other, _ := r.Counterpart(userID)
			friends[other] = struct{}{}
		}
	}
	return friends
}

func (w *world) all() []*common.Event {
	events := make([]*common.Event, 0, len(w.events))
	for _, e := range w.events {
		events = append(events, e)
	}
	common.SortEvents(events)
	return events
}

// expected computes the full query result for fc as of now.
func (w *world) expected(fc *filter.Context) []int64 {
	ctx := fc.Clone()
	ctx.FriendIDs = w.friendsOf(fc.ViewerID)
	return ids(filter.Apply(w.all(), ctx))
}

func (w *world) loader() Loader {
	return func(ctx context.Context, fc *filter.Context) ([]*common.Event, error) {
		fc.FriendIDs = w.friendsOf(fc.ViewerID)
		var events []*common.Event
		for _, e := range filter.Apply(w.all(), fc) {
			events = append(events, e.Clone())
		}
		return events, nil
	}
}

func (w *world) createEvent(id, author int64, friendsOnly bool, startOffset time.Duration) *common.Event {
	e := &common.Event{
		ID:          id,
		AuthorID:    author,
		Title:       "event",
		FriendsOnly: friendsOnly,
		StartDate:   base.Add(startOffset),
		EndDate:     base.Add(startOffset + 2*time.Hour),
		CreatedDate: base,
		Signups:     map[int64]*common.Signup{},
	}
	w.events[id] = e
	w.hub.Publish(&hub.EventChanged{Event: e.Clone(), ChangingUser: author, Action: common.EventCreated})
	w.setSignup(id, author, common.SignupAccepted)
	return e
}

func (w *world) deleteEvent(id int64) {
	e, ok := w.events[id]
	if !ok {
		return
	}
	delete(w.events, id)
	w.hub.Publish(&hub.EventChanged{Event: e.Clone(), ChangingUser: e.AuthorID, Action: common.EventDeleted})
}

func (w *world) setSignup(eventID, userID int64, status common.SignupStatus) {
	e, ok := w.events[eventID]
	if !ok {
		return
	}
	s := common.NewSignup(eventID, userID, status, base)
	if status == common.SignupCancelled {
		delete(e.Signups, userID)
	} else {
		e.Signups[userID] = s
	}
	w.hub.Publish(&hub.SignupChanged{Signup: s, Event: e.Clone()})
}

func (w *world) edit(eventID int64, action common.EventAction, mutate func(*common.Event)) {
	e, ok := w.events[eventID]
	if !ok {
		return
	}
	mutate(e)
	w.hub.Publish(&hub.EventChanged{Event: e.Clone(), ChangingUser: e.AuthorID, Action: action})
}

func (w *world) act(acting, target int64, action relation.Action) {
	a, b := relation.Normalize(acting, target)
	key := [2]int64{a, b}
	r, ok := w.relations[key]
	if !ok {
		r, _ = relation.New(acting, target)
		w.relations[key] = r
	}
	status, err := relation.ApplyAction(r, acting, action)
	if err != nil {
		panic(err)
	}
	r.Status = status
	snapshot := *r
	w.hub.Publish(&hub.RelationChanged{Relation: &snapshot, ActiveUser: acting,
		ActiveUserAction: action, TargetUser: target})
}

func (w *world) befriend(u1, u2 int64) {
	w.act(u1, u2, relation.Invite)
	w.act(u2, u1, relation.Accept)
}

func ids(events []*common.Event) []int64 {
	result := make([]int64, 0, len(events))
	for _, e := range events {
		result = append(result, e.ID)
	}
	return result
}

// recorder collects the deltas a subscriber receives.
type recorder struct {
	deltas []*Delta
}

func (r *recorder) observe(d *Delta) {
	r.deltas = append(r.deltas, d)
}

func (r *recorder) last() *Delta {
	if len(r.deltas) == 0 {
		return nil
	}
	return r.deltas[len(r.deltas)-1]
}

func (r *recorder) reset() {
	r.deltas = nil
}
