package model

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/sqldao"
	"github.com/Slm0nB/play-together-api-sub000/view"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	store, err := sqldao.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, hub.New())
}

func createUsers(t *testing.T, m *Model, names ...string) []*common.User {
	t.Helper()
	users := make([]*common.User, 0, len(names))
	for _, name := range names {
		u, err := m.Accounts.CreateUser(context.Background(), name, name+"@example.com")
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func draft(title string, friendsOnly bool, start time.Duration) *EventDraft {
	begin := time.Now().Add(start)
	return &EventDraft{
		Title:       title,
		FriendsOnly: friendsOnly,
		StartDate:   begin,
		EndDate:     begin.Add(2 * time.Hour),
	}
}

// notifications records everything published on the hub.
type notifications struct {
	mu        sync.Mutex
	events    []*hub.EventChanged
	signups   []*hub.SignupChanged
	relations []*hub.RelationChanged
	users     []*hub.UserChanged
}

func recordHub(t *testing.T, h *hub.Hub) *notifications {
	n := &notifications{}
	subs := []interface{ Dispose() }{
		h.Events.Subscribe(func(e *hub.EventChanged) {
			n.mu.Lock()
			n.events = append(n.events, e)
			n.mu.Unlock()
		}),
		h.Signups.Subscribe(func(s *hub.SignupChanged) {
			n.mu.Lock()
			n.signups = append(n.signups, s)
			n.mu.Unlock()
		}),
		h.Relations.Subscribe(func(r *hub.RelationChanged) {
			n.mu.Lock()
			n.relations = append(n.relations, r)
			n.mu.Unlock()
		}),
		h.Users.Subscribe(func(u *hub.UserChanged) {
			n.mu.Lock()
			n.users = append(n.users, u)
			n.mu.Unlock()
		}),
	}
	t.Cleanup(func() {
		for _, s := range subs {
			s.Dispose()
		}
	})
	return n
}

func (n *notifications) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events, n.signups, n.relations, n.users = nil, nil, nil, nil
}

func (n *notifications) eventActions(action common.EventAction) int {
	count := 0
	for _, e := range n.events {
		if e.Action == action {
			count++
		}
	}
	return count
}

func (n *notifications) cancelledSignups() []*hub.SignupChanged {
	var list []*hub.SignupChanged
	for _, s := range n.signups {
		if s.Signup.Status == common.SignupCancelled {
			list = append(list, s)
		}
	}
	return list
}

type deltaRecorder struct {
	mu     sync.Mutex
	deltas []*view.Delta
}

func (r *deltaRecorder) observe(d *view.Delta) {
	r.mu.Lock()
	r.deltas = append(r.deltas, d)
	r.mu.Unlock()
}

func (r *deltaRecorder) all() []*view.Delta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*view.Delta(nil), r.deltas...)
}

func eventIDs(events []*common.Event) []int64 {
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
