// Package hub holds the process-wide change channels that domain
// operations publish into after committing a mutation.
package hub

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/broadcast"
)

type Hub struct {
	Events    *broadcast.Channel[*EventChanged]
	Signups   *broadcast.Channel[*SignupChanged]
	Relations *broadcast.Channel[*RelationChanged]
	Users     *broadcast.Channel[*UserChanged]

	statsMu sync.Mutex
	stats   map[int64]*statsEntry
}

type statsEntry struct {
	channel *broadcast.Channel[*UserStatistics]
	refs    int
}

func New() *Hub {
	return &Hub{
		Events:    broadcast.New[*EventChanged](broadcast.WithName("events")),
		Signups:   broadcast.New[*SignupChanged](broadcast.WithName("signups")),
		Relations: broadcast.New[*RelationChanged](broadcast.WithName("relations")),
		Users:     broadcast.New[*UserChanged](broadcast.WithName("users")),
		stats:     make(map[int64]*statsEntry),
	}
}

// Publish dispatches n to the channel of its variant.
func (h *Hub) Publish(n Notification) {
	switch v := n.(type) {
	case *EventChanged:
		h.PublishEvent(v)
	case *SignupChanged:
		h.PublishSignup(v)
	case *RelationChanged:
		h.PublishRelation(v)
	case *UserChanged:
		h.PublishUser(v)
	default:
		panic(fmt.Sprintf("hub: unknown notification %T", n))
	}
}

func (h *Hub) PublishEvent(n *EventChanged) {
	log.Debug().Int64("event_id", n.Event.ID).Stringer("action", n.Action).
		Int64("changing_user", n.ChangingUser).Msg("publish event change")
	h.Events.Publish(n)
}

func (h *Hub) PublishSignup(n *SignupChanged) {
	log.Debug().Int64("event_id", n.Signup.EventID).Int64("user_id", n.Signup.UserID).
		Stringer("status", n.Signup.Status).Msg("publish signup change")
	h.Signups.Publish(n)
}

func (h *Hub) PublishRelation(n *RelationChanged) {
	log.Debug().Stringer("relation", n.Relation).Int64("active_user", n.ActiveUser).
		Stringer("action", n.ActiveUserAction).Msg("publish relation change")
	h.Relations.Publish(n)
}

func (h *Hub) PublishUser(n *UserChanged) {
	log.Debug().Int64("user_id", n.User.ID).Stringer("action", n.Action).Msg("publish user change")
	h.Users.Publish(n)
}

// UserStatistics returns the statistics channel of a user, or nil when
// nobody is watching that user. Only SubscribeUserStatistics creates
// channels.
func (h *Hub) UserStatistics(userID int64) *broadcast.Channel[*UserStatistics] {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	if entry, ok := h.stats[userID]; ok {
		return entry.channel
	}
	return nil
}

func (h *Hub) newStatsEntry(userID int64) *statsEntry {
	entry := &statsEntry{
		channel: broadcast.New[*UserStatistics](
			broadcast.WithName(fmt.Sprintf("stats#%d", userID)),
			broadcast.WithReplay(1),
		),
	}
	h.stats[userID] = entry
	return entry
}

// SubscribeUserStatistics watches the statistics of a user. The registry
// entry lives until the last such subscription is disposed.
func (h *Hub) SubscribeUserStatistics(userID int64, fn func(*UserStatistics)) *StatsSubscription {

	h.statsMu.Lock()
	entry, ok := h.stats[userID]
	if !ok {
		entry = h.newStatsEntry(userID)
	}
	entry.refs++
	h.statsMu.Unlock()

	return &StatsSubscription{
		hub:    h,
		userID: userID,
		entry:  entry,
		inner:  entry.channel.Subscribe(fn),
	}
}

// PublishUserStatistics delivers stats if someone is watching that user.
func (h *Hub) PublishUserStatistics(stats *UserStatistics) bool {
	ch := h.UserStatistics(stats.UserID)
	if ch == nil {
		return false
	}
	ch.Publish(stats)
	return true
}

// WatchedUsers lists the users with a live statistics channel.
func (h *Hub) WatchedUsers() []int64 {
	h.statsMu.Lock()
	ids := make([]int64, 0, len(h.stats))
	for id := range h.stats {
		ids = append(ids, id)
	}
	h.statsMu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (h *Hub) release(userID int64, entry *statsEntry) {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	entry.refs--
	if entry.refs == 0 && h.stats[userID] == entry {
		delete(h.stats, userID)
	}
}

type StatsSubscription struct {
	hub    *Hub
	userID int64
	entry  *statsEntry
	inner  *broadcast.Subscription[*UserStatistics]
	once   sync.Once
}

func (s *StatsSubscription) Dispose() {
	s.once.Do(func() {
		s.inner.Dispose()
		s.hub.release(s.userID, s.entry)
	})
}
