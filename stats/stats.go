// Package stats keeps the per-user statistics channels of the hub fresh.
// Users are only recomputed while someone watches them, which the hub
// signals by the existence of their statistics channel.
package stats

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/relation"
)

const DefaultCron = "* * * * *"

var ErrInvalidCron = errors.New("invalid cron expression")

type Refresher struct {
	model *model.Model
	hub   *hub.Hub
	cron  string
	now   func() time.Time

	mu      sync.Mutex
	dirty   map[int64]struct{}
	running bool

	subs []interface{ Dispose() }
}

// New validates the schedule and starts tracking which watched users
// changed. Close stops the tracking.
func New(m *model.Model, cron string) (*Refresher, error) {

	if cron == "" {
		cron = DefaultCron
	}

	if !gronx.New().IsValid(cron) {
		return nil, ErrInvalidCron
	}

	r := &Refresher{
		model: m,
		hub:   m.Hub(),
		cron:  cron,
		now:   time.Now,
		dirty: make(map[int64]struct{}),
	}

	r.subs = []interface{ Dispose() }{
		r.hub.Events.Subscribe(r.onEvent),
		r.hub.Signups.Subscribe(r.onSignup),
		r.hub.Relations.Subscribe(r.onRelation),
		r.hub.Users.Subscribe(r.onUser),
	}

	return r, nil
}

func (r *Refresher) Close() {
	for _, s := range r.subs {
		s.Dispose()
	}
	r.subs = nil
}

// Compute builds the statistics of userID from persistence.
func (r *Refresher) Compute(ctx context.Context, userID int64) (*hub.UserStatistics, error) {

	events, err := r.model.Events.LoadUserEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	relations, err := r.model.Relations.ListRelations(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	stats := &hub.UserStatistics{UserID: userID, ComputedAt: now}

	for _, e := range events {
		if e.AuthorID == userID {
			stats.CreatedEvents++
		} else if e.HasActiveSignup(userID) {
			stats.JoinedEvents++
		}
		if e.EndDate.After(now) {
			stats.UpcomingEvents++
		}
	}

	for _, rel := range relations {
		status, err := rel.StatusFor(userID)
		if err != nil {
			return nil, err
		}
		switch status {
		case relation.StatusFriends:
			stats.Friends++
		case relation.StatusInvited:
			stats.PendingInvites++
		}
	}

	return stats, nil
}

// Watch subscribes fn to the statistics of userID. The first watcher gets
// them computed right away, later ones receive the last published value.
func (r *Refresher) Watch(ctx context.Context, userID int64, fn func(*hub.UserStatistics)) (*hub.StatsSubscription, error) {

	first := r.hub.UserStatistics(userID) == nil
	sub := r.hub.SubscribeUserStatistics(userID, fn)

	if first {
		stats, err := r.Compute(ctx, userID)
		if err != nil {
			sub.Dispose()
			return nil, err
		}
		r.hub.PublishUserStatistics(stats)
	}

	return sub, nil
}

// Refresh recomputes and publishes the statistics of every watched user
// that changed since the last refresh. Returns how many were published.
func (r *Refresher) Refresh(ctx context.Context) int {

	r.mu.Lock()
	dirty := make([]int64, 0, len(r.dirty))
	for id := range r.dirty {
		dirty = append(dirty, id)
	}
	r.dirty = make(map[int64]struct{})
	r.mu.Unlock()

	sort.Slice(dirty, func(i, j int) bool { return dirty[i] < dirty[j] })

	published := 0
	for _, userID := range dirty {
		if r.hub.UserStatistics(userID) == nil {
			continue
		}
		stats, err := r.Compute(ctx, userID)
		if err != nil {
			log.Error().Err(err).Int64("user", userID).Msg("compute statistics")
			r.markDirty(userID)
			continue
		}
		if r.hub.PublishUserStatistics(stats) {
			published++
		}
	}

	return published
}

// Run refreshes on the cron schedule until ctx is done.
func (r *Refresher) Run(ctx context.Context) {

	log.Info().Str("cron", r.cron).Msg("statistics refresher started")

	for {
		next, err := gronx.NextTickAfter(r.cron, r.now(), false)
		if err != nil {
			log.Error().Err(err).Str("cron", r.cron).Msg("statistics next tick")
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			r.runJob(ctx)
		case <-ctx.Done():
			log.Info().Msg("statistics refresher stopped")
			return
		}
	}
}

func (r *Refresher) runJob(ctx context.Context) {

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	if n := r.Refresh(ctx); n > 0 {
		log.Debug().Int("published", n).Msg("statistics refreshed")
	}
}

// Dirty returns the users waiting for a refresh, sorted.
func (r *Refresher) Dirty() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.dirty))
	for id := range r.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Refresher) markDirty(userIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range userIDs {
		if r.hub.UserStatistics(id) != nil {
			r.dirty[id] = struct{}{}
		}
	}
}

func (r *Refresher) onEvent(n *hub.EventChanged) {
	r.markDirty(n.ChangingUser)
	r.markDirty(n.Event.SignupUserIDs()...)
}

func (r *Refresher) onSignup(n *hub.SignupChanged) {
	r.markDirty(n.Signup.UserID)
	if n.Event != nil {
		r.markDirty(n.Event.AuthorID)
	}
}

func (r *Refresher) onRelation(n *hub.RelationChanged) {
	r.markDirty(n.Relation.UserA, n.Relation.UserB)
}

func (r *Refresher) onUser(n *hub.UserChanged) {
	if n.Action != common.UserDeleted {
		return
	}
	r.mu.Lock()
	delete(r.dirty, n.User.ID)
	r.mu.Unlock()
	r.markDirty(n.FriendsOfUser...)
}
