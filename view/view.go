// Package view maintains per-filter materialized event sets that follow the
// hub's change notifications and emit add/remove deltas.
package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/broadcast"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
)

const (
	DefaultFetchTimeout = 5 * time.Second
	loadTimeout         = 30 * time.Second
)

type Delta struct {
	Added   []*common.Event
	Removed []*common.Event

	seq uint64
}

func (d *Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Fetcher loads the events created or joined by a user within a period.
type Fetcher interface {
	FetchFriendEvents(ctx context.Context, friendID int64, from, to time.Time) ([]*common.Event, error)
}

type FetcherFunc func(ctx context.Context, friendID int64, from, to time.Time) ([]*common.Event, error)

func (f FetcherFunc) FetchFriendEvents(ctx context.Context, friendID int64, from, to time.Time) ([]*common.Event, error) {
	return f(ctx, friendID, from, to)
}

// UpstreamFetchFailure is logged when loading a new friend's events fails.
// The view keeps going as if nothing was found and retries later.
type UpstreamFetchFailure struct {
	ViewerID int64
	FriendID int64
	Err      error
}

func (f *UpstreamFetchFailure) Error() string {
	return fmt.Sprintf("fetching events of friend %d for viewer %d: %v", f.FriendID, f.ViewerID, f.Err)
}

func (f *UpstreamFetchFailure) Unwrap() error {
	return f.Err
}

type Option func(*View)

func WithFetchTimeout(d time.Duration) Option {
	return func(v *View) {
		v.fetchTimeout = d
	}
}

type View struct {
	hub          *hub.Hub
	load         Loader
	fetcher      Fetcher
	fetchTimeout time.Duration
	viewerID     int64
	base         *filter.Context
	channel      *broadcast.Channel[*Delta]
	logger       zerolog.Logger

	// upstream is only touched by the channel lifecycle hooks
	upstream []interface{ Dispose() }

	mu       sync.Mutex
	active   bool
	seeding  bool
	backlog  []func()
	loadErr  error
	fc       *filter.Context
	current  map[int64]*common.Event
	pending  map[int64]struct{}
	seq      uint64
	queue    []*Delta
	emitting bool
}

// New creates an inactive view. Every activation seeds the view with load,
// called with a fresh copy of fc. The loader may refresh its friend set.
func New(h *hub.Hub, fc *filter.Context, load Loader, fetcher Fetcher, opts ...Option) *View {
	v := &View{
		hub:          h,
		load:         load,
		fetcher:      fetcher,
		fetchTimeout: DefaultFetchTimeout,
		viewerID:     fc.ViewerID,
		base:         fc.Clone(),
		fc:           fc.Clone(),
		pending:      make(map[int64]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = log.With().Str("view", fc.Key()).Logger()
	v.channel = broadcast.New[*Delta](
		broadcast.WithName("view#"+fc.Key()),
		broadcast.WithLifecycle(v.setup, v.teardown),
	)
	return v
}

// Subscribe registers fn for deltas. fn first receives the current set as
// an added delta, unless it is empty. fn may call back into operations that
// change this view; the resulting deltas are delivered after fn returns.
func (v *View) Subscribe(fn func(*Delta)) *broadcast.Subscription[*Delta] {

	out := &outbox{fn: fn, busy: true, logger: v.logger}
	sub := v.channel.Subscribe(out.push)

	// blocks while another subscriber is still running setup
	v.channel.Active()

	v.mu.Lock()
	snapshot := v.eventsLocked()
	seq := v.seq
	v.mu.Unlock()

	out.start(seq, snapshot)
	return sub
}

func (v *View) Subscribers() int {
	return v.channel.Subscribers()
}

// CurrentEvents returns the materialized set ordered by start date.
func (v *View) CurrentEvents() []*common.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.eventsLocked()
}

// Context returns a copy of the view's filter context, friend set included.
func (v *View) Context() *filter.Context {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fc.Clone()
}

func (v *View) eventsLocked() []*common.Event {
	events := make([]*common.Event, 0, len(v.current))
	for _, e := range v.current {
		events = append(events, e)
	}
	common.SortEvents(events)
	return events
}

// loadError returns the error of the last activation's load, if any.
func (v *View) loadError() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadErr
}

func (v *View) setup() {

	// Listen before loading. Whatever arrives meanwhile is held back and
	// applied on top of the loaded set.
	v.mu.Lock()
	v.active = true
	v.seeding = true
	v.backlog = nil
	v.loadErr = nil
	v.fc = v.base.Clone()
	v.current = make(map[int64]*common.Event)
	v.pending = make(map[int64]struct{})
	v.mu.Unlock()

	v.upstream = []interface{ Dispose() }{
		v.hub.Events.Subscribe(v.onEvent),
		v.hub.Signups.Subscribe(v.onSignup),
		v.hub.Relations.Subscribe(v.onRelation),
	}

	fc := v.base.Clone()
	var initial []*common.Event
	var err error
	if v.load != nil {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		initial, err = v.load(ctx, fc)
		cancel()
	}

	v.mu.Lock()
	if err != nil {
		v.loadErr = err
		v.logger.Error().Err(err).Msg("view load failed")
	} else {
		v.fc = fc
		for _, e := range initial {
			if filter.Match(e, v.fc) {
				v.current[e.ID] = e
			}
		}
	}
	v.mu.Unlock()

	held := 0
	for {
		v.mu.Lock()
		if len(v.backlog) == 0 {
			v.seeding = false
			v.mu.Unlock()
			break
		}
		next := v.backlog[0]
		v.backlog = v.backlog[1:]
		v.mu.Unlock()
		next()
		held++
	}

	v.mu.Lock()
	size := len(v.current)
	v.mu.Unlock()
	v.logger.Debug().Int("events", size).Int("replayed", held).Msg("view activated")
}

func (v *View) teardown() {
	for _, s := range v.upstream {
		s.Dispose()
	}
	v.upstream = nil

	v.mu.Lock()
	v.active = false
	v.seeding = false
	v.backlog = nil
	v.current = nil
	v.queue = nil
	v.mu.Unlock()
	v.logger.Debug().Msg("view deactivated")
}

// hold queues apply while the view is being seeded and reports whether it
// did so.
func (v *View) hold(apply func()) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.seeding {
		return false
	}
	v.backlog = append(v.backlog, apply)
	return true
}

// commitLocked queues d and releases v.mu. Deltas are published in the
// order they were queued, by whichever caller found nobody else emitting.
func (v *View) commitLocked(d *Delta) {
	if d.Empty() {
		v.mu.Unlock()
		return
	}
	v.seq++
	d.seq = v.seq
	v.queue = append(v.queue, d)
	if v.emitting {
		v.mu.Unlock()
		return
	}

	v.emitting = true
	for len(v.queue) > 0 {
		next := v.queue[0]
		v.queue = v.queue[1:]
		v.mu.Unlock()
		v.channel.Publish(next)
		v.mu.Lock()
	}
	v.emitting = false
	v.mu.Unlock()
}

// testLocked adds or removes e depending on whether it matches now.
func (v *View) testLocked(e *common.Event, d *Delta) {
	_, present := v.current[e.ID]
	match := filter.Match(e, v.fc)

	switch {
	case match && !present:
		v.current[e.ID] = e
		d.Added = append(d.Added, e)
	case match && present:
		v.current[e.ID] = e
	case !match && present:
		delete(v.current, e.ID)
		d.Removed = append(d.Removed, e)
	}
}

// shrinkLocked re-runs the filter over the held set. It never adds.
func (v *View) shrinkLocked(d *Delta) {
	for id, e := range v.current {
		if !filter.Match(e, v.fc) {
			delete(v.current, id)
			d.Removed = append(d.Removed, e)
		}
	}
	common.SortEvents(d.Removed)
}

func (v *View) onEvent(n *hub.EventChanged) {
	if n.RecipientUserID != 0 && n.RecipientUserID != v.viewerID {
		return
	}
	if !v.hold(func() { v.applyEvent(n) }) {
		v.applyEvent(n)
	}
}

func (v *View) applyEvent(n *hub.EventChanged) {

	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return
	}

	d := &Delta{}
	if n.Action == common.EventDeleted {
		if old, ok := v.current[n.Event.ID]; ok {
			delete(v.current, n.Event.ID)
			d.Removed = append(d.Removed, old)
		}
	} else {
		v.testLocked(n.Event, d)
	}
	retry := v.isPendingLocked(n.ChangingUser)
	v.commitLocked(d)

	if retry {
		v.fetchAndMerge(n.ChangingUser)
	}
}

func (v *View) onSignup(n *hub.SignupChanged) {
	if !v.hold(func() { v.applySignup(n) }) {
		v.applySignup(n)
	}
}

func (v *View) applySignup(n *hub.SignupChanged) {

	uid := n.Signup.UserID

	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return
	}

	relevant := uid == v.viewerID || (v.fc.DependsOnFriendSignups() && v.fc.IsFriend(uid))
	if !relevant {
		v.mu.Unlock()
		return
	}

	event := n.Event
	if event == nil {
		event = v.patchedLocked(n.Signup)
	}

	d := &Delta{}
	if n.Signup.Status == common.SignupCancelled {
		if event != nil {
			if _, ok := v.current[event.ID]; ok {
				v.current[event.ID] = event
			}
		}
		v.shrinkLocked(d)
	} else if event != nil {
		v.testLocked(event, d)
	}
	retry := v.isPendingLocked(uid)
	v.commitLocked(d)

	if retry {
		v.fetchAndMerge(uid)
	}
}

// patchedLocked applies a signup to the held copy of its event, for
// notifications that carry no event snapshot.
func (v *View) patchedLocked(s *common.Signup) *common.Event {
	held, ok := v.current[s.EventID]
	if !ok {
		return nil
	}
	e := held.Clone()
	cs := *s
	e.Signups[s.UserID] = &cs
	return e
}

func (v *View) onRelation(n *hub.RelationChanged) {
	if !n.Concerns(v.viewerID) {
		return
	}
	if !v.hold(func() { v.applyRelation(n) }) {
		v.applyRelation(n)
	}
}

func (v *View) applyRelation(n *hub.RelationChanged) {
	friendID, err := n.Relation.Counterpart(v.viewerID)
	if err != nil {
		return
	}
	mutual := n.Relation.Status.MutualFriends()

	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return
	}

	tracked := v.fc.IsFriend(friendID)

	switch {
	case mutual && !tracked:
		v.fc.AddFriend(friendID)
		v.mu.Unlock()
		v.logger.Debug().Int64("friend_id", friendID).Msg("tracking new friend")
		v.fetchAndMerge(friendID)

	case !mutual && tracked:
		v.fc.RemoveFriend(friendID)
		delete(v.pending, friendID)
		d := &Delta{}
		v.shrinkLocked(d)
		v.commitLocked(d)
		v.logger.Debug().Int64("friend_id", friendID).Int("removed", len(d.Removed)).Msg("stopped tracking friend")

	case mutual && tracked && v.isPendingLocked(friendID):
		v.mu.Unlock()
		v.fetchAndMerge(friendID)

	default:
		v.mu.Unlock()
	}
}

func (v *View) isPendingLocked(userID int64) bool {
	if userID == 0 {
		return false
	}
	_, ok := v.pending[userID]
	return ok
}

// fetchAndMerge loads the events of a friend without holding the view lock
// and merges those that match. A failed fetch marks the friend as pending.
func (v *View) fetchAndMerge(friendID int64) {

	v.mu.Lock()
	from, to := v.fc.From, v.fc.To
	v.mu.Unlock()

	var events []*common.Event
	var err error
	if v.fetcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), v.fetchTimeout)
		events, err = v.fetcher.FetchFriendEvents(ctx, friendID, from, to)
		cancel()
	}

	v.mu.Lock()
	if !v.active {
		v.mu.Unlock()
		return
	}

	if err != nil {
		fault := &UpstreamFetchFailure{ViewerID: v.viewerID, FriendID: friendID, Err: err}
		v.logger.Warn().Err(fault).Msg("friend events fetch failed, will retry")
		if v.fc.IsFriend(friendID) {
			v.pending[friendID] = struct{}{}
		}
		v.mu.Unlock()
		return
	}
	delete(v.pending, friendID)

	d := &Delta{}
	for _, e := range events {
		if !filter.Match(e, v.fc) {
			continue
		}
		if _, present := v.current[e.ID]; !present {
			d.Added = append(d.Added, e)
		}
		v.current[e.ID] = e
	}
	common.SortEvents(d.Added)
	v.commitLocked(d)
}

// Pending lists friends whose events could not be loaded yet.
func (v *View) Pending() []int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids := make([]int64, 0, len(v.pending))
	for id := range v.pending {
		ids = append(ids, id)
	}
	return ids
}

// outbox delivers deltas to one subscriber, one at a time and in order.
// Deltas already covered by the subscriber's snapshot are dropped.
type outbox struct {
	fn     func(*Delta)
	logger zerolog.Logger

	mu    sync.Mutex
	busy  bool
	after uint64
	held  []*Delta
}

func (o *outbox) push(d *Delta) {
	o.mu.Lock()
	o.held = append(o.held, d)
	if o.busy {
		o.mu.Unlock()
		return
	}
	o.busy = true
	o.mu.Unlock()
	o.drain()
}

func (o *outbox) start(after uint64, snapshot []*common.Event) {
	o.mu.Lock()
	o.after = after
	o.mu.Unlock()

	if len(snapshot) > 0 {
		o.call(&Delta{Added: snapshot})
	}
	o.drain()
}

func (o *outbox) drain() {
	for {
		o.mu.Lock()
		if len(o.held) == 0 {
			o.busy = false
			o.mu.Unlock()
			return
		}
		d := o.held[0]
		o.held = o.held[1:]
		stale := d.seq <= o.after
		o.mu.Unlock()

		if !stale {
			o.call(d)
		}
	}
}

func (o *outbox) call(d *Delta) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("view subscriber failed")
		}
	}()
	o.fn(d)
}
