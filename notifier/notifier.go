// Package notifier turns hub notifications into push messages. Changes are
// held for a short window so that bursts about the same thing collapse into
// the last one.
package notifier

import (
	"context"
	"fmt"
	"time"

	observer "github.com/imkira/go-observer"
	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/relation"
	"github.com/Slm0nB/play-together-api-sub000/utils"
)

const DefaultWindow = 20 * time.Second

type kind int

const (
	friendRequest kind = iota
	newFriend
	eventInvitation
	eventCancelled
	newSignup
)

// pending is a push waiting for the window to close.
type pending struct {
	kind      kind
	recipient int64
	actor     int64
	event     *common.Event
}

type Notifier struct {
	model   *model.Model
	pusher  Pusher
	window  time.Duration
	signals observer.Property
	stream  observer.Stream
	queue   *utils.Queue[*pending]
	subs    []interface{ Dispose() }
}

func New(m *model.Model, pusher Pusher, window time.Duration) *Notifier {

	if window <= 0 {
		window = DefaultWindow
	}

	n := &Notifier{
		model:   m,
		pusher:  pusher,
		window:  window,
		signals: observer.NewProperty(nil),
		queue:   utils.NewQueue[*pending](),
	}
	n.stream = n.signals.Observe()

	h := m.Hub()
	n.subs = []interface{ Dispose() }{
		h.Events.Subscribe(func(e *hub.EventChanged) { n.signals.Update(e) }),
		h.Signups.Subscribe(func(s *hub.SignupChanged) { n.signals.Update(s) }),
		h.Relations.Subscribe(func(r *hub.RelationChanged) { n.signals.Update(r) }),
	}

	return n
}

func (n *Notifier) Close() {
	for _, s := range n.subs {
		s.Dispose()
	}
	n.subs = nil
}

// Pending returns how many pushes wait for the next flush.
func (n *Notifier) Pending() int {
	return n.queue.Len()
}

// Run processes notifications and flushes every window until ctx is done.
func (n *Notifier) Run(ctx context.Context) {

	ticker := time.NewTicker(n.window)
	defer ticker.Stop()

	log.Info().Dur("window", n.window).Msg("notifier started")

	for {
		if !n.receiveSignals(ctx, n.stream, ticker.C) {
			log.Info().Msg("notifier stopped")
			return
		}
	}
}

// receiveSignals returns false once ctx is done. A panic while handling a
// signal is logged and the loop goes on.
func (n *Notifier) receiveSignals(ctx context.Context, stream observer.Stream, tickC <-chan time.Time) (alive bool) {

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("notifier signal handling failed")
			alive = true
		}
	}()

	for {
		select {
		case <-stream.Changes():
			stream.Next()
			n.process(stream.Value())

		case <-tickC:
			n.Flush(ctx)

		case <-ctx.Done():
			return false
		}
	}
}

func (n *Notifier) process(signal interface{}) {
	switch s := signal.(type) {
	case *hub.RelationChanged:
		n.processRelation(s)
	case *hub.SignupChanged:
		n.processSignup(s)
	case *hub.EventChanged:
		n.processEvent(s)
	}
}

func relationKey(r *relation.Relation) string {
	return fmt.Sprintf("relation#%v#%v", r.UserA, r.UserB)
}

func signupKey(eventID, userID int64) string {
	return fmt.Sprintf("signup#%v#%v", eventID, userID)
}

func (n *Notifier) processRelation(s *hub.RelationChanged) {

	key := relationKey(s.Relation)

	switch {
	case s.Relation.Status.MutualFriends():
		n.queue.AddWithKey(key, &pending{kind: newFriend, recipient: s.TargetUser, actor: s.ActiveUser})
	case s.ActiveUserAction == relation.Invite:
		n.queue.AddWithKey(key, &pending{kind: friendRequest, recipient: s.TargetUser, actor: s.ActiveUser})
	default:
		// anything else withdraws the pending announcement
		n.queue.Cancel(key)
	}
}

func (n *Notifier) processSignup(s *hub.SignupChanged) {

	if s.Event == nil || s.Signup.UserID == s.Event.AuthorID {
		return
	}

	key := signupKey(s.Signup.EventID, s.Signup.UserID)

	switch s.Signup.Status {
	case common.SignupInvited:
		n.queue.AddWithKey(key, &pending{kind: eventInvitation, recipient: s.Signup.UserID,
			actor: s.Event.AuthorID, event: s.Event})
	case common.SignupAccepted, common.SignupTentative:
		n.queue.AddWithKey(key, &pending{kind: newSignup, recipient: s.Event.AuthorID,
			actor: s.Signup.UserID, event: s.Event})
	case common.SignupCancelled:
		n.queue.Cancel(key)
	}
}

func (n *Notifier) processEvent(s *hub.EventChanged) {

	if s.Action != common.EventDeleted {
		return
	}

	for _, uid := range s.Event.SignupUserIDs() {
		if uid == s.Event.AuthorID {
			continue
		}
		key := signupKey(s.Event.ID, uid)
		n.queue.Cancel(key)
		n.queue.AddWithKey(key, &pending{kind: eventCancelled, recipient: uid,
			actor: s.ChangingUser, event: s.Event})
	}
}

// Flush sends every pending push. Recipients without a push token are
// skipped.
func (n *Notifier) Flush(ctx context.Context) int {

	sent := 0

	for {
		p, ok := n.queue.Remove()
		if !ok {
			break
		}

		push, err := n.compose(ctx, p)
		if err != nil {
			log.Warn().Err(err).Int64("user", p.recipient).Msg("compose push")
			continue
		}
		if push == nil {
			continue
		}

		if err := n.pusher.Push(ctx, push); err != nil {
			log.Error().Err(err).Int64("user", p.recipient).Msg("push failed")
			continue
		}
		sent++
	}

	return sent
}

func (n *Notifier) compose(ctx context.Context, p *pending) (*Push, error) {

	recipient, err := n.model.Accounts.LoadUser(ctx, p.recipient)
	if err != nil {
		return nil, err
	}

	if recipient.PushToken == "" {
		return nil, nil
	}

	actorName := "Someone"
	if actor, err := n.model.Accounts.LoadUser(ctx, p.actor); err == nil {
		actorName = actor.Name
	}

	push := &Push{UserID: recipient.ID, Token: recipient.PushToken, TTL: GcmMaxTTL}

	switch p.kind {
	case friendRequest:
		push.Title = "Friend request"
		push.Body = fmt.Sprintf("%v wants to be your friend", actorName)
		push.CollapseKey = "friends"
	case newFriend:
		push.Title = "New friend"
		push.Body = fmt.Sprintf("%v and you are now friends", actorName)
		push.CollapseKey = "friends"
	case eventInvitation:
		push.Title = p.event.Title
		push.Body = fmt.Sprintf("%v invited you", actorName)
		push.TTL = eventTTL(p.event)
	case eventCancelled:
		push.Title = p.event.Title
		push.Body = "This event has been cancelled"
		push.TTL = eventTTL(p.event)
	case newSignup:
		push.Title = p.event.Title
		push.Body = fmt.Sprintf("%v joined", actorName)
		push.TTL = eventTTL(p.event)
	}

	return push, nil
}

// eventTTL keeps event pushes alive until the event ends.
func eventTTL(e *common.Event) uint {
	left := time.Until(e.EndDate)
	if left <= 0 {
		return 1
	}
	return utils.MinUint(uint(left/time.Second), GcmMaxTTL)
}
