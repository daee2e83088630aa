// Package model holds the domain operations. Every operation commits through
// the store first and then publishes what changed to the hub.
package model

import (
	"context"
	"time"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/idgen"
	"github.com/Slm0nB/play-together-api-sub000/view"
)

type Model struct {
	store     api.Store
	hub       *hub.Hub
	ids       *idgen.Generator
	views     *view.Registry
	now       func() time.Time
	Accounts  *AccountManager
	Relations *RelationManager
	Events    *EventManager
}

type Option func(*Model)

// WithGenerator sets the id generator. Each process sharing a store needs
// its own generator id.
func WithGenerator(g *idgen.Generator) Option {
	return func(m *Model) {
		m.ids = g
	}
}

// WithViewOptions passes options to every view the model creates.
func WithViewOptions(opts ...view.Option) Option {
	return func(m *Model) {
		m.views = view.NewRegistry(m.hub, m.Events, opts...)
	}
}

func New(store api.Store, h *hub.Hub, opts ...Option) *Model {

	m := &Model{
		store: store,
		hub:   h,
		ids:   idgen.New(1),
		now:   time.Now,
	}

	m.Accounts = newAccountManager(m)
	m.Relations = newRelationManager(m)
	m.Events = newEventManager(m)
	m.views = view.NewRegistry(h, m.Events)

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Model) Hub() *hub.Hub {
	return m.hub
}

func (m *Model) Views() *view.Registry {
	return m.views
}

func (m *Model) Store() api.Store {
	return m.store
}

// SubscribeEvents attaches fn to the live view for fc. The view is seeded
// with the full query result when it is not live yet.
func (m *Model) SubscribeEvents(ctx context.Context, fc *filter.Context, fn func(*view.Delta)) (*view.Handle, error) {
	return m.views.Subscribe(ctx, fc, m.loadView, fn)
}

// loadView fills in the viewer's friends from persistence and runs the
// full query for fc.
func (m *Model) loadView(ctx context.Context, fc *filter.Context) ([]*common.Event, error) {

	fc.FriendIDs = make(map[int64]struct{})

	if fc.Authenticated() {
		friends, err := m.Relations.GetFriends(ctx, fc.ViewerID)
		if err != nil {
			return nil, err
		}
		for _, id := range friends {
			fc.AddFriend(id)
		}
	}

	return m.Events.LoadVisibleEvents(ctx, fc)
}

func (m *Model) currentTime() time.Time {
	return m.now().UTC().Truncate(time.Millisecond)
}
