package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Slm0nB/play-together-api-sub000/broadcast"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
)

// Loader computes the full result for a filter context. It runs on every
// view activation and may fill in the viewer's friends on fc.
type Loader func(ctx context.Context, fc *filter.Context) ([]*common.Event, error)

// Registry shares one view among all subscribers with the same filter key.
type Registry struct {
	hub     *hub.Hub
	fetcher Fetcher
	opts    []Option

	mu    sync.Mutex
	views map[string]*entry
}

type entry struct {
	view      *View
	refs      int
	ready     chan struct{}
	err       error
	keepalive *broadcast.Subscription[*Delta]
}

func NewRegistry(h *hub.Hub, fetcher Fetcher, opts ...Option) *Registry {
	return &Registry{
		hub:     h,
		fetcher: fetcher,
		opts:    opts,
		views:   make(map[string]*entry),
	}
}

type Handle struct {
	registry *Registry
	key      string
	entry    *entry
	sub      *broadcast.Subscription[*Delta]
	once     sync.Once
}

func (h *Handle) View() *View {
	return h.entry.view
}

func (h *Handle) Dispose() {
	h.once.Do(func() {
		h.sub.Dispose()
		h.registry.release(h.key, h.entry)
	})
}

// Subscribe attaches fn to the view for fc, creating and seeding the view
// with load when none is live. Subscribers of a view still loading wait
// for it, or for ctx.
func (r *Registry) Subscribe(ctx context.Context, fc *filter.Context, load Loader, fn func(*Delta)) (*Handle, error) {

	if err := fc.Validate(); err != nil {
		return nil, err
	}
	key := fc.Key()

	r.mu.Lock()
	e, ok := r.views[key]
	if ok {
		e.refs++
	} else {
		e = &entry{
			view:  New(r.hub, fc, load, r.fetcher, r.opts...),
			refs:  1,
			ready: make(chan struct{}),
		}
		r.views[key] = e
	}
	r.mu.Unlock()

	if !ok {
		e.keepalive = e.view.channel.Subscribe(func(*Delta) {})
		e.err = e.view.loadError()
		if e.err != nil {
			r.mu.Lock()
			if r.views[key] == e {
				delete(r.views, key)
			}
			r.mu.Unlock()
		} else {
			log.Debug().Str("view", key).Int("initial", len(e.view.CurrentEvents())).Msg("view created")
		}
		close(e.ready)
	}

	if err := r.wait(ctx, key, e); err != nil {
		return nil, err
	}
	if e.err != nil {
		r.release(key, e)
		return nil, e.err
	}

	return &Handle{
		registry: r,
		key:      key,
		entry:    e,
		sub:      e.view.Subscribe(fn),
	}, nil
}

func (r *Registry) wait(ctx context.Context, key string, e *entry) error {
	select {
	case <-e.ready:
		return nil
	default:
	}
	select {
	case <-e.ready:
		return nil
	case <-ctx.Done():
		r.release(key, e)
		return ctx.Err()
	}
}

func (r *Registry) release(key string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.refs--
	if e.refs > 0 {
		return
	}
	if r.views[key] == e {
		delete(r.views, key)
	}
	e.keepalive.Dispose()
	log.Debug().Str("view", key).Msg("view released")
}

// Live returns the number of live views.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Get returns the live view for fc, if any.
func (r *Registry) Get(fc *filter.Context) *View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.views[fc.Key()]; ok {
		return e.view
	}
	return nil
}
