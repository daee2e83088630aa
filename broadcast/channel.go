// Package broadcast implements a reference-counted multicast channel.
//
// A Channel delivers every published message synchronously to its current
// observers. The first subscriber activates the channel (running the setup
// hook) and the last one to leave deactivates it (running teardown).
package broadcast

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/twinj/uuid"
)

type Observer[T any] func(T)

// ObserverFault is a panic recovered while delivering a message.
type ObserverFault struct {
	Channel        string
	SubscriptionID string
	Value          interface{}
}

func (f *ObserverFault) Error() string {
	return fmt.Sprintf("observer %s on channel %s panicked: %v", f.SubscriptionID, f.Channel, f.Value)
}

func (f *ObserverFault) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}

type Option func(*options)

type options struct {
	name     string
	setup    func()
	teardown func()
	replay   int
	onFault  func(*ObserverFault)
}

// WithLifecycle sets the hooks run on activation and deactivation.
func WithLifecycle(setup, teardown func()) Option {
	return func(o *options) {
		o.setup = setup
		o.teardown = teardown
	}
}

// WithReplay keeps the last n messages and hands them to late subscribers.
func WithReplay(n int) Option {
	return func(o *options) {
		o.replay = n
	}
}

func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithFaultHandler is called, after logging, for every recovered observer panic.
func WithFaultHandler(fn func(*ObserverFault)) Option {
	return func(o *options) {
		o.onFault = fn
	}
}

type Channel[T any] struct {
	opts options

	count atomic.Int64

	// lifecycle guards activation transitions only
	lifecycle sync.Mutex
	active    bool

	mu        sync.Mutex
	observers []*Subscription[T]
	ring      *Ring[T]
}

func New[T any](opts ...Option) *Channel[T] {
	c := &Channel[T]{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	if c.opts.name == "" {
		c.opts.name = "anonymous"
	}
	if c.opts.replay > 0 {
		c.ring = NewRing[T](c.opts.replay)
	}
	return c
}

func (c *Channel[T]) Name() string {
	return c.opts.name
}

// Subscribers returns the current subscriber count.
func (c *Channel[T]) Subscribers() int {
	return int(c.count.Load())
}

// Active reports whether setup has run for the current activation cycle.
func (c *Channel[T]) Active() bool {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()
	return c.active
}

// Subscribe registers fn. Replayed messages, if any, are delivered before
// Subscribe returns.
func (c *Channel[T]) Subscribe(fn Observer[T]) *Subscription[T] {

	s := &Subscription[T]{
		id:      uuid.NewV4().String(),
		fn:      fn,
		channel: c,
	}

	if c.count.Add(1) == 1 {
		c.activate()
	}

	c.mu.Lock()
	c.observers = append(c.observers, s)
	var replay []T
	if c.ring != nil {
		replay = c.ring.Slice()
	}
	c.mu.Unlock()

	for _, msg := range replay {
		c.deliver(s, msg)
	}

	log.Debug().Str("channel", c.opts.name).Str("subscriber_id", s.id).Msg("subscribed")

	return s
}

// Publish delivers msg to every observer in subscription order on the
// calling goroutine.
func (c *Channel[T]) Publish(msg T) {

	c.mu.Lock()
	if c.ring != nil {
		c.ring.Push(msg)
	}
	observers := make([]*Subscription[T], len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, s := range observers {
		if s.disposed.Load() {
			continue
		}
		c.deliver(s, msg)
	}
}

func (c *Channel[T]) deliver(s *Subscription[T], msg T) {
	defer func() {
		if r := recover(); r != nil {
			fault := &ObserverFault{Channel: c.opts.name, SubscriptionID: s.id, Value: r}
			log.Error().Err(fault).Str("channel", c.opts.name).Str("subscriber_id", s.id).Msg("observer fault")
			if c.opts.onFault != nil {
				c.opts.onFault(fault)
			}
		}
	}()
	s.fn(msg)
}

func (c *Channel[T]) activate() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.active || c.count.Load() == 0 {
		return
	}
	c.active = true
	if c.opts.setup != nil {
		c.opts.setup()
	}
	log.Debug().Str("channel", c.opts.name).Msg("channel activated")
}

func (c *Channel[T]) deactivate() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if !c.active || c.count.Load() != 0 {
		return
	}
	c.active = false
	if c.opts.teardown != nil {
		c.opts.teardown()
	}
	c.mu.Lock()
	if c.ring != nil {
		c.ring.Reset()
	}
	c.mu.Unlock()
	log.Debug().Str("channel", c.opts.name).Msg("channel deactivated")
}

func (c *Channel[T]) remove(s *Subscription[T]) {
	c.mu.Lock()
	for i, o := range c.observers {
		if o == s {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
}

type Subscription[T any] struct {
	id       string
	fn       Observer[T]
	channel  *Channel[T]
	disposed atomic.Bool
}

func (s *Subscription[T]) ID() string {
	return s.id
}

// Dispose stops delivery to this subscription. Calling it more than once
// has no effect.
func (s *Subscription[T]) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		return
	}
	c := s.channel
	c.remove(s)
	if c.count.Add(-1) == 0 {
		c.deactivate()
	}
	log.Debug().Str("channel", c.opts.name).Str("subscriber_id", s.id).Msg("unsubscribed")
}
