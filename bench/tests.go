package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Slm0nB/play-together-api-sub000/api"
	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/filter"
	"github.com/Slm0nB/play-together-api-sub000/hub"
	"github.com/Slm0nB/play-together-api-sub000/model"
	"github.com/Slm0nB/play-together-api-sub000/view"
)

const fanoutTimeout = 5 * time.Second

type testHandler func(ctx context.Context, env *benchEnv, n int) (time.Duration, error)

type benchTest struct {
	setup func(ctx context.Context, env *benchEnv) error
	run   testHandler
}

var availableTests = map[string]benchTest{
	"create_event":  {setup: noSetup, run: testCreateEvent},
	"change_signup": {setup: setupSharedEvent, run: testChangeSignup},
	"view_fanout":   {setup: setupViews, run: testViewFanout},
}

func testNames() []string {
	names := make([]string, 0, len(availableTests))
	for name := range availableTests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// benchEnv holds a model with users[0] befriended by every other user.
type benchEnv struct {
	model    *model.Model
	users    []*common.User
	event    *common.Event
	handles  []*view.Handle
	arrivals *arrivals
}

func newBenchEnv(ctx context.Context, store api.Store, numUsers int) (*benchEnv, error) {

	env := &benchEnv{
		model:    model.New(store, hub.New()),
		arrivals: newArrivals(),
	}

	suffix := time.Now().UnixNano()
	for i := 0; i < numUsers; i++ {
		u, err := env.model.Accounts.CreateUser(ctx, fmt.Sprintf("Bench User %d", i),
			fmt.Sprintf("bench%d.%d@example.com", suffix, i))
		if err != nil {
			return nil, err
		}
		env.users = append(env.users, u)
	}

	for _, u := range env.users[1:] {
		if _, err := env.model.Relations.MakeFriends(ctx, env.users[0].ID, u.ID); err != nil {
			return nil, err
		}
	}

	return env, nil
}

func (env *benchEnv) Close() {
	for _, h := range env.handles {
		h.Dispose()
	}
	env.handles = nil
}

func benchDraft(n int) *model.EventDraft {
	start := time.Now().Add(time.Hour + time.Duration(n)*time.Minute)
	return &model.EventDraft{
		Title:       fmt.Sprintf("Bench event %d", n),
		Description: "This is a test event with a few words only",
		StartDate:   start,
		EndDate:     start.Add(2 * time.Hour),
	}
}

func noSetup(ctx context.Context, env *benchEnv) error {
	return nil
}

// Test write workload to create an event
func testCreateEvent(ctx context.Context, env *benchEnv, n int) (time.Duration, error) {

	author := env.users[n%len(env.users)]
	startTime := time.Now()

	if _, err := env.model.Events.CreateEvent(ctx, author.ID, benchDraft(n)); err != nil {
		return 0, err
	}

	return time.Since(startTime), nil
}

func setupSharedEvent(ctx context.Context, env *benchEnv) error {

	event, err := env.model.Events.CreateEvent(ctx, env.users[0].ID, benchDraft(0))
	if err != nil {
		return err
	}
	env.event = event

	for _, u := range env.users[1:] {
		if _, err := env.model.Events.JoinEvent(ctx, u.ID, event.ID); err != nil {
			return err
		}
	}
	return nil
}

// Test a participant switching between tentative and accepted
func testChangeSignup(ctx context.Context, env *benchEnv, n int) (time.Duration, error) {

	user := env.users[1+n%(len(env.users)-1)]
	status := common.SignupTentative
	if (n/(len(env.users)-1))%2 == 1 {
		status = common.SignupAccepted
	}

	startTime := time.Now()

	if _, err := env.model.Events.ChangeSignupStatus(ctx, user.ID, env.event.ID, status); err != nil {
		return 0, err
	}

	return time.Since(startTime), nil
}

func setupViews(ctx context.Context, env *benchEnv) error {
	for _, u := range env.users {
		h, err := env.model.SubscribeEvents(ctx, &filter.Context{ViewerID: u.ID}, func(d *view.Delta) {
			for _, e := range d.Added {
				env.arrivals.add(e.ID)
			}
		})
		if err != nil {
			return err
		}
		env.handles = append(env.handles, h)
	}
	return nil
}

// Test the time until every live view shows a new event
func testViewFanout(ctx context.Context, env *benchEnv, n int) (time.Duration, error) {

	startTime := time.Now()

	event, err := env.model.Events.CreateEvent(ctx, env.users[0].ID, benchDraft(n))
	if err != nil {
		return 0, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, fanoutTimeout)
	defer cancel()

	if err := env.arrivals.wait(waitCtx, event.ID, len(env.handles)); err != nil {
		return 0, err
	}

	return time.Since(startTime), nil
}

// arrivals counts how many views received each event.
type arrivals struct {
	mu      sync.Mutex
	counts  map[int64]int
	changed chan struct{}
}

func newArrivals() *arrivals {
	return &arrivals{counts: make(map[int64]int), changed: make(chan struct{})}
}

func (a *arrivals) add(eventID int64) {
	a.mu.Lock()
	a.counts[eventID]++
	close(a.changed)
	a.changed = make(chan struct{})
	a.mu.Unlock()
}

func (a *arrivals) wait(ctx context.Context, eventID int64, n int) error {
	for {
		a.mu.Lock()
		count := a.counts[eventID]
		changed := a.changed
		a.mu.Unlock()

		if count >= n {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("event %d reached %d of %d views: %w", eventID, count, n, ctx.Err())
		}
	}
}
