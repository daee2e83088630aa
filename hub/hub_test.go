package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/Slm0nB/play-together-api-sub000/relation"
)

func TestHub_PublishDispatch(t *testing.T) {
	h := New()

	var events, signups, relations, users int
	h.Events.Subscribe(func(*EventChanged) { events++ })
	h.Signups.Subscribe(func(*SignupChanged) { signups++ })
	h.Relations.Subscribe(func(*RelationChanged) { relations++ })
	h.Users.Subscribe(func(*UserChanged) { users++ })

	e := &common.Event{ID: 1}
	h.Publish(&EventChanged{Event: e, Action: common.EventCreated})
	h.Publish(&SignupChanged{Signup: common.NewSignup(1, 2, common.SignupAccepted, e.CreatedDate), Event: e})
	h.Publish(&RelationChanged{Relation: &relation.Relation{UserA: 1, UserB: 2}, ActiveUser: 1})
	h.Publish(&UserChanged{User: &common.User{ID: 1}, Action: common.UserDeleted})
	h.Publish(&UserChanged{User: &common.User{ID: 2}, Action: common.UserCreated})

	assert.Equal(t, 1, events)
	assert.Equal(t, 1, signups)
	assert.Equal(t, 1, relations)
	assert.Equal(t, 2, users)
}

func TestHub_UsersChannelHasNoReplay(t *testing.T) {
	h := New()
	h.PublishUser(&UserChanged{User: &common.User{ID: 1}})

	got := 0
	h.Users.Subscribe(func(*UserChanged) { got++ })
	assert.Equal(t, 0, got)
}

func TestHub_StatisticsRegistry(t *testing.T) {
	h := New()

	assert.Nil(t, h.UserStatistics(5))
	assert.False(t, h.PublishUserStatistics(&UserStatistics{UserID: 5}))

	var got []*UserStatistics
	s1 := h.SubscribeUserStatistics(5, func(s *UserStatistics) { got = append(got, s) })
	require.NotNil(t, h.UserStatistics(5))
	assert.Equal(t, []int64{5}, h.WatchedUsers())

	assert.True(t, h.PublishUserStatistics(&UserStatistics{UserID: 5, Friends: 3}))
	require.Len(t, got, 1)

	// a late subscriber gets the last value immediately
	var late *UserStatistics
	s2 := h.SubscribeUserStatistics(5, func(s *UserStatistics) { late = s })
	require.NotNil(t, late)
	assert.Equal(t, 3, late.Friends)

	s1.Dispose()
	assert.NotNil(t, h.UserStatistics(5))

	s2.Dispose()
	s2.Dispose()
	assert.Nil(t, h.UserStatistics(5))
	assert.Empty(t, h.WatchedUsers())
}

func TestHub_StatisticsConcurrentWatchers(t *testing.T) {
	h := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := h.SubscribeUserStatistics(int64(i%4), func(*UserStatistics) {})
				h.PublishUserStatistics(&UserStatistics{UserID: int64(i % 4)})
				s.Dispose()
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, h.WatchedUsers())
}

func TestHub_StatisticsLookupDoesNotWatch(t *testing.T) {
	h := New()
	assert.Nil(t, h.UserStatistics(9))
	assert.Empty(t, h.WatchedUsers())

	s := h.SubscribeUserStatistics(9, func(*UserStatistics) {})
	ch := h.UserStatistics(9)
	require.NotNil(t, ch)

	ch.Subscribe(func(*UserStatistics) {}).Dispose()
	assert.Equal(t, []int64{9}, h.WatchedUsers())

	s.Dispose()
	assert.Empty(t, h.WatchedUsers())
	assert.Nil(t, h.UserStatistics(9))
	assert.False(t, h.PublishUserStatistics(&UserStatistics{UserID: 9}))
}
