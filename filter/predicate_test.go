package filter

import (
	"testing"
	"time"

	"github.com/Slm0nB/play-together-api-sub000/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

func event(id, author int64, friendsOnly bool, signups ...int64) *common.Event {
	e := &common.Event{
		ID:          id,
		AuthorID:    author,
		Title:       "event",
		FriendsOnly: friendsOnly,
		StartDate:   base.Add(time.Duration(id) * time.Hour),
		EndDate:     base.Add(time.Duration(id+2) * time.Hour),
		Signups:     map[int64]*common.Signup{},
	}
	for _, uid := range signups {
		e.Signups[uid] = common.NewSignup(id, uid, common.SignupAccepted, base)
	}
	return e
}

func friends(ids ...int64) map[int64]struct{} {
	m := make(map[int64]struct{})
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func TestVisible(t *testing.T) {

	public := event(1, 10, false)
	private := event(2, 10, true)

	var tests = []struct {
		ctx      *Context
		event    *common.Event
		expected bool
	}{
		{&Context{}, public, true},
		{&Context{}, private, false},
		{&Context{ViewerID: 10}, private, true},
		{&Context{ViewerID: 20}, private, false},
		{&Context{ViewerID: 20, FriendIDs: friends(10)}, private, true},
		{&Context{ViewerID: 20, FriendIDs: friends(30)}, private, false},
	}

	for i, test := range tests {
		if got := Visible(test.event, test.ctx); got != test.expected {
			t.Fatalf("test %v: Expected '%v' but got '%v'", i, test.expected, got)
		}
	}
}

func TestMatch_OnlyAndInclude(t *testing.T) {

	mine := event(1, 20, false)
	joined := event(2, 10, false, 20)
	friendMade := event(3, 30, true)
	friendJoined := event(4, 40, false, 30)
	stranger := event(5, 40, false)

	all := []*common.Event{mine, joined, friendMade, friendJoined, stranger}
	viewer := func() *Context { return &Context{ViewerID: 20, FriendIDs: friends(30)} }

	var tests = []struct {
		only     []Criterion
		include  []Criterion
		expected []int64
	}{
		{nil, nil, []int64{1, 2, 3, 4, 5}},
		{[]Criterion{CreatedByMe}, nil, []int64{1}},
		{[]Criterion{JoinedByMe}, nil, []int64{2}},
		{[]Criterion{CreatedByFriends}, nil, []int64{3}},
		{[]Criterion{JoinedByFriends}, nil, []int64{4}},
		{[]Criterion{CreatedByMe}, []Criterion{JoinedByMe}, []int64{1, 2}},
		{[]Criterion{CreatedByFriends}, []Criterion{CreatedByMe, JoinedByFriends}, []int64{1, 3, 4}},
		{[]Criterion{CreatedByMe, JoinedByMe}, nil, nil},
	}

	for i, test := range tests {
		ctx := viewer()
		ctx.Only = test.only
		ctx.Include = test.include
		require.NoError(t, ctx.Validate())

		var got []int64
		for _, e := range Apply(all, ctx) {
			got = append(got, e.ID)
		}
		if !assert.Equal(t, test.expected, got) {
			t.Fatalf("test %v failed", i)
		}
	}
}

func TestMatch_IncludeDoesNotBypassPrivacy(t *testing.T) {
	private := event(1, 10, true, 20)
	ctx := &Context{ViewerID: 20, Only: []Criterion{CreatedByMe}, Include: []Criterion{JoinedByMe}}
	assert.False(t, Match(private, ctx))
}

func TestMatch_NarrowingAndDates(t *testing.T) {
	e := event(1, 10, false)
	e.GameID = 7

	assert.True(t, Match(e, &Context{GameIDs: []int64{7, 8}}))
	assert.False(t, Match(e, &Context{GameIDs: []int64{8}}))
	assert.True(t, Match(e, &Context{AuthorIDs: []int64{10}}))
	assert.False(t, Match(e, &Context{AuthorIDs: []int64{11}}))

	assert.False(t, Match(e, &Context{From: e.EndDate.Add(time.Minute)}))
	assert.False(t, Match(e, &Context{To: e.StartDate.Add(-time.Minute)}))
	assert.True(t, Match(e, &Context{From: e.StartDate, To: e.EndDate}))

	// unauthenticated viewers never satisfy personal criteria
	assert.False(t, Match(e, &Context{Only: []Criterion{CreatedByMe}}))
}

func TestMatch_CancelledSignupsDoNotCount(t *testing.T) {
	e := event(1, 10, false, 20, 30)
	e.Signups[20].Status = common.SignupCancelled
	e.Signups[30].Status = common.SignupCancelled

	assert.False(t, Match(e, &Context{ViewerID: 20, Only: []Criterion{JoinedByMe}}))
	assert.False(t, Match(e, &Context{ViewerID: 20, FriendIDs: friends(30), Only: []Criterion{JoinedByFriends}}))
}

func TestContext_Validate(t *testing.T) {
	ctx := &Context{Only: []Criterion{CreatedByMe}, Include: []Criterion{CreatedByMe}}
	assert.ErrorIs(t, ctx.Validate(), ErrConflictingCriteria)

	ctx = &Context{From: base, To: base.Add(-time.Hour)}
	assert.ErrorIs(t, ctx.Validate(), ErrInvalidDateRange)

	ctx = &Context{Include: []Criterion{Criterion(9)}}
	assert.ErrorIs(t, ctx.Validate(), ErrInvalidCriterion)
}

func TestContext_KeyAndClone(t *testing.T) {
	a := &Context{ViewerID: 1, Only: []Criterion{JoinedByMe, CreatedByMe}, GameIDs: []int64{3, 2}}
	b := &Context{ViewerID: 1, Only: []Criterion{CreatedByMe, JoinedByMe}, GameIDs: []int64{2, 3}, FriendIDs: friends(9)}
	assert.Equal(t, a.Key(), b.Key())

	c := b.Clone()
	c.AddFriend(10)
	c.RemoveFriend(9)
	assert.True(t, b.IsFriend(9))
	assert.False(t, b.IsFriend(10))
	assert.Equal(t, []int64{10}, c.Friends())

	assert.True(t, (&Context{Include: []Criterion{JoinedByFriends}}).DependsOnFriendSignups())
	assert.False(t, a.DependsOnFriendSignups())
}
